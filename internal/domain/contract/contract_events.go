package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
)

// ContractCreatedEvent is raised when a new contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	CustomerName   string          `json:"customer_name"`
	Value          decimal.Decimal `json:"value"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return "ContractCreated"
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCreated", "Contract", c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerName:    c.CustomerName,
		Value:           c.Value,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
	}
}

// ContractTerminsUpdatedEvent is raised when the termin schedule changes
type ContractTerminsUpdatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	TerminCount    int       `json:"termin_count"`
}

// EventType returns the event type name
func (e *ContractTerminsUpdatedEvent) EventType() string {
	return "ContractTerminsUpdated"
}

// NewContractTerminsUpdatedEvent creates a new ContractTerminsUpdatedEvent
func NewContractTerminsUpdatedEvent(c *Contract) *ContractTerminsUpdatedEvent {
	return &ContractTerminsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractTerminsUpdated", "Contract", c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		TerminCount:     len(c.Termins),
	}
}

// ContractCompletedEvent is raised when a contract runs to completion
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerName   string    `json:"customer_name"`
}

// EventType returns the event type name
func (e *ContractCompletedEvent) EventType() string {
	return "ContractCompleted"
}

// NewContractCompletedEvent creates a new ContractCompletedEvent
func NewContractCompletedEvent(c *Contract) *ContractCompletedEvent {
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCompleted", "Contract", c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerName:    c.CustomerName,
	}
}

// ContractTerminatedEvent is raised when a contract is ended early
type ContractTerminatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerName   string    `json:"customer_name"`
	TerminateNote  string    `json:"terminate_note"`
	TerminatedAt   time.Time `json:"terminated_at"`
}

// EventType returns the event type name
func (e *ContractTerminatedEvent) EventType() string {
	return "ContractTerminated"
}

// NewContractTerminatedEvent creates a new ContractTerminatedEvent
func NewContractTerminatedEvent(c *Contract) *ContractTerminatedEvent {
	terminatedAt := time.Now()
	if c.TerminatedAt != nil {
		terminatedAt = *c.TerminatedAt
	}
	return &ContractTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractTerminated", "Contract", c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerName:    c.CustomerName,
		TerminateNote:   c.TerminateNote,
		TerminatedAt:    terminatedAt,
	}
}
