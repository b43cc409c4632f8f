package contract

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// ContractStatus represents the lifecycle status of a service contract
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusCompleted  ContractStatus = "COMPLETED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// TerminDescriptors is a termin schedule stored as JSONB
type TerminDescriptors []TerminDescriptor

// Value implements driver.Valuer interface for GORM to store as JSONB
func (t TerminDescriptors) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (t *TerminDescriptors) Scan(value interface{}) error {
	if value == nil {
		*t = TerminDescriptors{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TerminDescriptors: unsupported type")
	}

	if len(bytes) == 0 {
		*t = TerminDescriptors{}
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// Contract is the aggregate root for a Telkom service contract. It owns
// the termin schedule and the contract period; invoices reference it but
// live in their own aggregate.
type Contract struct {
	shared.BaseAggregateRoot
	ContractNumber string            `json:"contract_number"`
	CustomerName   string            `json:"customer_name"`
	Description    string            `json:"description,omitempty"`
	Value          decimal.Decimal   `json:"value"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	Status         ContractStatus    `json:"status"`
	Termins        TerminDescriptors `json:"termins"`
	TerminatedAt   *time.Time        `json:"terminated_at,omitempty"`
	TerminateNote  string            `json:"terminate_note,omitempty"`
}

// NewContract creates a new contract, validating the period
func NewContract(
	contractNumber string,
	customerName string,
	value valueobject.Money,
	startDate time.Time,
	endDate time.Time,
) (*Contract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Contract value cannot be negative")
	}
	if endDate.Before(startDate) {
		return nil, shared.NewDomainError("END_BEFORE_START", "Contract end date cannot be before start date")
	}

	c := &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		CustomerName:      customerName,
		Value:             value.Amount(),
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            ContractStatusActive,
		Termins:           TerminDescriptors{},
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// SetTermins replaces the termin schedule
func (c *Contract) SetTermins(termins []TerminDescriptor) error {
	if c.Status == ContractStatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "Cannot update termins of terminated contract")
	}

	c.Termins = termins
	c.touch()

	c.AddDomainEvent(NewContractTerminsUpdatedEvent(c))

	return nil
}

// NextTermin returns the current or next due installment, or nil when the
// contract has no termin schedule
func (c *Contract) NextTermin(today time.Time) *ParsedTermin {
	return FindCurrentOrNext(c.Termins, today)
}

// Schedule returns the full parsed termin schedule in termin-number order
func (c *Contract) Schedule() []ParsedTermin {
	return ParseSchedule(c.Termins)
}

// Duration computes the contract duration from its period
func (c *Contract) Duration() (*ContractDuration, error) {
	return CalculateDuration(c.StartDate, c.EndDate)
}

// SetPeriod updates the contract period
func (c *Contract) SetPeriod(startDate, endDate time.Time) error {
	if c.Status == ContractStatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "Cannot update period of terminated contract")
	}
	if endDate.Before(startDate) {
		return shared.NewDomainError("END_BEFORE_START", "Contract end date cannot be before start date")
	}

	c.StartDate = startDate
	c.EndDate = endDate
	c.touch()

	return nil
}

// SetValue updates the total contract value
func (c *Contract) SetValue(value valueobject.Money) error {
	if c.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update value of %s contract", c.Status))
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Contract value cannot be negative")
	}

	c.Value = value.Amount()
	c.touch()

	return nil
}

// Complete marks an active contract as completed
func (c *Contract) Complete() error {
	if c.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete contract in %s status", c.Status))
	}

	c.Status = ContractStatusCompleted
	c.touch()

	c.AddDomainEvent(NewContractCompletedEvent(c))

	return nil
}

// Terminate ends an active contract early with a mandatory note
func (c *Contract) Terminate(note string) error {
	if c.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot terminate contract in %s status", c.Status))
	}
	if note == "" {
		return shared.NewDomainError("INVALID_REASON", "Termination note is required")
	}

	now := time.Now()
	c.Status = ContractStatusTerminated
	c.TerminatedAt = &now
	c.TerminateNote = note
	c.touch()

	c.AddDomainEvent(NewContractTerminatedEvent(c))

	return nil
}

// GetValueMoney returns the contract value as Money
func (c *Contract) GetValueMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(c.Value)
}

func (c *Contract) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
