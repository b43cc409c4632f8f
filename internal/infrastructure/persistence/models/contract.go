package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
)

// ContractModel is the persistence model for the Contract aggregate root.
type ContractModel struct {
	AggregateModel
	ContractNumber string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName   string                     `gorm:"type:varchar(200);not null"`
	Description    string                     `gorm:"type:text"`
	Value          decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	StartDate      time.Time                  `gorm:"not null;index"`
	EndDate        time.Time                  `gorm:"not null;index"`
	Status         contract.ContractStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Termins        contract.TerminDescriptors `gorm:"type:jsonb;default:'[]'"`
	TerminatedAt   *time.Time
	TerminateNote  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract entity.
func (m *ContractModel) ToDomain() *contract.Contract {
	return &contract.Contract{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ContractNumber: m.ContractNumber,
		CustomerName:   m.CustomerName,
		Description:    m.Description,
		Value:          m.Value,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         m.Status,
		Termins:        m.Termins,
		TerminatedAt:   m.TerminatedAt,
		TerminateNote:  m.TerminateNote,
	}
}

// FromDomain populates the persistence model from a domain Contract entity.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.CustomerName = c.CustomerName
	m.Description = c.Description
	m.Value = c.Value
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Status = c.Status
	m.Termins = c.Termins
	m.TerminatedAt = c.TerminatedAt
	m.TerminateNote = c.TerminateNote
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
