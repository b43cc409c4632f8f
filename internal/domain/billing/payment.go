package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodTransfer       PaymentMethod = "TRANSFER"
	PaymentMethodCash           PaymentMethod = "CASH"
	PaymentMethodGiro           PaymentMethod = "GIRO"
	PaymentMethodCheck          PaymentMethod = "CHECK"
	PaymentMethodVirtualAccount PaymentMethod = "VIRTUAL_ACCOUNT"
	PaymentMethodOther          PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodGiro,
		PaymentMethodCheck, PaymentMethodVirtualAccount, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentRecord represents a single payment applied to an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
// Records are immutable except through the aggregate's explicit
// EditPayment/DeletePayment operations.
type PaymentRecord struct {
	ID              uuid.UUID       `json:"id"`
	PaymentDate     time.Time       `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	PPNIncluded     bool            `json:"ppn_included"`
	PPH23Included   bool            `json:"pph23_included"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewPaymentRecord creates a new payment record
func NewPaymentRecord(paymentDate time.Time, amount valueobject.Money, method PaymentMethod, referenceNumber string, createdBy uuid.UUID) *PaymentRecord {
	return &PaymentRecord{
		ID:              uuid.New(),
		PaymentDate:     paymentDate,
		Amount:          amount.Amount(),
		Method:          method,
		ReferenceNumber: referenceNumber,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}
}

// GetAmountMoney returns the amount as Money value object
func (p *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(p.Amount)
}

// PaymentRecords is a slice of PaymentRecord that implements GORM
// Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// TotalAmount sums the amounts of all records
func (p PaymentRecords) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, record := range p {
		total = total.Add(record.Amount)
	}
	return total
}

// FindByID returns the index of the record with the given ID, or -1
func (p PaymentRecords) FindByID(id uuid.UUID) int {
	for i := range p {
		if p[i].ID == id {
			return i
		}
	}
	return -1
}
