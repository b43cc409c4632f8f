package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

func newTestInvoice(t *testing.T, baseAmount int64) *Invoice {
	t.Helper()

	base := valueobject.NewMoneyIDRFromInt(baseAmount)

	inv, err := NewInvoice(
		"INV-202503-001",
		uuid.New(),
		"K.TEL.123/HK.810/2025",
		"PT Telkom Indonesia",
		base,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		nil,
	)
	require.NoError(t, err)
	return inv
}

func mustMoney(t *testing.T, amount int64) valueobject.Money {
	t.Helper()
	return valueobject.NewMoneyIDRFromInt(amount)
}

func TestNewInvoice(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.PPNAmount.Equal(decimal.NewFromInt(110_000)))
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(1_110_000)))
	assert.True(t, inv.PPHAmount.Equal(decimal.NewFromInt(22_200)))
	assert.True(t, inv.NetPayableAmount.Equal(decimal.NewFromInt(1_087_800)))
	assert.True(t, inv.OutstandingAmount.Equal(inv.NetPayableAmount))
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Empty(t, inv.Payments)
	assert.Len(t, inv.GetDomainEvents(), 1)
	assert.Equal(t, "InvoiceCreated", inv.GetDomainEvents()[0].EventType())
}

func TestNewInvoice_Validation(t *testing.T) {
	base := mustMoney(t, 1_000_000)
	invoiceDate := time.Now()

	tests := []struct {
		name          string
		invoiceNumber string
		contractID    uuid.UUID
		customerName  string
		wantCode      string
	}{
		{"empty invoice number", "", uuid.New(), "Customer", "INVALID_INVOICE_NUMBER"},
		{"nil contract id", "INV-1", uuid.Nil, "Customer", "INVALID_CONTRACT"},
		{"empty customer name", "INV-1", uuid.New(), "", "INVALID_CUSTOMER_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoice(tt.invoiceNumber, tt.contractID, "K-1", tt.customerName, base, invoiceDate, nil)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestInvoice_AddPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 500_000), PaymentMethodTransfer, "TRX-001", uuid.New())

		err := inv.AddPayment(record)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(500_000)))
		assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(587_800)))
		assert.Len(t, inv.Payments, 1)
	})

	t.Run("full payment pending both tax proofs", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_800), PaymentMethodTransfer, "TRX-002", uuid.New())

		err := inv.AddPayment(record)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaidPendingPPN, inv.Status)
		assert.True(t, inv.OutstandingAmount.IsZero())
		assert.True(t, inv.PaymentProgressPct.Equal(decimal.NewFromInt(100)))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), valueobject.ZeroIDR(), PaymentMethodCash, "", uuid.New())

		err := inv.AddPayment(record)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		assert.Empty(t, inv.Payments)
	})

	t.Run("overpayment rejected and ledger untouched", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_801), PaymentMethodTransfer, "TRX-003", uuid.New())

		err := inv.AddPayment(record)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)
		assert.Empty(t, inv.Payments)
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
	})

	t.Run("rejected on cancelled invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		require.NoError(t, inv.Cancel("duplicate billing"))

		record := NewPaymentRecord(time.Now(), mustMoney(t, 100_000), PaymentMethodTransfer, "", uuid.New())
		err := inv.AddPayment(record)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("invalid payment method rejected", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 100_000), PaymentMethod("BARTER"), "", uuid.New())

		err := inv.AddPayment(record)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PAYMENT_METHOD", domainErr.Code)
	})
}

func TestInvoice_SettlementFlow(t *testing.T) {
	// Base 1,000,000: PPN 110,000, total 1,110,000, PPh23 22,200,
	// net payable 1,087,800. Pay in full, then collect the tax proofs.
	inv := newTestInvoice(t, 1_000_000)
	require.NoError(t, inv.Send())
	assert.Equal(t, InvoiceStatusSent, inv.Status)

	record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_800), PaymentMethodTransfer, "TRX-100", uuid.New())
	require.NoError(t, inv.AddPayment(record))
	assert.Equal(t, InvoiceStatusPaidPendingPPN, inv.Status)
	assert.Nil(t, inv.PaidAt)

	require.NoError(t, inv.MarkPPNPaid())
	assert.Equal(t, InvoiceStatusPaidPendingPPH23, inv.Status)

	require.NoError(t, inv.MarkPPH23Paid())
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)

	// Final state refuses further changes
	err := inv.AddPayment(NewPaymentRecord(time.Now(), mustMoney(t, 1), PaymentMethodCash, "", uuid.New()))
	require.Error(t, err)
	err = inv.Cancel("too late")
	require.Error(t, err)
}

func TestInvoice_SettlementWithinTolerance(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)
	require.NoError(t, inv.SetTaxFlags(TaxFlags{PPNPaid: true, PPH23Paid: true}))

	// One rupiah short of net payable still settles
	record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_799), PaymentMethodTransfer, "TRX-101", uuid.New())
	require.NoError(t, inv.AddPayment(record))

	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.False(t, inv.CanAddPayment())
}

func TestInvoice_EditPayment(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)
	record := NewPaymentRecord(time.Now(), mustMoney(t, 500_000), PaymentMethodTransfer, "TRX-001", uuid.New())
	require.NoError(t, inv.AddPayment(record))

	t.Run("amount change recomputes ledger", func(t *testing.T) {
		err := inv.EditPayment(record.ID, record.PaymentDate, mustMoney(t, 300_000), PaymentMethodGiro, "GIRO-9", "corrected")

		require.NoError(t, err)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(300_000)))
		assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(787_800)))
		assert.Equal(t, PaymentMethodGiro, inv.Payments[0].Method)
		assert.Equal(t, "GIRO-9", inv.Payments[0].ReferenceNumber)
	})

	t.Run("edit cannot exceed headroom", func(t *testing.T) {
		err := inv.EditPayment(record.ID, record.PaymentDate, mustMoney(t, 1_087_801), PaymentMethodGiro, "", "")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)
		// Untouched by the failed edit
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(300_000)))
	})

	t.Run("unknown payment id", func(t *testing.T) {
		err := inv.EditPayment(uuid.New(), time.Now(), mustMoney(t, 100), PaymentMethodCash, "", "")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestInvoice_DeletePayment(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)
	first := NewPaymentRecord(time.Now(), mustMoney(t, 500_000), PaymentMethodTransfer, "TRX-1", uuid.New())
	second := NewPaymentRecord(time.Now(), mustMoney(t, 587_800), PaymentMethodTransfer, "TRX-2", uuid.New())
	require.NoError(t, inv.AddPayment(first))
	require.NoError(t, inv.AddPayment(second))
	assert.Equal(t, InvoiceStatusPaidPendingPPN, inv.Status)

	err := inv.DeletePayment(second.ID)

	require.NoError(t, err)
	assert.Len(t, inv.Payments, 1)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(500_000)))
	// Status rolls back from settled to partially paid
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.Nil(t, inv.PaidAt)
}

func TestInvoice_DeletePayment_UnwindsPaid(t *testing.T) {
	// Deleting a payment from a fully PAID invoice must reopen it; PAID is
	// final for new payments and cancellation but deletion corrects errors.
	inv := newTestInvoice(t, 1_000_000)
	require.NoError(t, inv.SetTaxFlags(TaxFlags{PPNPaid: true, PPH23Paid: true}))
	record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_800), PaymentMethodTransfer, "TRX-1", uuid.New())
	require.NoError(t, inv.AddPayment(record))
	require.Equal(t, InvoiceStatusPaid, inv.Status)

	err := inv.DeletePayment(record.ID)

	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Nil(t, inv.PaidAt)
}

func TestInvoice_SendAndCancel(t *testing.T) {
	t.Run("send only from draft", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		require.NoError(t, inv.Send())
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.NotNil(t, inv.SentAt)

		err := inv.Send()
		require.Error(t, err)
	})

	t.Run("cancel requires reason", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		err := inv.Cancel("")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REASON", domainErr.Code)
	})

	t.Run("cancel partially paid invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 500_000), PaymentMethodTransfer, "", uuid.New())
		require.NoError(t, inv.AddPayment(record))

		require.NoError(t, inv.Cancel("contract terminated"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.Equal(t, "contract terminated", inv.CancelReason)
		assert.NotNil(t, inv.CancelledAt)
		// Payment history is retained
		assert.Len(t, inv.Payments, 1)
	})
}

func TestInvoice_CanAddPayment(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)
	assert.True(t, inv.CanAddPayment())

	record := NewPaymentRecord(time.Now(), mustMoney(t, 1_087_799), PaymentMethodTransfer, "", uuid.New())
	require.NoError(t, inv.AddPayment(record))

	// One rupiah outstanding is within tolerance: no more payments invited
	assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(1)))
	assert.False(t, inv.CanAddPayment())
}

func TestInvoice_SetBaseAmount(t *testing.T) {
	t.Run("recomputes breakdown before payments", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)

		require.NoError(t, inv.SetBaseAmount(mustMoney(t, 2_000_000)))

		assert.True(t, inv.PPNAmount.Equal(decimal.NewFromInt(220_000)))
		assert.True(t, inv.NetPayableAmount.Equal(decimal.NewFromInt(2_175_600)))
		assert.True(t, inv.OutstandingAmount.Equal(inv.NetPayableAmount))
	})

	t.Run("blocked once payments exist", func(t *testing.T) {
		inv := newTestInvoice(t, 1_000_000)
		record := NewPaymentRecord(time.Now(), mustMoney(t, 100_000), PaymentMethodTransfer, "", uuid.New())
		require.NoError(t, inv.AddPayment(record))

		err := inv.SetBaseAmount(mustMoney(t, 2_000_000))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
	})
}

func TestInvoice_DisplayStatus(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	pastDue := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	inv := newTestInvoice(t, 1_000_000)
	require.NoError(t, inv.Send())
	require.NoError(t, inv.SetDueDate(&pastDue))

	assert.Equal(t, InvoiceStatusOverdue, inv.DisplayStatus(today))
	assert.True(t, inv.IsOverdue(today))
	// The stored status is untouched by the overlay
	assert.Equal(t, InvoiceStatusSent, inv.Status)
}

func TestInvoice_VersionIncrements(t *testing.T) {
	inv := newTestInvoice(t, 1_000_000)
	initial := inv.Version

	record := NewPaymentRecord(time.Now(), mustMoney(t, 100_000), PaymentMethodTransfer, "", uuid.New())
	require.NoError(t, inv.AddPayment(record))
	assert.Equal(t, initial+1, inv.Version)

	require.NoError(t, inv.DeletePayment(record.ID))
	assert.Equal(t, initial+2, inv.Version)
}
