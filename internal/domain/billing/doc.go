// Package billing provides the invoice domain model for contract billing.
//
// This package implements the invoicing bounded context, which is responsible
// for:
//   - Computing the PPN / PPh 23 tax breakdown for an invoiced amount
//   - Recording, editing and deleting payments against an invoice
//   - Deriving invoice status from the payment ledger and tax flags
//
// Key Aggregates:
//   - Invoice: An invoice issued against a contract termin, carrying its tax
//     breakdown, payment records and derived status
//
// Value Objects:
//   - TaxBreakdown: PPN output tax and PPh 23 withholding for a base amount
//   - PaymentRecord: A single payment applied to an invoice
//   - PaymentLedger: Paid/outstanding totals recomputed from the records
//
// The billing domain integrates with:
//   - Contract domain: Invoices are issued against contract termins
package billing
