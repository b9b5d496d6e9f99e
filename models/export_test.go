package models

// Hooks for the DB-backed tests in the external test package.

const MaxInvoiceNumberAttempts = maxInvoiceNumberAttempts

// SwapInvoiceNumbers installs a replacement identifier strategy and returns
// a restore func for t.Cleanup.
func SwapInvoiceNumbers(s InvoiceNumberStrategy) (restore func()) {
	orig := invoiceNumbers
	invoiceNumbers = s
	return func() { invoiceNumbers = orig }
}
