package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "DRAFT"
	StatusPending   InvoiceStatus = "PENDING"
	StatusPaid      InvoiceStatus = "PAID"
	StatusOverdue   InvoiceStatus = "OVERDUE"
	StatusCancelled InvoiceStatus = "CANCELLED"
)

// InvoiceStatuses lists every accepted status in display order
var InvoiceStatuses = []InvoiceStatus{StatusDraft, StatusPending, StatusPaid, StatusOverdue, StatusCancelled}

// Valid reports whether s is one of the enumerated statuses
func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Currency is an ISO 4217 code accepted on invoices
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyNGN Currency = "NGN"
	CurrencyKES Currency = "KES"
)

// Currencies lists every accepted currency code
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyNGN, CurrencyKES}

func (c Currency) Valid() bool {
	for _, v := range Currencies {
		if c == v {
			return true
		}
	}
	return false
}

// DefaultTaxRate is applied when a draft carries no taxRate
var DefaultTaxRate = decimal.RequireFromString("7.5")

// Invoice is the invoice aggregate: header, customer fields, ordered items and computed totals
type Invoice struct {
	ID             string          `json:"id"`
	InvoiceNo      string          `json:"invoiceNo"`
	Status         InvoiceStatus   `json:"status"`
	CustomerName   string          `json:"customerName"`
	CustomerEmail  string          `json:"customerEmail"`
	CustomerPhone  *string         `json:"customerPhone"`
	BillingAddress string          `json:"billingAddress"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        time.Time       `json:"dueDate"`
	Currency       Currency        `json:"currency"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	Notes          *string         `json:"notes"`
	SubTotal       decimal.Decimal `json:"subTotal"`
	Tax            decimal.Decimal `json:"tax"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	UserID         string          `json:"userId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Items          []InvoiceItem   `json:"items"`
}

// InvoiceItem is a line item owned by exactly one invoice
type InvoiceItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoiceId"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// ItemInput is a validated line item before amounts are derived
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceInput is a validated invoice draft. It carries no totals:
// those are always derived server side.
type InvoiceInput struct {
	InvoiceNo      string
	Status         InvoiceStatus
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  *string
	BillingAddress string
	IssueDate      time.Time
	DueDate        time.Time
	Currency       Currency
	TaxRate        decimal.Decimal
	Notes          *string
	Items          []ItemInput
}

// InvoiceFilter narrows a listing. Zero values match everything.
type InvoiceFilter struct {
	Search string
	Status InvoiceStatus
	From   *time.Time
	To     *time.Time
}

// DeletedInvoice is the response body for a successful delete
type DeletedInvoice struct {
	Message string   `json:"message"`
	Invoice *Invoice `json:"invoice"`
}

// NextInvoiceNumberResponse is returned by the numbering endpoint
type NextInvoiceNumberResponse struct {
	InvoiceNo string `json:"invoiceNo"`
}
