// Package render turns a stored invoice into the printable document shared
// by the PDF export and the HTML preview.
package render

import (
	"invoice-backend/internal/models"
	"invoice-backend/internal/money"
	"invoice-backend/internal/timeutil"
)

// Row is one printable line item
type Row struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

// Document is the finalized, display-ready shape of an invoice
type Document struct {
	BusinessName string
	Logo         string

	InvoiceNo string
	Status    string
	IssueDate string
	DueDate   string

	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	BillingAddress string

	Rows []Row

	SubTotal string
	TaxLabel string
	Tax      string
	Total    string
	HasTax   bool

	Notes string
}

// NewDocument formats inv for display. account may be nil.
func NewDocument(inv *models.Invoice, account *models.Account) *Document {
	cur := string(inv.Currency)

	doc := &Document{
		InvoiceNo:      inv.InvoiceNo,
		Status:         string(inv.Status),
		IssueDate:      timeutil.FormatDisplay(inv.IssueDate),
		DueDate:        timeutil.FormatDisplay(inv.DueDate),
		CustomerName:   inv.CustomerName,
		CustomerEmail:  inv.CustomerEmail,
		BillingAddress: inv.BillingAddress,
		SubTotal:       money.Format(inv.SubTotal, cur),
		TaxLabel:       "Tax (" + inv.TaxRate.String() + "%)",
		Tax:            money.Format(inv.Tax, cur),
		Total:          money.Format(inv.TotalAmount, cur),
		HasTax:         inv.TaxRate.IsPositive(),
		Rows:           make([]Row, 0, len(inv.Items)),
	}
	if inv.CustomerPhone != nil {
		doc.CustomerPhone = *inv.CustomerPhone
	}
	if inv.Notes != nil {
		doc.Notes = *inv.Notes
	}
	if account != nil {
		doc.BusinessName = account.BusinessName
		if account.Logo != nil {
			doc.Logo = *account.Logo
		}
	}

	for _, it := range inv.Items {
		doc.Rows = append(doc.Rows, Row{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			Rate:        money.Format(it.UnitPrice, cur),
			Amount:      money.Format(it.Amount, cur),
		})
	}
	return doc
}
