// Package totals derives line amounts and invoice totals from validated items.
// It is the only place totals are computed; whatever totals a client submits
// are never read.
package totals

import (
	"invoice-backend/internal/models"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are stored with
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Result holds the decorated items and the invoice totals
type Result struct {
	Items       []models.InvoiceItem
	SubTotal    decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
}

// Compute derives amount = quantity × unitPrice for every item, the subtotal,
// tax = subtotal × taxRate / 100 and total = subtotal + tax.
// Item order is preserved and Position is set to the item's index.
func Compute(items []models.ItemInput, taxRate decimal.Decimal) Result {
	res := Result{
		Items:    make([]models.InvoiceItem, 0, len(items)),
		SubTotal: decimal.Zero,
	}

	for i, it := range items {
		amount := LineAmount(it.Quantity, it.UnitPrice)
		res.Items = append(res.Items, models.InvoiceItem{
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      amount,
		})
		res.SubTotal = res.SubTotal.Add(amount)
	}

	res.Tax = TaxAmount(res.SubTotal, taxRate)
	res.TotalAmount = res.SubTotal.Add(res.Tax)
	return res
}

// LineAmount is quantity × unitPrice at money precision
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(MoneyPlaces)
}

// TaxAmount is subTotal × taxRate / 100 at money precision
func TaxAmount(subTotal, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.IsZero() {
		return decimal.Zero
	}
	return subTotal.Mul(taxRate).Div(hundred).Round(MoneyPlaces)
}

// Apply computes totals for in and copies them, together with the header
// fields, onto inv. Identity, ownership and timestamps on inv are untouched.
func Apply(inv *models.Invoice, in *models.InvoiceInput) {
	res := Compute(in.Items, in.TaxRate)

	inv.InvoiceNo = in.InvoiceNo
	inv.Status = in.Status
	inv.CustomerName = in.CustomerName
	inv.CustomerEmail = in.CustomerEmail
	inv.CustomerPhone = in.CustomerPhone
	inv.BillingAddress = in.BillingAddress
	inv.IssueDate = in.IssueDate
	inv.DueDate = in.DueDate
	inv.Currency = in.Currency
	inv.TaxRate = in.TaxRate
	inv.Notes = in.Notes
	inv.SubTotal = res.SubTotal
	inv.Tax = res.Tax
	inv.TotalAmount = res.TotalAmount
	inv.Items = res.Items
}
