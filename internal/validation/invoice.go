// Package validation turns untyped request payloads into typed, validated
// inputs. Every rule is evaluated; failures are collected per field path
// rather than stopping at the first one.
package validation

import (
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"invoice-backend/internal/models"
	"invoice-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// Precision kept for quantities, unit prices and tax rates
const QuantityPlaces = 4

// Storage limits: text columns and NUMERIC(12,4) / NUMERIC(14,2)
const (
	MaxInvoiceNoLength = 64
	MaxNameLength      = 255
	MaxEmailLength     = 255
	MaxPhoneLength     = 64
)

var (
	minQuantity  = decimal.NewFromInt(1)
	minUnitPrice = decimal.RequireFromString("0.01")

	// quantities, unit prices and tax rates must stay below this
	maxRate = decimal.New(1, 8)
	// line amounts and invoice totals must stay below this
	maxAmount = decimal.New(1, 12)
)

// InvoiceResult is the outcome of ValidateInvoice: exactly one of Invoice
// or Errors is set.
type InvoiceResult struct {
	Invoice *models.InvoiceInput
	Errors  FieldErrors
}

// OK reports whether validation succeeded
func (r InvoiceResult) OK() bool {
	return r.Invoice != nil && !r.Errors.HasErrors()
}

// ValidateInvoice checks a decoded JSON invoice draft. Client supplied
// subTotal, tax, totalAmount and item amount fields are ignored.
func ValidateInvoice(payload map[string]any) InvoiceResult {
	errs := FieldErrors{}
	in := &models.InvoiceInput{}

	in.InvoiceNo = requiredString(errs, payload, "invoiceNo", 1, MaxInvoiceNoLength, "Invoice number is required")
	in.CustomerName = requiredString(errs, payload, "customerName", 2, MaxNameLength, "Customer name is required")
	in.BillingAddress = requiredString(errs, payload, "billingAddress", 5, 0, "Billing address is required")

	email, err := toString(payload["customerEmail"])
	switch {
	case errors.Is(err, errMissing):
		errs.Add("customerEmail", "Required")
	case err != nil || !IsEmail(email):
		errs.Add("customerEmail", "Invalid email address")
	case utf8.RuneCountInString(email) > MaxEmailLength:
		errs.Add("customerEmail", tooLong(MaxEmailLength))
	default:
		in.CustomerEmail = email
	}

	in.CustomerPhone = optionalField(errs, payload, "customerPhone")
	if in.CustomerPhone != nil && utf8.RuneCountInString(*in.CustomerPhone) > MaxPhoneLength {
		errs.Add("customerPhone", tooLong(MaxPhoneLength))
	}
	in.Notes = optionalField(errs, payload, "notes")

	issue, issueOK := dateField(errs, payload, "issueDate", "Invalid issue date")
	due, dueOK := dateField(errs, payload, "dueDate", "Invalid due date")
	if issueOK && dueOK && due.Before(issue) {
		errs.Add("dueDate", "Due date must be after issue date")
	}
	in.IssueDate, in.DueDate = issue, due

	in.Status = models.StatusDraft
	if raw, ok := payload["status"]; ok && raw != nil {
		s, err := toString(raw)
		switch {
		case err != nil:
			errs.Add("status", "Invalid status")
		case s != "":
			if st := models.InvoiceStatus(s); st.Valid() {
				in.Status = st
			} else {
				errs.Add("status", "Invalid status")
			}
		}
	}

	in.Currency = models.CurrencyUSD
	if raw, ok := payload["currency"]; ok && raw != nil {
		s, err := toString(raw)
		switch {
		case err != nil:
			errs.Add("currency", "Invalid currency")
		case s != "":
			if c := models.Currency(s); c.Valid() {
				in.Currency = c
			} else {
				errs.Add("currency", "Invalid currency")
			}
		}
	}

	in.TaxRate = models.DefaultTaxRate
	if raw, ok := payload["taxRate"]; ok && raw != nil {
		rate, err := toDecimal(raw)
		switch {
		case err != nil:
			errs.Add("taxRate", "Tax rate must be a number")
		case rate.IsNegative():
			errs.Add("taxRate", "Tax rate cannot be negative")
		case rate.Round(QuantityPlaces).GreaterThanOrEqual(maxRate):
			errs.Add("taxRate", "Tax rate is too large")
		default:
			in.TaxRate = rate.Round(QuantityPlaces)
		}
	}

	in.Items = itemsField(errs, payload["items"])

	if errs.HasErrors() {
		return InvoiceResult{Errors: errs}
	}
	return InvoiceResult{Invoice: in}
}

// requiredString reads a trimmed string of at least min runes; max of zero
// leaves the length unbounded.
func requiredString(errs FieldErrors, payload map[string]any, field string, min, max int, msg string) string {
	s, err := toString(payload[field])
	switch {
	case errors.Is(err, errMissing):
		errs.Add(field, "Required")
	case err != nil:
		errs.Add(field, "Expected string")
	case utf8.RuneCountInString(s) < min:
		errs.Add(field, msg)
	case max > 0 && utf8.RuneCountInString(s) > max:
		errs.Add(field, tooLong(max))
	}
	return s
}

func tooLong(max int) string {
	return "Must be at most " + strconv.Itoa(max) + " characters"
}

func optionalField(errs FieldErrors, payload map[string]any, field string) *string {
	s, err := optionalString(payload[field])
	if err != nil {
		errs.Add(field, "Expected string")
	}
	return s
}

func dateField(errs FieldErrors, payload map[string]any, field, msg string) (t time.Time, ok bool) {
	s, err := toString(payload[field])
	if err == nil {
		t, err = timeutil.ParseDate(s)
	}
	if err != nil {
		errs.Add(field, msg)
		return t, false
	}
	return t, true
}

func itemsField(errs FieldErrors, raw any) []models.ItemInput {
	if raw == nil {
		errs.Add("items", "Required")
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		errs.Add("items", "Expected array")
		return nil
	}
	if len(list) == 0 {
		errs.Add("items", "At least one item is required")
		return nil
	}

	items := make([]models.ItemInput, 0, len(list))
	for i, rawItem := range list {
		prefix := "items." + strconv.Itoa(i) + "."
		obj, ok := rawItem.(map[string]any)
		if !ok {
			errs.Add("items."+strconv.Itoa(i), "Expected object")
			continue
		}

		var item models.ItemInput

		desc, err := toString(obj["description"])
		if err != nil || desc == "" {
			errs.Add(prefix+"description", "Description is required")
		}
		item.Description = desc

		qty, err := toDecimal(obj["quantity"])
		switch {
		case errors.Is(err, errMissing):
			errs.Add(prefix+"quantity", "Required")
		case err != nil:
			errs.Add(prefix+"quantity", "Expected number")
		case qty.LessThan(minQuantity):
			errs.Add(prefix+"quantity", "Min quantity is 1")
		case qty.Round(QuantityPlaces).GreaterThanOrEqual(maxRate):
			errs.Add(prefix+"quantity", "Quantity is too large")
		}
		item.Quantity = qty.Round(QuantityPlaces)

		price, err := toDecimal(obj["unitPrice"])
		switch {
		case errors.Is(err, errMissing):
			errs.Add(prefix+"unitPrice", "Required")
		case err != nil:
			errs.Add(prefix+"unitPrice", "Expected number")
		case price.LessThan(minUnitPrice):
			errs.Add(prefix+"unitPrice", "Min price is 0.01")
		case price.Round(QuantityPlaces).GreaterThanOrEqual(maxRate):
			errs.Add(prefix+"unitPrice", "Unit price is too large")
		}
		item.UnitPrice = price.Round(QuantityPlaces)

		items = append(items, item)
	}
	return items
}

// ValidateTotals checks computed line amounts and invoice totals against the
// stored precision. It runs after totals are derived from a validated draft.
func ValidateTotals(inv *models.Invoice) FieldErrors {
	errs := FieldErrors{}
	for i, item := range inv.Items {
		if item.Amount.GreaterThanOrEqual(maxAmount) {
			errs.Add("items."+strconv.Itoa(i)+".amount", "Amount is too large")
		}
	}
	if inv.SubTotal.GreaterThanOrEqual(maxAmount) {
		errs.Add("subTotal", "Subtotal is too large")
	}
	if inv.Tax.GreaterThanOrEqual(maxAmount) {
		errs.Add("tax", "Tax is too large")
	}
	if inv.TotalAmount.GreaterThanOrEqual(maxAmount) {
		errs.Add("totalAmount", "Total is too large")
	}
	return errs
}
