package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"invoice-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"invoiceNo":      "INV-1",
		"customerName":   "Acme",
		"customerEmail":  "a@acme.com",
		"billingAddress": "1 Main St",
		"issueDate":      "2026-01-01",
		"dueDate":        "2026-01-08",
		"currency":       "USD",
		"taxRate":        float64(10),
		"items": []any{
			map[string]any{"description": "Widget", "quantity": float64(2), "unitPrice": float64(5)},
		},
	}
}

func TestValidateInvoiceAcceptsValidDraft(t *testing.T) {
	res := ValidateInvoice(validPayload())
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)

	in := res.Invoice
	assert.Equal(t, "INV-1", in.InvoiceNo)
	assert.Equal(t, models.StatusDraft, in.Status)
	assert.Equal(t, models.CurrencyUSD, in.Currency)
	assert.True(t, in.TaxRate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), in.IssueDate)
	assert.Nil(t, in.CustomerPhone)
	assert.Nil(t, in.Notes)
	require.Len(t, in.Items, 1)
	assert.Equal(t, "Widget", in.Items[0].Description)
	assert.True(t, in.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestValidateInvoiceDefaults(t *testing.T) {
	p := validPayload()
	delete(p, "currency")
	delete(p, "taxRate")
	p["status"] = ""

	res := ValidateInvoice(p)
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)
	assert.Equal(t, models.StatusDraft, res.Invoice.Status)
	assert.Equal(t, models.CurrencyUSD, res.Invoice.Currency)
	assert.True(t, res.Invoice.TaxRate.Equal(decimal.RequireFromString("7.5")))
}

func TestValidateInvoiceCoercesNumericStrings(t *testing.T) {
	p := validPayload()
	p["taxRate"] = "12.5"
	p["items"] = []any{
		map[string]any{"description": "Hours", "quantity": "3", "unitPrice": "19.99"},
		map[string]any{"description": "Setup", "quantity": json.Number("1"), "unitPrice": json.Number("100.00")},
	}

	res := ValidateInvoice(p)
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)
	assert.Equal(t, "12.5", res.Invoice.TaxRate.String())
	require.Len(t, res.Invoice.Items, 2)
	assert.Equal(t, "19.99", res.Invoice.Items[0].UnitPrice.String())
	assert.Equal(t, "Setup", res.Invoice.Items[1].Description)
}

func TestValidateInvoiceIgnoresClientTotals(t *testing.T) {
	p := validPayload()
	p["subTotal"] = float64(9999)
	p["tax"] = float64(9999)
	p["totalAmount"] = float64(9999)
	p["items"].([]any)[0].(map[string]any)["amount"] = float64(9999)

	res := ValidateInvoice(p)
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)
}

func TestValidateInvoiceDueBeforeIssue(t *testing.T) {
	p := validPayload()
	p["dueDate"] = "2025-12-31"

	res := ValidateInvoice(p)
	require.False(t, res.OK())
	assert.Nil(t, res.Invoice)
	assert.Equal(t, []string{"Due date must be after issue date"}, res.Errors["dueDate"])
	assert.Len(t, res.Errors, 1)
}

func TestValidateInvoiceUnparsableDateSkipsOrdering(t *testing.T) {
	p := validPayload()
	p["issueDate"] = "not a date"
	p["dueDate"] = "2020-01-01"

	res := ValidateInvoice(p)
	require.False(t, res.OK())
	assert.Equal(t, []string{"Invalid issue date"}, res.Errors["issueDate"])
	assert.NotContains(t, res.Errors, "dueDate")
}

func TestValidateInvoiceRejectsZeroUnitPrice(t *testing.T) {
	p := validPayload()
	p["items"] = []any{
		map[string]any{"description": "Widget", "quantity": float64(2), "unitPrice": float64(0)},
	}

	res := ValidateInvoice(p)
	require.False(t, res.OK())
	assert.Equal(t, []string{"Min price is 0.01"}, res.Errors["items.0.unitPrice"])
}

func TestValidateInvoiceCollectsAllErrors(t *testing.T) {
	res := ValidateInvoice(map[string]any{
		"invoiceNo":      "",
		"customerName":   "A",
		"customerEmail":  "not-an-email",
		"billingAddress": "abc",
		"issueDate":      "2026-01-01",
		"dueDate":        "2026-01-08",
		"status":         "SENT",
		"currency":       "JPY",
		"taxRate":        float64(-1),
		"items": []any{
			map[string]any{"description": "", "quantity": float64(0), "unitPrice": "abc"},
			"bogus",
		},
	})

	require.False(t, res.OK())
	for _, path := range []string{
		"invoiceNo", "customerName", "customerEmail", "billingAddress",
		"status", "currency", "taxRate",
		"items.0.description", "items.0.quantity", "items.0.unitPrice", "items.1",
	} {
		assert.Contains(t, res.Errors, path)
	}
	assert.Equal(t, []string{"Min quantity is 1"}, res.Errors["items.0.quantity"])
	assert.Equal(t, []string{"Expected number"}, res.Errors["items.0.unitPrice"])
}

func TestValidateInvoiceItemsShape(t *testing.T) {
	p := validPayload()
	p["items"] = []any{}
	res := ValidateInvoice(p)
	assert.Equal(t, []string{"At least one item is required"}, res.Errors["items"])

	delete(p, "items")
	res = ValidateInvoice(p)
	assert.Equal(t, []string{"Required"}, res.Errors["items"])

	p["items"] = "widget"
	res = ValidateInvoice(p)
	assert.Equal(t, []string{"Expected array"}, res.Errors["items"])
}

func TestValidateInvoiceEmptyPayload(t *testing.T) {
	assert.NotPanics(t, func() {
		res := ValidateInvoice(nil)
		assert.False(t, res.OK())
		assert.Contains(t, res.Errors, "invoiceNo")
		assert.Contains(t, res.Errors, "items")
	})
}

func TestValidateInvoiceOptionalStrings(t *testing.T) {
	p := validPayload()
	p["customerPhone"] = "+1 555 0100"
	p["notes"] = "  "

	res := ValidateInvoice(p)
	require.True(t, res.OK())
	require.NotNil(t, res.Invoice.CustomerPhone)
	assert.Equal(t, "+1 555 0100", *res.Invoice.CustomerPhone)
	assert.Nil(t, res.Invoice.Notes)

	p["notes"] = float64(3)
	res = ValidateInvoice(p)
	assert.Equal(t, []string{"Expected string"}, res.Errors["notes"])
}

func decodePayload(t *testing.T, body string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var p map[string]any
	require.NoError(t, dec.Decode(&p))
	return p
}

func TestValidateInvoiceRejectsExtremeExponents(t *testing.T) {
	cases := map[string]string{
		"items.0.quantity":  `{"items":[{"description":"W","quantity":1e200000000,"unitPrice":5}]}`,
		"items.0.unitPrice": `{"items":[{"description":"W","quantity":1,"unitPrice":"1e-200000000"}]}`,
		"taxRate":           `{"taxRate":1E+999999999,"items":[{"description":"W","quantity":1,"unitPrice":5}]}`,
	}

	for path, body := range cases {
		t.Run(path, func(t *testing.T) {
			p := decodePayload(t, body)

			done := make(chan InvoiceResult, 1)
			go func() { done <- ValidateInvoice(p) }()

			select {
			case res := <-done:
				require.False(t, res.OK())
				assert.Contains(t, res.Errors, path)
			case <-time.After(2 * time.Second):
				t.Fatalf("validation did not finish for %s", path)
			}
		})
	}
}

func TestValidateInvoiceStorageLimits(t *testing.T) {
	p := validPayload()
	p["invoiceNo"] = strings.Repeat("9", MaxInvoiceNoLength+1)
	p["customerName"] = strings.Repeat("n", MaxNameLength+1)
	p["customerEmail"] = strings.Repeat("a", MaxEmailLength) + "@example.com"
	p["customerPhone"] = strings.Repeat("5", MaxPhoneLength+1)
	p["taxRate"] = json.Number("100000000")
	p["items"] = []any{
		map[string]any{"description": "Widget", "quantity": json.Number("100000000"), "unitPrice": float64(5)},
		map[string]any{"description": "Widget", "quantity": float64(1), "unitPrice": json.Number("99999999.99999")},
	}

	res := ValidateInvoice(p)
	require.False(t, res.OK())
	assert.Equal(t, []string{"Must be at most 64 characters"}, res.Errors["invoiceNo"])
	assert.Equal(t, []string{"Must be at most 255 characters"}, res.Errors["customerName"])
	assert.Equal(t, []string{"Must be at most 255 characters"}, res.Errors["customerEmail"])
	assert.Equal(t, []string{"Must be at most 64 characters"}, res.Errors["customerPhone"])
	assert.Equal(t, []string{"Tax rate is too large"}, res.Errors["taxRate"])
	assert.Equal(t, []string{"Quantity is too large"}, res.Errors["items.0.quantity"])
	assert.Equal(t, []string{"Unit price is too large"}, res.Errors["items.1.unitPrice"])
}

func TestValidateInvoiceAcceptsLargestStorableValues(t *testing.T) {
	p := validPayload()
	p["invoiceNo"] = strings.Repeat("9", MaxInvoiceNoLength)
	p["items"] = []any{
		map[string]any{"description": "Widget", "quantity": json.Number("99999999.9999"), "unitPrice": float64(1)},
	}

	res := ValidateInvoice(p)
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)
}

func TestValidateTotals(t *testing.T) {
	inv := &models.Invoice{
		Items: []models.InvoiceItem{
			{Amount: decimal.RequireFromString("10.00")},
			{Amount: decimal.New(1, 12)},
		},
		SubTotal:    decimal.RequireFromString("1000000000010.00"),
		Tax:         decimal.RequireFromString("999999999999.99"),
		TotalAmount: decimal.RequireFromString("2000000000010.00"),
	}

	errs := ValidateTotals(inv)
	assert.NotContains(t, errs, "items.0.amount")
	assert.Equal(t, []string{"Amount is too large"}, errs["items.1.amount"])
	assert.Contains(t, errs, "subTotal")
	assert.NotContains(t, errs, "tax")
	assert.Contains(t, errs, "totalAmount")

	assert.False(t, ValidateTotals(&models.Invoice{TotalAmount: decimal.NewFromInt(11)}).HasErrors())
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("b", "second")
	fe.Add("a", "first")
	fe.Add("a", "again")
	assert.Equal(t, "validation failed: a: first, again; b: second", fe.Error())
}
