package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageWidth = 190

	colDescription = 100
	colQuantity    = 20
	colRate        = 35
	colAmount      = 35
)

// PDF renders doc as an A4 portrait invoice
func PDF(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Invoice "+doc.InvoiceNo, true)
	pdf.AddPage()

	// Core fonts are cp1252; this maps €, £ and accented names onto it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(pageWidth/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth/2, 10, tr(doc.BusinessName), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth/2, 6, tr("#"+doc.InvoiceNo), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, 6, "Status: "+doc.Status, "", 1, "R", false, 0, "")
	pdf.CellFormat(pageWidth, 6, "Issued: "+doc.IssueDate, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Billed to / due date
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(pageWidth/2, 7, "Billed To", "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, 7, "Due Date", "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth/2, 6, tr(doc.CustomerName), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, 6, doc.DueDate, "", 1, "R", false, 0, "")
	pdf.CellFormat(pageWidth, 6, tr(doc.CustomerEmail), "", 1, "L", false, 0, "")
	if doc.CustomerPhone != "" {
		pdf.CellFormat(pageWidth, 6, tr(doc.CustomerPhone), "", 1, "L", false, 0, "")
	}
	pdf.MultiCell(pageWidth/2, 6, tr(doc.BillingAddress), "", "L", false)
	pdf.Ln(6)

	// Items table
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(colDescription, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQuantity, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colRate, 8, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colAmount, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range doc.Rows {
		pdf.CellFormat(colDescription, 7, tr(row.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQuantity, 7, row.Quantity, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colRate, 7, tr(row.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 7, tr(row.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	labelWidth := float64(colDescription + colQuantity + colRate)
	totalLine := func(label, value string) {
		pdf.CellFormat(labelWidth, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 7, tr(value), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	totalLine("Subtotal", doc.SubTotal)
	if doc.HasTax {
		totalLine(doc.TaxLabel, doc.Tax)
	}
	pdf.SetFont("Arial", "B", 12)
	totalLine("Total", doc.Total)

	if doc.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(pageWidth, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(pageWidth, 5, tr(doc.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
