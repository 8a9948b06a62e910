// Package render produces the printable invoice document. Layout fidelity
// is best-effort: pages follow the paginate height model, one PDF page per
// estimated page.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/facturo/facturo/internal/models"
	"github.com/facturo/facturo/internal/paginate"
)

const dateFormat = "02 Jan 2006"

// Document builds the PDF in memory. Callers that only need bytes use PDF.
func Document(inv models.Invoice, settings models.AppSettings, layout paginate.Layout) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pages := paginate.Split(inv.Items, layout)
	last := len(pages) - 1
	for n, page := range pages {
		pdf.AddPage()
		if n == 0 {
			writeHeader(pdf, inv, settings)
		} else {
			pdf.SetY(20)
		}
		if len(page.Items) > 0 {
			writeItemTable(pdf, page.Items)
		}
		if n == last {
			writeFooter(pdf, inv, settings)
		}
	}
	return pdf
}

// PDF renders the invoice and returns the document bytes.
func PDF(inv models.Invoice, settings models.AppSettings, layout paginate.Layout) ([]byte, error) {
	pdf := Document(inv, settings, layout)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, inv models.Invoice, settings models.AppSettings) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(120, 10, settings.BusinessName, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 5, settings.Address, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "No. "+inv.Number, "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, settings.Email, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Issued "+formatDate(inv.IssueDate), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, settings.Phone, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Due "+formatDate(inv.DueDate), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	billTo := inv.Client.Name
	if inv.Client.Company != "" {
		billTo = inv.Client.Company + " - " + inv.Client.Name
	}
	pdf.CellFormat(0, 5, billTo, "", 1, "L", false, 0, "")
	if inv.Client.Address != "" {
		pdf.CellFormat(0, 5, inv.Client.Address, "", 1, "L", false, 0, "")
	}
	if inv.Client.Email != "" {
		pdf.CellFormat(0, 5, inv.Client.Email, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func writeItemTable(pdf *gofpdf.Fpdf, items []models.LineItem) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(95, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(0, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range items {
		desc := it.Description
		if it.PageCount != nil {
			desc = fmt.Sprintf("%s (%d pages)", desc, *it.PageCount)
		}
		pdf.CellFormat(95, 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 7, money(it.Amount()), "1", 1, "R", false, 0, "")
		if n := len(it.Images); n > 0 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(0, 5, fmt.Sprintf("%d image(s) attached", n), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
		}
	}
}

func writeFooter(pdf *gofpdf.Fpdf, inv models.Invoice, settings models.AppSettings) {
	pdf.Ln(6)
	writeTotalRow(pdf, "Subtotal", money(inv.Subtotal()), false)
	writeTotalRow(pdf, fmt.Sprintf("Tax (%.1f%%)", inv.TaxRate), money(inv.TaxAmount()), false)
	if inv.Discount != 0 {
		writeTotalRow(pdf, "Discount", "-"+money(inv.Discount), false)
	}
	writeTotalRow(pdf, "Total", money(inv.Total()), true)

	bank := inv.Bank
	if bank == (models.BankDetails{}) {
		bank = settings.Bank
	}
	if bank != (models.BankDetails{}) {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Payment details", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, bank.BankName, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, bank.AccountName, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, bank.AccountNumber, "", 1, "L", false, 0, "")
	}
}

func writeTotalRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(115, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "R", false, 0, "")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateFormat)
}
