package render

import (
	"fmt"
	"testing"
	"time"

	"github.com/facturo/facturo/internal/models"
	"github.com/facturo/facturo/internal/paginate"
)

func testInvoice(items int) models.Invoice {
	inv := models.Invoice{
		ID:        "inv-1",
		Number:    "2026-014",
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Client:    models.Client{ID: "c1", Name: "Ada", Company: "Analytical"},
		TaxRate:   20,
		Discount:  10,
		Status:    models.InvoiceStatusPending,
	}
	for i := 0; i < items; i++ {
		inv.Items = append(inv.Items, models.LineItem{
			ID:          fmt.Sprintf("it-%d", i),
			Description: fmt.Sprintf("Line %d", i),
			Quantity:    1,
			UnitPrice:   25,
		})
	}
	return inv
}

func TestDocumentPageCountMatchesPaginator(t *testing.T) {
	layout := paginate.DefaultLayout()
	for _, items := range []int{0, 1, 12, 40} {
		inv := testInvoice(items)
		want := len(paginate.Split(inv.Items, layout))
		pdf := Document(inv, models.DefaultSettings(), layout)
		if got := pdf.PageCount(); got != want {
			t.Fatalf("%d items: PDF has %d pages, paginator produced %d", items, got, want)
		}
		if pdf.Err() {
			t.Fatalf("%d items: render error: %v", items, pdf.Error())
		}
	}
}

func TestPDFProducesDocument(t *testing.T) {
	data, err := PDF(testInvoice(3), models.DefaultSettings(), paginate.DefaultLayout())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty document")
	}
	if string(data[:5]) != "%PDF-" {
		t.Fatalf("output does not look like a PDF: %q", data[:5])
	}
}
