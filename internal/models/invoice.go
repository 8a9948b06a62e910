package models

import (
	"math"
	"time"
)

// InvoiceStatus represents the status of an invoice. No transition rules
// are enforced; any status can be set at any time.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// LineItem is one billable row on an invoice. Images holds zero or more
// encoded raster payloads (self-describing base64 data strings produced
// upstream). PageCount is a domain billing unit, omitted when not
// applicable.
type LineItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	Images      []string `json:"images,omitempty"`
	PageCount   *int     `json:"page_count,omitempty"`
}

// Amount is the line total: unit price times quantity.
func (it LineItem) Amount() float64 {
	return num(it.UnitPrice) * float64(it.Quantity)
}

// SyncQuantityToImages sets the quantity to the attached image count.
// Quantity and image count are not coupled by the data model; editors that
// bill per image call this after changing the image set.
func (it *LineItem) SyncQuantityToImages() {
	it.Quantity = len(it.Images)
}

// Invoice is the primary document. Client and Bank are snapshots copied in
// at creation/edit time, not live references. Totals are never persisted;
// they are always recomputed from the items.
type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"` // user-assigned display number
	IssueDate time.Time     `json:"issue_date"`
	DueDate   time.Time     `json:"due_date"`
	ProjectID string        `json:"project_id,omitempty"`
	Client    Client        `json:"client"`
	Items     []LineItem    `json:"items"`
	TaxRate   float64       `json:"tax_rate"` // percentage, >= 0
	Discount  float64       `json:"discount"` // absolute amount, >= 0
	Status    InvoiceStatus `json:"status"`
	Bank      BankDetails   `json:"bank"`
}

// Subtotal sums the line amounts.
func (inv Invoice) Subtotal() float64 {
	var total float64
	for _, it := range inv.Items {
		total += it.Amount()
	}
	return total
}

// TaxAmount applies the tax rate to the subtotal before discount.
func (inv Invoice) TaxAmount() float64 {
	return inv.Subtotal() * num(inv.TaxRate) / 100
}

// Total is subtotal plus tax minus discount. A discount exceeding
// subtotal plus tax yields a negative total; the result is not clamped.
func (inv Invoice) Total() float64 {
	return inv.Subtotal() + inv.TaxAmount() - num(inv.Discount)
}

// Clone returns a deep copy of the invoice, including items and their
// image slices.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		for i, it := range inv.Items {
			out.Items[i] = it
			if it.Images != nil {
				out.Items[i].Images = append([]string(nil), it.Images...)
			}
			if it.PageCount != nil {
				pc := *it.PageCount
				out.Items[i].PageCount = &pc
			}
		}
	}
	return out
}

// num treats NaN as zero so a single bad field cannot poison a total.
func num(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
