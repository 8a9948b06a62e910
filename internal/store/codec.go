package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/facturo/facturo/internal/models"
)

// Export/import document: a single JSON object with top-level keys
// invoices, clients, projects, settings, mirroring the four collections
// verbatim. The import side validates the shape instead of trusting it.

// EncodeSnapshot writes the snapshot as an indented JSON document.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot parses and validates an exported document. A rejected
// document returns a *SnapshotFormatError and no snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	snap := NewSnapshot()
	dec := json.NewDecoder(r)
	if err := dec.Decode(snap); err != nil {
		return nil, &SnapshotFormatError{Field: "document", Reason: err.Error()}
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

var validInvoiceStatus = map[models.InvoiceStatus]bool{
	models.InvoiceStatusDraft:   true,
	models.InvoiceStatusPending: true,
	models.InvoiceStatusPaid:    true,
	models.InvoiceStatusOverdue: true,
}

var validProjectStatus = map[models.ProjectStatus]bool{
	models.ProjectStatusPlanned: true,
	models.ProjectStatusActive:  true,
	models.ProjectStatusOnHold:  true,
	models.ProjectStatusDone:    true,
}

// Validate checks the structural invariants of the data model: ids
// present and unique per collection, non-negative quantities, prices,
// rates and discounts, known statuses, progress within 0..100.
func (s *Snapshot) Validate() error {
	invIDs := make(map[string]bool, len(s.Invoices))
	for i, inv := range s.Invoices {
		field := fmt.Sprintf("invoices[%d]", i)
		if inv.ID == "" {
			return &SnapshotFormatError{Field: field + ".id", Reason: "missing"}
		}
		if invIDs[inv.ID] {
			return &SnapshotFormatError{Field: field + ".id", Reason: "duplicate " + inv.ID}
		}
		invIDs[inv.ID] = true
		if inv.Status != "" && !validInvoiceStatus[inv.Status] {
			return &SnapshotFormatError{Field: field + ".status", Reason: "unknown status " + string(inv.Status)}
		}
		if inv.TaxRate < 0 {
			return &SnapshotFormatError{Field: field + ".tax_rate", Reason: "negative"}
		}
		if inv.Discount < 0 {
			return &SnapshotFormatError{Field: field + ".discount", Reason: "negative"}
		}
		for j, it := range inv.Items {
			itemField := fmt.Sprintf("%s.items[%d]", field, j)
			if it.ID == "" {
				return &SnapshotFormatError{Field: itemField + ".id", Reason: "missing"}
			}
			if it.Quantity < 0 {
				return &SnapshotFormatError{Field: itemField + ".quantity", Reason: "negative"}
			}
			if it.UnitPrice < 0 {
				return &SnapshotFormatError{Field: itemField + ".unit_price", Reason: "negative"}
			}
		}
	}
	clientIDs := make(map[string]bool, len(s.Clients))
	for i, c := range s.Clients {
		field := fmt.Sprintf("clients[%d]", i)
		if c.ID == "" {
			return &SnapshotFormatError{Field: field + ".id", Reason: "missing"}
		}
		if clientIDs[c.ID] {
			return &SnapshotFormatError{Field: field + ".id", Reason: "duplicate " + c.ID}
		}
		clientIDs[c.ID] = true
	}
	projectIDs := make(map[string]bool, len(s.Projects))
	for i, p := range s.Projects {
		field := fmt.Sprintf("projects[%d]", i)
		if p.ID == "" {
			return &SnapshotFormatError{Field: field + ".id", Reason: "missing"}
		}
		if projectIDs[p.ID] {
			return &SnapshotFormatError{Field: field + ".id", Reason: "duplicate " + p.ID}
		}
		projectIDs[p.ID] = true
		if p.Status != "" && !validProjectStatus[p.Status] {
			return &SnapshotFormatError{Field: field + ".status", Reason: "unknown status " + string(p.Status)}
		}
		if p.Progress < 0 || p.Progress > 100 {
			return &SnapshotFormatError{Field: field + ".progress", Reason: "outside 0..100"}
		}
	}
	return nil
}
