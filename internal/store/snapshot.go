package store

import (
	"github.com/facturo/facturo/internal/models"
)

// Snapshot is the full application state: the four collections the system
// persists. It is the single source of truth owned by the Store; external
// code only ever sees copies.
type Snapshot struct {
	Invoices []models.Invoice   `json:"invoices"`
	Clients  []models.Client    `json:"clients"`
	Projects []models.Project   `json:"projects"`
	Settings models.AppSettings `json:"settings"`
}

// NewSnapshot returns an empty snapshot with default settings.
func NewSnapshot() *Snapshot {
	return &Snapshot{Settings: models.DefaultSettings()}
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Settings: s.Settings}
	if s.Invoices != nil {
		out.Invoices = make([]models.Invoice, len(s.Invoices))
		for i, inv := range s.Invoices {
			out.Invoices[i] = inv.Clone()
		}
	}
	if s.Clients != nil {
		out.Clients = append([]models.Client(nil), s.Clients...)
	}
	if s.Projects != nil {
		out.Projects = append([]models.Project(nil), s.Projects...)
	}
	return out
}

func (s *Snapshot) invoiceIndex(id string) int {
	for i := range s.Invoices {
		if s.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Snapshot) clientIndex(id string) int {
	for i := range s.Clients {
		if s.Clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Snapshot) projectIndex(id string) int {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return i
		}
	}
	return -1
}
