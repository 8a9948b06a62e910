package store

import "time"

// Storage rows for both backends. The remote schema is document-style: one
// JSON payload per record, keyed the way the collections are addressed.

const settingsRecordID = "general"

type invoiceRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (invoiceRecord) TableName() string { return "invoices" }

// invoiceImageRecord is one chunked child record: a single encoded image
// payload keyed by owning invoice and "{itemId}_{imageIndex}".
type invoiceImageRecord struct {
	InvoiceID string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:128"`
	Data      string `gorm:"type:text;not null"`
}

func (invoiceImageRecord) TableName() string { return "invoice_images" }

type clientRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (clientRecord) TableName() string { return "clients" }

type projectRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (projectRecord) TableName() string { return "projects" }

type settingsRecord struct {
	ID        string `gorm:"primaryKey;size:32"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (settingsRecord) TableName() string { return "settings" }

// snapshotRecord is a local-store row: one keyed entry holding the full
// JSON-serialized snapshot of a collection, overwritten wholesale on every
// mutation.
type snapshotRecord struct {
	Key       string `gorm:"primaryKey;size:32"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string { return "snapshots" }
