package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/facturo/facturo/internal/models"
)

// Remote is the durable backend mirrored by the Store when reachable.
// FetchAll reports whether a settings record existed so the caller can
// seed defaults on first run. ReplaceAll overwrites every collection
// with the given snapshot, removing records absent from it.
type Remote interface {
	FetchAll(ctx context.Context) (snap *Snapshot, hasSettings bool, err error)
	ReplaceAll(ctx context.Context, snap *Snapshot) error
	SaveInvoice(ctx context.Context, inv models.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	SaveClient(ctx context.Context, c models.Client) error
	DeleteClient(ctx context.Context, id string) error
	SaveProject(ctx context.Context, p models.Project) error
	DeleteProject(ctx context.Context, id string) error
	SaveSettings(ctx context.Context, s models.AppSettings) error
}

const (
	// DefaultMaxPayloadBytes caps a single image payload per remote write,
	// mirroring the 1 MiB document limit of the hosted document stores
	// this schema is modeled on.
	DefaultMaxPayloadBytes = 1 << 20
	// DefaultMaxBatchRecords caps the rows written per atomic batch.
	DefaultMaxBatchRecords = 500
)

// GormRemote implements Remote over any gorm-supported database. Production
// runs it on Postgres; tests run the same implementation on SQLite.
type GormRemote struct {
	db         *gorm.DB
	maxPayload int
	maxBatch   int
}

// NewGormRemote wraps an open connection. Non-positive limits fall back to
// the defaults.
func NewGormRemote(db *gorm.DB, maxPayload, maxBatch int) *GormRemote {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayloadBytes
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchRecords
	}
	return &GormRemote{db: db, maxPayload: maxPayload, maxBatch: maxBatch}
}

// OpenPostgres connects with a short retry loop (the remote may still be
// starting) and migrates the record tables.
func OpenPostgres(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect remote store: %w", err)
	}
	if err := MigrateRemote(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateRemote creates or updates the remote record tables.
func MigrateRemote(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&invoiceRecord{},
		&invoiceImageRecord{},
		&clientRecord{},
		&projectRecord{},
		&settingsRecord{},
	); err != nil {
		return fmt.Errorf("migrate remote store: %w", err)
	}
	return nil
}

func upsert(tx *gorm.DB, value any) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

// remoteErr classifies a failed backend operation so callers can match
// ErrRemoteUnavailable. Size-limit failures pass through untouched.
func remoteErr(op string, err error) error {
	var tooLarge *PayloadTooLargeError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// SaveInvoice writes the lightweight record and replaces the invoice's
// child image records. The scalar write and the cleanup of stale children
// run in one transaction; image rows are then inserted in batches of at
// most maxBatch rows, each batch atomic on its own, so an invoice with
// many images never exceeds a per-write record limit.
func (r *GormRemote) SaveInvoice(ctx context.Context, inv models.Invoice) error {
	light, parts := decompose(inv)
	for _, p := range parts {
		if len(p.Data) > r.maxPayload {
			return &PayloadTooLargeError{Key: p.Key, Size: len(p.Data), Limit: r.maxPayload}
		}
	}
	data, err := json.Marshal(light)
	if err != nil {
		return fmt.Errorf("encode invoice %s: %w", inv.ID, err)
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, &invoiceRecord{ID: inv.ID, Data: string(data)}); err != nil {
			return err
		}
		return tx.Where("invoice_id = ?", inv.ID).Delete(&invoiceImageRecord{}).Error
	})
	if err != nil {
		return remoteErr(fmt.Sprintf("save invoice %s", inv.ID), err)
	}
	if len(parts) == 0 {
		return nil
	}
	rows := make([]invoiceImageRecord, len(parts))
	for i, p := range parts {
		rows[i] = invoiceImageRecord{InvoiceID: inv.ID, Key: p.Key, Data: p.Data}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, r.maxBatch).Error; err != nil {
		return remoteErr(fmt.Sprintf("save invoice %s images", inv.ID), err)
	}
	return nil
}

func (r *GormRemote) DeleteInvoice(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&invoiceImageRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoiceRecord{ID: id}).Error
	})
	if err != nil {
		return remoteErr(fmt.Sprintf("delete invoice %s", id), err)
	}
	return nil
}

func (r *GormRemote) SaveClient(ctx context.Context, c models.Client) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode client %s: %w", c.ID, err)
	}
	if err := upsert(r.db.WithContext(ctx), &clientRecord{ID: c.ID, Data: string(data)}); err != nil {
		return remoteErr(fmt.Sprintf("save client %s", c.ID), err)
	}
	return nil
}

func (r *GormRemote) DeleteClient(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&clientRecord{ID: id}).Error; err != nil {
		return remoteErr(fmt.Sprintf("delete client %s", id), err)
	}
	return nil
}

func (r *GormRemote) SaveProject(ctx context.Context, p models.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	if err := upsert(r.db.WithContext(ctx), &projectRecord{ID: p.ID, Data: string(data)}); err != nil {
		return remoteErr(fmt.Sprintf("save project %s", p.ID), err)
	}
	return nil
}

func (r *GormRemote) DeleteProject(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&projectRecord{ID: id}).Error; err != nil {
		return remoteErr(fmt.Sprintf("delete project %s", id), err)
	}
	return nil
}

func (r *GormRemote) SaveSettings(ctx context.Context, s models.AppSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := upsert(r.db.WithContext(ctx), &settingsRecord{ID: settingsRecordID, Data: string(data)}); err != nil {
		return remoteErr("save settings", err)
	}
	return nil
}

// ReplaceAll overwrites every collection with the snapshot in one
// transaction, so records absent from it cannot reappear on a later
// fetch. Image payloads are size-checked before any row is touched.
func (r *GormRemote) ReplaceAll(ctx context.Context, snap *Snapshot) error {
	type invoicePack struct {
		record invoiceRecord
		images []invoiceImageRecord
	}
	packs := make([]invoicePack, 0, len(snap.Invoices))
	for _, inv := range snap.Invoices {
		light, parts := decompose(inv)
		for _, p := range parts {
			if len(p.Data) > r.maxPayload {
				return &PayloadTooLargeError{Key: p.Key, Size: len(p.Data), Limit: r.maxPayload}
			}
		}
		data, err := json.Marshal(light)
		if err != nil {
			return fmt.Errorf("encode invoice %s: %w", inv.ID, err)
		}
		images := make([]invoiceImageRecord, len(parts))
		for i, p := range parts {
			images[i] = invoiceImageRecord{InvoiceID: inv.ID, Key: p.Key, Data: p.Data}
		}
		packs = append(packs, invoicePack{
			record: invoiceRecord{ID: inv.ID, Data: string(data)},
			images: images,
		})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{
			&invoiceImageRecord{}, &invoiceRecord{}, &clientRecord{}, &projectRecord{},
		} {
			if err := wipe.Delete(model).Error; err != nil {
				return err
			}
		}
		for _, p := range packs {
			if err := tx.Create(&p.record).Error; err != nil {
				return err
			}
			if len(p.images) > 0 {
				if err := tx.CreateInBatches(p.images, r.maxBatch).Error; err != nil {
					return err
				}
			}
		}
		for _, c := range snap.Clients {
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode client %s: %w", c.ID, err)
			}
			if err := tx.Create(&clientRecord{ID: c.ID, Data: string(data)}).Error; err != nil {
				return err
			}
		}
		for _, p := range snap.Projects {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode project %s: %w", p.ID, err)
			}
			if err := tx.Create(&projectRecord{ID: p.ID, Data: string(data)}).Error; err != nil {
				return err
			}
		}
		data, err := json.Marshal(snap.Settings)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return upsert(tx, &settingsRecord{ID: settingsRecordID, Data: string(data)})
	})
	if err != nil {
		return remoteErr("replace remote state", err)
	}
	return nil
}

// FetchAll loads the four collections. Image child records are fetched as
// an unordered set and spliced back into their items by the positional
// index embedded in each key.
func (r *GormRemote) FetchAll(ctx context.Context) (*Snapshot, bool, error) {
	db := r.db.WithContext(ctx)
	snap := NewSnapshot()

	var invRows []invoiceRecord
	if err := db.Find(&invRows).Error; err != nil {
		return nil, false, remoteErr("fetch invoices", err)
	}
	var imgRows []invoiceImageRecord
	if err := db.Find(&imgRows).Error; err != nil {
		return nil, false, remoteErr("fetch invoice images", err)
	}
	partsByInvoice := make(map[string][]imagePart)
	for _, row := range imgRows {
		partsByInvoice[row.InvoiceID] = append(partsByInvoice[row.InvoiceID],
			imagePart{Key: row.Key, Data: row.Data})
	}
	for _, row := range invRows {
		var light models.Invoice
		if err := json.Unmarshal([]byte(row.Data), &light); err != nil {
			return nil, false, fmt.Errorf("decode invoice %s: %w", row.ID, err)
		}
		snap.Invoices = append(snap.Invoices, reassemble(light, partsByInvoice[row.ID]))
	}

	var clientRows []clientRecord
	if err := db.Find(&clientRows).Error; err != nil {
		return nil, false, remoteErr("fetch clients", err)
	}
	for _, row := range clientRows {
		var c models.Client
		if err := json.Unmarshal([]byte(row.Data), &c); err != nil {
			return nil, false, fmt.Errorf("decode client %s: %w", row.ID, err)
		}
		snap.Clients = append(snap.Clients, c)
	}

	var projectRows []projectRecord
	if err := db.Find(&projectRows).Error; err != nil {
		return nil, false, remoteErr("fetch projects", err)
	}
	for _, row := range projectRows {
		var p models.Project
		if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
			return nil, false, fmt.Errorf("decode project %s: %w", row.ID, err)
		}
		snap.Projects = append(snap.Projects, p)
	}

	var settingsRow settingsRecord
	err := db.First(&settingsRow, "id = ?", settingsRecordID).Error
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(settingsRow.Data), &snap.Settings); err != nil {
			return nil, false, fmt.Errorf("decode settings: %w", err)
		}
		return snap, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return snap, false, nil
	default:
		return nil, false, remoteErr("fetch settings", err)
	}
}
