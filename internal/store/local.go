package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Local store keys, one per collection.
const (
	keyInvoices = "invoices"
	keyClients  = "clients"
	keyProjects = "projects"
	keySettings = "settings"
)

// Local is the on-device fallback store: an SQLite file holding four keyed
// entries, each a full JSON-serialized collection. Every save replaces all
// four wholesale, which trivially avoids partial-update states at the cost
// of rewriting the dataset on every change.
type Local struct {
	db *gorm.DB
}

// OpenLocal opens (or creates) the local store at path. The path
// "file::memory:?cache=shared" style DSNs accepted by the sqlite driver
// work too, which is what the tests use.
func OpenLocal(path string) (*Local, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &Local{db: db}, nil
}

// Save overwrites all four entries with the given snapshot in one
// transaction.
func (l *Local) Save(s *Snapshot) error {
	rows := make([]snapshotRecord, 0, 4)
	for _, part := range []struct {
		key   string
		value any
	}{
		{keyInvoices, s.Invoices},
		{keyClients, s.Clients},
		{keyProjects, s.Projects},
		{keySettings, s.Settings},
	} {
		data, err := json.Marshal(part.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", part.key, err)
		}
		rows = append(rows, snapshotRecord{Key: part.key, Data: string(data)})
	}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return nil
}

// Load returns the most recent full snapshot. Missing entries load as
// empty collections, so a fresh store yields a default snapshot.
func (l *Local) Load() (*Snapshot, error) {
	snap := NewSnapshot()
	load := func(key string, into any) error {
		var row snapshotRecord
		err := l.db.First(&row, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read local %s: %w", key, err)
		}
		if err := json.Unmarshal([]byte(row.Data), into); err != nil {
			return fmt.Errorf("decode local %s: %w", key, err)
		}
		return nil
	}
	if err := load(keyInvoices, &snap.Invoices); err != nil {
		return nil, err
	}
	if err := load(keyClients, &snap.Clients); err != nil {
		return nil, err
	}
	if err := load(keyProjects, &snap.Projects); err != nil {
		return nil, err
	}
	if err := load(keySettings, &snap.Settings); err != nil {
		return nil, err
	}
	return snap, nil
}
