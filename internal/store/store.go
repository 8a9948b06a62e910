// Package store persists the application state to a remote durable
// backend when one is configured and reachable, and to an on-device
// SQLite store always. The remote is preferred; the local store is a
// complete mirror and the durability backstop for every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facturo/facturo/internal/models"
)

// Options configures a Store. Local is required. A nil Remote means no
// remote configuration is present: the session runs OFFLINE permanently
// and no reconnection is ever attempted.
type Options struct {
	Local         *Local
	Remote        Remote
	Logger        *slog.Logger
	RemoteTimeout time.Duration
}

// Store owns the in-memory application state and is its only mutator.
// Two session states exist: ONLINE (remote mirrored best-effort) and
// OFFLINE. The first remote connectivity failure flips the session
// OFFLINE and the transition is sticky until restart.
type Store struct {
	mu      sync.Mutex
	state   *Snapshot
	local   *Local
	remote  Remote
	online  bool
	timeout time.Duration
	log     *slog.Logger
}

// New builds a Store. The session starts ONLINE only when a remote is
// configured; Bootstrap decides whether it stays that way.
func New(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.RemoteTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		state:   NewSnapshot(),
		local:   opts.Local,
		remote:  opts.Remote,
		online:  opts.Remote != nil,
		timeout: timeout,
		log:     log,
	}
}

// Online reports whether remote writes are still being attempted.
func (s *Store) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Bootstrap loads the initial state. With a remote configured it fetches
// all four collections; on any failure it goes OFFLINE and falls back to
// the local snapshot. An empty remote settings collection is seeded with
// defaults, best-effort. Without a remote it loads the local snapshot
// directly.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil {
		return s.loadLocalLocked()
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	snap, hasSettings, err := s.remote.FetchAll(rctx)
	if err != nil {
		s.goOfflineLocked(err)
		return s.loadLocalLocked()
	}
	s.state = snap
	if !hasSettings {
		s.state.Settings = models.DefaultSettings()
		if err := s.remote.SaveSettings(rctx, s.state.Settings); err != nil {
			s.log.Warn("seeding default settings failed", "err", err)
		}
	}
	if err := s.local.Save(s.state); err != nil {
		return fmt.Errorf("mirror bootstrap state: %w", err)
	}
	return nil
}

func (s *Store) loadLocalLocked() error {
	snap, err := s.local.Load()
	if err != nil {
		return err
	}
	s.state = snap
	return nil
}

func (s *Store) goOfflineLocked(cause error) {
	if !s.online {
		return
	}
	s.online = false
	s.log.Warn("remote store unreachable; continuing with local store only", "err", cause)
}

// apply runs one mutating operation: mutate in-memory state, persist the
// full snapshot locally (the only hard failure), then mirror to the
// remote when ONLINE. A remote connectivity failure flips OFFLINE and is
// swallowed; a remote size-limit failure is returned as-is so the caller
// can surface an actionable message; the state and local store already
// hold the change and the session stays ONLINE.
func (s *Store) apply(ctx context.Context, mutate func(*Snapshot) error, mirror func(context.Context, Remote) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := mutate(s.state); err != nil {
		return err
	}
	if err := s.local.Save(s.state); err != nil {
		return err
	}
	if !s.online || mirror == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := mirror(rctx, s.remote); err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return err
		}
		s.goOfflineLocked(err)
	}
	return nil
}

// CreateInvoice assigns ids to the invoice and any items missing one,
// appends it to the collection, and persists.
func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.NewString()
		}
	}
	err := s.apply(ctx,
		func(st *Snapshot) error {
			if st.invoiceIndex(inv.ID) >= 0 {
				return fmt.Errorf("invoice %s already exists", inv.ID)
			}
			st.Invoices = append(st.Invoices, inv.Clone())
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveInvoice(rctx, inv) },
	)
	return inv, err
}

// UpdateInvoice replaces the stored invoice with the same id, assigning
// ids to any items added without one. An id-less item would produce
// malformed child record keys and its images could not be restored.
func (s *Store) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.NewString()
		}
	}
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.invoiceIndex(inv.ID)
			if i < 0 {
				return fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
			}
			st.Invoices[i] = inv.Clone()
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveInvoice(rctx, inv) },
	)
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.invoiceIndex(id)
			if i < 0 {
				return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
			}
			st.Invoices = append(st.Invoices[:i], st.Invoices[i+1:]...)
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.DeleteInvoice(rctx, id) },
	)
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.apply(ctx,
		func(st *Snapshot) error {
			if st.clientIndex(c.ID) >= 0 {
				return fmt.Errorf("client %s already exists", c.ID)
			}
			st.Clients = append(st.Clients, c)
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveClient(rctx, c) },
	)
	return c, err
}

// UpdateClient replaces the stored client. Invoices keep the client
// snapshot they were saved with; history never changes retroactively.
func (s *Store) UpdateClient(ctx context.Context, c models.Client) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.clientIndex(c.ID)
			if i < 0 {
				return fmt.Errorf("client %s: %w", c.ID, ErrNotFound)
			}
			st.Clients[i] = c
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveClient(rctx, c) },
	)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.clientIndex(id)
			if i < 0 {
				return fmt.Errorf("client %s: %w", id, ErrNotFound)
			}
			st.Clients = append(st.Clients[:i], st.Clients[i+1:]...)
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.DeleteClient(rctx, id) },
	)
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := s.apply(ctx,
		func(st *Snapshot) error {
			if st.projectIndex(p.ID) >= 0 {
				return fmt.Errorf("project %s already exists", p.ID)
			}
			st.Projects = append(st.Projects, p)
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveProject(rctx, p) },
	)
	return p, err
}

func (s *Store) UpdateProject(ctx context.Context, p models.Project) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.projectIndex(p.ID)
			if i < 0 {
				return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
			}
			st.Projects[i] = p
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveProject(rctx, p) },
	)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			i := st.projectIndex(id)
			if i < 0 {
				return fmt.Errorf("project %s: %w", id, ErrNotFound)
			}
			st.Projects = append(st.Projects[:i], st.Projects[i+1:]...)
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.DeleteProject(rctx, id) },
	)
}

// SaveSettings replaces the singleton settings record wholesale.
func (s *Store) SaveSettings(ctx context.Context, settings models.AppSettings) error {
	return s.apply(ctx,
		func(st *Snapshot) error {
			st.Settings = settings
			return nil
		},
		func(rctx context.Context, r Remote) error { return r.SaveSettings(rctx, settings) },
	)
}

// Invoices returns a copy of the invoice collection.
func (s *Store) Invoices() []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invoice, len(s.state.Invoices))
	for i, inv := range s.state.Invoices {
		out[i] = inv.Clone()
	}
	return out
}

// Invoice returns one invoice by id.
func (s *Store) Invoice(id string) (models.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.state.invoiceIndex(id)
	if i < 0 {
		return models.Invoice{}, false
	}
	return s.state.Invoices[i].Clone(), true
}

// Clients returns a copy of the client collection.
func (s *Store) Clients() []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Client(nil), s.state.Clients...)
}

// Projects returns a copy of the project collection.
func (s *Store) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.state.Projects...)
}

// Settings returns the current settings record.
func (s *Store) Settings() models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Export writes the four collections as a single JSON document.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	snap := s.state.Clone()
	s.mu.Unlock()
	return EncodeSnapshot(w, snap)
}

// Import replaces the in-memory state and local store wholesale with a
// validated snapshot document. A rejected document leaves state
// untouched. When ONLINE the remote collections are replaced wholesale
// too, so records absent from the document do not resurface on the next
// bootstrap; a connectivity failure mid-mirror flips OFFLINE as usual.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	snap, err := DecodeSnapshot(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
	if err := s.local.Save(s.state); err != nil {
		return err
	}
	if !s.online {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.remote.ReplaceAll(rctx, s.state); err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return err
		}
		s.goOfflineLocked(err)
	}
	return nil
}
