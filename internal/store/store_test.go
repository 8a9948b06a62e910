package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/facturo/facturo/internal/models"
)

// fakeRemote implements Remote in memory and can be told to fail.
type fakeRemote struct {
	invoices map[string]models.Invoice
	clients  map[string]models.Client
	projects map[string]models.Project
	settings *models.AppSettings

	failWith error // returned by every op when set
	calls    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		invoices: map[string]models.Invoice{},
		clients:  map[string]models.Client{},
		projects: map[string]models.Project{},
	}
}

func (f *fakeRemote) op() error {
	f.calls++
	return f.failWith
}

func (f *fakeRemote) FetchAll(context.Context) (*Snapshot, bool, error) {
	if err := f.op(); err != nil {
		return nil, false, err
	}
	snap := NewSnapshot()
	for _, inv := range f.invoices {
		snap.Invoices = append(snap.Invoices, inv)
	}
	for _, c := range f.clients {
		snap.Clients = append(snap.Clients, c)
	}
	for _, p := range f.projects {
		snap.Projects = append(snap.Projects, p)
	}
	if f.settings == nil {
		return snap, false, nil
	}
	snap.Settings = *f.settings
	return snap, true, nil
}

func (f *fakeRemote) ReplaceAll(_ context.Context, snap *Snapshot) error {
	if err := f.op(); err != nil {
		return err
	}
	f.invoices = map[string]models.Invoice{}
	f.clients = map[string]models.Client{}
	f.projects = map[string]models.Project{}
	for _, inv := range snap.Invoices {
		f.invoices[inv.ID] = inv.Clone()
	}
	for _, c := range snap.Clients {
		f.clients[c.ID] = c
	}
	for _, p := range snap.Projects {
		f.projects[p.ID] = p
	}
	settings := snap.Settings
	f.settings = &settings
	return nil
}

func (f *fakeRemote) SaveInvoice(_ context.Context, inv models.Invoice) error {
	if err := f.op(); err != nil {
		return err
	}
	f.invoices[inv.ID] = inv.Clone()
	return nil
}

func (f *fakeRemote) DeleteInvoice(_ context.Context, id string) error {
	if err := f.op(); err != nil {
		return err
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeRemote) SaveClient(_ context.Context, c models.Client) error {
	if err := f.op(); err != nil {
		return err
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeRemote) DeleteClient(_ context.Context, id string) error {
	if err := f.op(); err != nil {
		return err
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeRemote) SaveProject(_ context.Context, p models.Project) error {
	if err := f.op(); err != nil {
		return err
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRemote) DeleteProject(_ context.Context, id string) error {
	if err := f.op(); err != nil {
		return err
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeRemote) SaveSettings(_ context.Context, s models.AppSettings) error {
	if err := f.op(); err != nil {
		return err
	}
	f.settings = &s
	return nil
}

var errConnRefused = errors.New("dial tcp: connection refused")

func TestStoreWithoutRemoteIsPermanentlyOffline(t *testing.T) {
	s := New(Options{Local: openTestLocal(t)})
	if s.Online() {
		t.Fatalf("store with no remote configuration started ONLINE")
	}
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := s.CreateClient(context.Background(), models.Client{Name: "Ada"}); err != nil {
		t.Fatalf("create client: %v", err)
	}
	if s.Online() {
		t.Fatalf("store went ONLINE without a remote")
	}
}

func TestStoreOfflineTransitionIsSticky(t *testing.T) {
	local := openTestLocal(t)
	remote := newFakeRemote()
	s := New(Options{Local: local, Remote: remote})
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !s.Online() {
		t.Fatalf("store with reachable remote started OFFLINE")
	}

	remote.failWith = errConnRefused
	ctx := context.Background()
	inv, err := s.CreateInvoice(ctx, models.Invoice{Number: "2026-001"})
	if err != nil {
		t.Fatalf("create during outage must not hard-fail, got %v", err)
	}
	if s.Online() {
		t.Fatalf("store still ONLINE after connectivity failure")
	}

	// Remote recovers, but the transition is sticky for the session.
	remote.failWith = nil
	calls := remote.calls
	if _, err := s.CreateClient(ctx, models.Client{Name: "Ada"}); err != nil {
		t.Fatalf("create client: %v", err)
	}
	if remote.calls != calls {
		t.Fatalf("remote contacted again while OFFLINE")
	}

	// Every mutation must still be durable locally, in order.
	snap, err := local.Load()
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if len(snap.Invoices) != 1 || snap.Invoices[0].ID != inv.ID {
		t.Fatalf("invoice missing from local mirror: %#v", snap.Invoices)
	}
	if len(snap.Clients) != 1 || snap.Clients[0].Name != "Ada" {
		t.Fatalf("client missing from local mirror: %#v", snap.Clients)
	}
}

func TestStoreSizeLimitFailureStaysOnline(t *testing.T) {
	local := openTestLocal(t)
	remote := newFakeRemote()
	s := New(Options{Local: local, Remote: remote})
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	remote.failWith = &PayloadTooLargeError{Key: "it-1_0", Size: 99, Limit: 10}
	inv, err := s.CreateInvoice(context.Background(), models.Invoice{Number: "2026-002"})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
	if !s.Online() {
		t.Fatalf("size-limit failure is not a connectivity problem; store must stay ONLINE")
	}
	// The change is already durable locally despite the returned notice.
	snap, err := local.Load()
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if len(snap.Invoices) != 1 || snap.Invoices[0].ID != inv.ID {
		t.Fatalf("invoice missing from local mirror: %#v", snap.Invoices)
	}
}

func TestStoreBootstrapFallsBackToLocal(t *testing.T) {
	local := openTestLocal(t)
	seeded := NewSnapshot()
	seeded.Clients = []models.Client{{ID: "c1", Name: "Ada"}}
	if err := local.Save(seeded); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	remote := newFakeRemote()
	remote.failWith = errConnRefused
	s := New(Options{Local: local, Remote: remote})
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap with unreachable remote must fall back, got %v", err)
	}
	if s.Online() {
		t.Fatalf("store ONLINE after failed bootstrap")
	}
	clients := s.Clients()
	if len(clients) != 1 || clients[0].ID != "c1" {
		t.Fatalf("local snapshot not loaded: %#v", clients)
	}
}

func TestStoreBootstrapSeedsDefaultSettings(t *testing.T) {
	remote := newFakeRemote() // no settings record
	s := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if remote.settings == nil {
		t.Fatalf("empty remote settings collection was not seeded")
	}
	if got := s.Settings(); got != models.DefaultSettings() {
		t.Fatalf("settings = %#v, want defaults", got)
	}
}

func TestStoreBootstrapLoadsRemoteState(t *testing.T) {
	remote := newFakeRemote()
	remote.invoices["inv-1"] = sampleInvoice()
	settings := models.AppSettings{BusinessName: "Studio North"}
	remote.settings = &settings

	s := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if got, ok := s.Invoice("inv-1"); !ok || got.Number != "2026-014" {
		t.Fatalf("remote invoice not loaded: %#v ok=%v", got, ok)
	}
	if s.Settings().BusinessName != "Studio North" {
		t.Fatalf("remote settings not loaded: %#v", s.Settings())
	}
}

func TestStoreUpdateAndDeleteMissingRecords(t *testing.T) {
	s := New(Options{Local: openTestLocal(t)})
	ctx := context.Background()
	if err := s.UpdateInvoice(ctx, models.Invoice{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing invoice: %v, want ErrNotFound", err)
	}
	if err := s.DeleteClient(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing client: %v, want ErrNotFound", err)
	}
	if err := s.DeleteProject(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing project: %v, want ErrNotFound", err)
	}
}

func TestStoreExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := New(Options{Local: openTestLocal(t)})

	client, err := src.CreateClient(ctx, models.Client{Name: "Ada", Company: "Analytical"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := src.CreateProject(ctx, models.Project{Title: "Album", ClientID: client.ID, ClientName: client.Name, Status: models.ProjectStatusActive, Progress: 10}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := src.CreateInvoice(ctx, sampleInvoice()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := src.SaveSettings(ctx, models.AppSettings{BusinessName: "Studio North"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	var doc bytes.Buffer
	if err := src.Export(&doc); err != nil {
		t.Fatalf("export: %v", err)
	}

	dstLocal, err := OpenLocal(fmt.Sprintf("file:%s_dst?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open dst local: %v", err)
	}
	dst := New(Options{Local: dstLocal})
	if err := dst.Import(ctx, bytes.NewReader(doc.Bytes())); err != nil {
		t.Fatalf("import: %v", err)
	}

	if !reflect.DeepEqual(dst.Invoices(), src.Invoices()) {
		t.Fatalf("invoices differ after round trip")
	}
	if !reflect.DeepEqual(dst.Clients(), src.Clients()) {
		t.Fatalf("clients differ after round trip")
	}
	if !reflect.DeepEqual(dst.Projects(), src.Projects()) {
		t.Fatalf("projects differ after round trip")
	}
	if dst.Settings() != src.Settings() {
		t.Fatalf("settings differ after round trip")
	}
}

func TestStoreImportRejectsMalformedDocument(t *testing.T) {
	ctx := context.Background()
	s := New(Options{Local: openTestLocal(t)})
	if _, err := s.CreateClient(ctx, models.Client{Name: "Ada"}); err != nil {
		t.Fatalf("create client: %v", err)
	}

	for name, doc := range map[string]string{
		"not json":          "{invoices: [",
		"negative quantity": `{"invoices":[{"id":"i1","items":[{"id":"t1","quantity":-2}]}]}`,
		"unknown status":    `{"invoices":[{"id":"i1","status":"archived"}]}`,
		"missing id":        `{"clients":[{"name":"x"}]}`,
		"bad progress":      `{"projects":[{"id":"p1","progress":250}]}`,
	} {
		err := s.Import(ctx, strings.NewReader(doc))
		if !errors.Is(err, ErrBadSnapshot) {
			t.Fatalf("%s: err = %v, want ErrBadSnapshot", name, err)
		}
	}

	// A rejected import must not have mutated anything.
	if got := s.Clients(); len(got) != 1 || got[0].Name != "Ada" {
		t.Fatalf("state mutated by rejected import: %#v", got)
	}
}

func TestStoreUpdateInvoiceMintsItemIDs(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	inv, err := s.CreateInvoice(ctx, models.Invoice{Number: "2026-020"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inv.Items = append(inv.Items, models.LineItem{Description: "prints", Images: []string{"data:a", "data:b"}})
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := s.Invoice(inv.ID)
	if !ok || len(got.Items) != 1 {
		t.Fatalf("updated invoice not stored: %#v ok=%v", got, ok)
	}
	if got.Items[0].ID == "" {
		t.Fatalf("item saved without an id; its image keys would be malformed")
	}
	mirrored := remote.invoices[inv.ID]
	if len(mirrored.Items) != 1 || mirrored.Items[0].ID == "" {
		t.Fatalf("id-less item reached the remote: %#v", mirrored.Items)
	}
}

func TestStoreImportMirrorsToRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	doc := `{"invoices":[{"id":"i1","number":"2026-003","items":[]}],"clients":[{"id":"c1","name":"Ada"}],"projects":[],"settings":{"business_name":"Studio"}}`
	if err := s.Import(ctx, strings.NewReader(doc)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok := remote.invoices["i1"]; !ok {
		t.Fatalf("imported invoice not mirrored to remote")
	}
	if _, ok := remote.clients["c1"]; !ok {
		t.Fatalf("imported client not mirrored to remote")
	}
}

func TestStoreImportReplacesRemoteWholesale(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	old, err := s.CreateInvoice(ctx, models.Invoice{Number: "2026-001"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc := `{"invoices":[],"clients":[],"projects":[],"settings":{"business_name":"Studio"}}`
	if err := s.Import(ctx, strings.NewReader(doc)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok := remote.invoices[old.ID]; ok {
		t.Fatalf("invoice absent from the imported document survived on the remote")
	}

	// A fresh session bootstrapping from the same remote must see the
	// imported state, not the pre-import records.
	next := New(Options{Local: openTestLocal(t), Remote: remote})
	if err := next.Bootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if got := next.Invoices(); len(got) != 0 {
		t.Fatalf("pre-import invoices resurfaced after bootstrap: %#v", got)
	}
	if next.Settings().BusinessName != "Studio" {
		t.Fatalf("imported settings not served: %#v", next.Settings())
	}
}
