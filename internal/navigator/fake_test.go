package navigator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/state"
)

type backendCall struct {
	kind    string
	path    string
	page    int
	perPage int
	refresh bool
}

// fakeBackend serves canned describe and list results. A gate registered
// for a path holds that call until the gate is closed, regardless of
// cancellation, to simulate a late response.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	objs    map[string]*models.EntryDescriptor
	lists   map[string]func(models.ListRequest) *models.ListingPage
	getErr  map[string]error
	listErr map[string]error
	gates   map[string]chan struct{}
	started chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		objs:    make(map[string]*models.EntryDescriptor),
		lists:   make(map[string]func(models.ListRequest) *models.ListingPage),
		getErr:  make(map[string]error),
		listErr: make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (f *fakeBackend) dir(p string, names ...string) {
	f.objs[p] = &models.EntryDescriptor{Entry: models.Entry{Name: rootEntryName(p), IsDir: true}}
	f.lists[p] = func(models.ListRequest) *models.ListingPage {
		return &models.ListingPage{Content: entries(names...), Total: int64(len(names))}
	}
}

func (f *fakeBackend) paged(p string, total int) {
	f.objs[p] = &models.EntryDescriptor{Entry: models.Entry{Name: rootEntryName(p), IsDir: true}}
	f.lists[p] = func(req models.ListRequest) *models.ListingPage {
		var names []string
		for i := (req.Page - 1) * req.PerPage; i < req.Page*req.PerPage && i < total; i++ {
			names = append(names, fmt.Sprintf("%s-%03d", rootEntryName(p), i))
		}
		return &models.ListingPage{Content: entries(names...), Total: int64(total)}
	}
}

func (f *fakeBackend) file(p string) {
	f.objs[p] = &models.EntryDescriptor{
		Entry:  models.Entry{Name: rootEntryName(p), Size: 42},
		RawURL: "https://files.example.com/d" + p,
		Readme: "about " + p,
	}
}

func (f *fakeBackend) gate(p string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[p] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeBackend) record(c backendCall) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.gates[c.path]
}

func (f *fakeBackend) wait(gate chan struct{}, p string) {
	if gate == nil {
		return
	}
	f.started <- p
	<-gate
}

func (f *fakeBackend) DescribeEntry(ctx context.Context, req models.GetRequest) (*models.EntryDescriptor, error) {
	f.wait(f.record(backendCall{kind: "get", path: req.Path}), req.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.getErr[req.Path]; ok {
		return nil, err
	}
	obj, ok := f.objs[req.Path]
	if !ok {
		return nil, &api.Error{Code: 500, Message: "object not found", Path: req.Path}
	}
	cp := *obj
	return &cp, nil
}

func (f *fakeBackend) ListDirectory(ctx context.Context, req models.ListRequest) (*models.ListingPage, error) {
	f.wait(f.record(backendCall{kind: "list", path: req.Path, page: req.Page, perPage: req.PerPage, refresh: req.Refresh}), req.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.listErr[req.Path]; ok {
		return nil, err
	}
	fn, ok := f.lists[req.Path]
	if !ok {
		return nil, &api.Error{Code: 500, Message: "object not found", Path: req.Path}
	}
	return fn(req), nil
}

func (f *fakeBackend) callsOf(kind string) []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backendCall
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func entries(names ...string) []models.Entry {
	out := make([]models.Entry, len(names))
	for i, n := range names {
		out[i] = models.Entry{Name: n}
	}
	return out
}

func roots(paths ...string) StaticPermissions {
	out := make(StaticPermissions, len(paths))
	for i, p := range paths {
		out[i] = models.PermissionRoot{Path: p}
	}
	return out
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestNavigator(b Backend, perms PermissionSource, cfg PaginationConfig) (*Navigator, *events.EventBus) {
	bus := events.NewEventBus(1000)
	n := New(Options{
		Backend:     b,
		Permissions: perms,
		Session:     NewSession(16),
		Listing:     state.NewListing(bus),
		EventBus:    bus,
		Pagination:  cfg,
		Clock:       func() time.Time { return fixedNow },
	})
	return n, bus
}

func names(es []models.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}
