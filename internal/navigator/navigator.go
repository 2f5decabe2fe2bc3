package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/state"
)

// Backend is the remote file API the navigator reads from. Errors carry a
// status code readable by api.StatusCode; -1 means cancelled.
type Backend interface {
	DescribeEntry(ctx context.Context, req models.GetRequest) (*models.EntryDescriptor, error)
	ListDirectory(ctx context.Context, req models.ListRequest) (*models.ListingPage, error)
}

// PermissionSource supplies the current user's permission roots.
type PermissionSource interface {
	Permissions() []models.PermissionRoot
}

// StaticPermissions is a fixed set of roots.
type StaticPermissions []models.PermissionRoot

func (p StaticPermissions) Permissions() []models.PermissionRoot { return p }

// ErrSuperseded is the cancellation cause of a request replaced by a newer
// one of the same kind.
var ErrSuperseded = errors.New("request superseded")

// NavigateOptions are the optional arguments of Navigate.
type NavigateOptions struct {
	// Page is the 1-based page to show. Zero means the query hint in classic
	// pagination, else 1.
	Page int
	// RetryPassword marks a navigation that re-submits a password; a 403
	// answer then flags the password as wrong.
	RetryPassword bool
	// Force asks the server to bypass its listing cache.
	Force bool
	// PageSize overrides the page size for this navigation.
	PageSize int
}

// RefreshOptions are the optional arguments of Refresh.
type RefreshOptions struct {
	RetryPassword bool
	// NoForce turns off the cache bypass Refresh requests by default.
	NoForce bool
}

// Options configures a Navigator.
type Options struct {
	Backend     Backend
	Permissions PermissionSource
	Session     *Session
	Listing     *state.Listing
	EventBus    *events.EventBus
	Logger      *logging.Logger
	Pagination  PaginationConfig
	// Clock stamps synthetic entries and history. Defaults to time.Now.
	Clock func() time.Time
}

// Snapshot is a consistent read of the navigator for rendering.
type Snapshot struct {
	state.View
	HasMore      bool
	HasMoreKnown bool
	AllLoaded    bool
	CanGoBack    bool
	Pagination   PaginationConfig
}

type requestSlot struct {
	cancel context.CancelCauseFunc
	ticket uint64
}

type navMode int

const (
	navForward navMode = iota
	navBack
	navRefresh
	navRedirect
)

// Navigator coordinates navigation requests and owns the listing state
// machine. At most one describe and one list request are in flight; a new
// one cancels its predecessor, and a continuation whose request was
// superseded, or whose navigation was replaced, changes nothing.
//
// Public methods block until their flow has finished. They are safe to call
// from several goroutines; the last navigation issued wins.
type Navigator struct {
	backend    Backend
	perms      PermissionSource
	session    *Session
	listing    *state.Listing
	eventBus   *events.EventBus
	logger     *logging.Logger
	pagination PaginationConfig
	now        func() time.Time

	mu            sync.Mutex
	password      string
	queryPage     int
	queryPerPage  int
	retryPassword bool
	hasMore       bool
	hasMoreKnown  bool
	current       HistoryKey
	back          []HistoryKey

	objSlot  requestSlot
	listSlot requestSlot
	seq      uint64
	gen      uint64
}

// New creates a navigator in the Initial state.
func New(opts Options) *Navigator {
	n := &Navigator{
		backend:    opts.Backend,
		perms:      opts.Permissions,
		session:    opts.Session,
		listing:    opts.Listing,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		pagination: opts.Pagination,
		now:        opts.Clock,
	}
	if n.perms == nil {
		n.perms = StaticPermissions(nil)
	}
	if n.session == nil {
		n.session = NewSession(constants.DefaultHistorySize)
	}
	if n.listing == nil {
		n.listing = state.NewListing(opts.EventBus)
	}
	if n.logger == nil {
		n.logger = logging.NewNopLogger()
	}
	if n.now == nil {
		n.now = time.Now
	}
	n.pagination.Type = ParsePaginationType(string(n.pagination.Type))
	return n
}

// Listing returns the store the navigator writes to.
func (n *Navigator) Listing() *state.Listing { return n.listing }

// Session returns the caches the navigator uses.
func (n *Navigator) Session() *Session { return n.session }

// Pagination returns the active pagination config.
func (n *Navigator) Pagination() PaginationConfig { return n.pagination }

// State returns the current navigation state.
func (n *Navigator) State() state.NavState { return n.listing.State() }

// CurrentPath returns the path of the last navigation, "/" before any.
func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current.Path == "" {
		return RootPath
	}
	return n.current.Path
}

// SetPassword sets the directory password sent with subsequent requests.
func (n *Navigator) SetPassword(password string) {
	n.mu.Lock()
	n.password = password
	n.mu.Unlock()
}

// SetQuery sets the page and per_page hints. They behave like URL query
// parameters: both are dropped when navigation leaves the directory.
func (n *Navigator) SetQuery(page, perPage int) {
	n.mu.Lock()
	n.queryPage = max(page, 0)
	n.queryPerPage = max(perPage, 0)
	n.mu.Unlock()
}

// Query returns the page and per_page hints.
func (n *Navigator) Query() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.queryPage, n.queryPerPage
}

// PageSize returns the page size a list request issued now would use.
func (n *Navigator) PageSize() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pageSizeLocked(0)
}

func (n *Navigator) pageSizeLocked(explicit int) int {
	return ClampPageSize(explicit, n.queryPerPage, n.pagination)
}

// HasMore returns the has-more flag and whether it is known.
func (n *Navigator) HasMore() (hasMore, known bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hasMore, n.hasMoreKnown
}

// AllLoaded reports whether no further page exists. Once a listing has
// reported it, that flag decides; otherwise the current page is compared
// with the page count implied by the total and the configured size.
func (n *Navigator) AllLoaded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allLoadedLocked()
}

func (n *Navigator) allLoadedLocked() bool {
	if n.hasMoreKnown {
		return !n.hasMore
	}
	size := n.pagination.Size
	if size <= 0 {
		size = constants.DefaultPageSize
	}
	page, _ := n.listing.Page()
	total := n.listing.Total()
	pages := (total + int64(size) - 1) / int64(size)
	return int64(page) >= pages
}

// Snapshot returns the listing view plus pagination bookkeeping.
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Snapshot{
		View:         n.listing.View(),
		HasMore:      n.hasMore,
		HasMoreKnown: n.hasMoreKnown,
		AllLoaded:    n.allLoadedLocked(),
		CanGoBack:    len(n.back) > 0,
		Pagination:   n.pagination,
	}
}

// MarkPathKind records whether p is a directory. A relative p is taken
// relative to the current path.
func (n *Navigator) MarkPathKind(p string, isDir, relative bool) {
	if relative {
		p = JoinPath(n.CurrentPath(), p)
	}
	if isDir {
		n.session.Kinds.MarkAsDirectory(p)
	} else {
		n.session.Kinds.MarkAsUnknown(p)
	}
}

// Navigate shows p. See NavigateOptions for the optional arguments.
func (n *Navigator) Navigate(ctx context.Context, p string, opts NavigateOptions) {
	n.navigate(ctx, p, opts, navForward, 0)
}

// Back returns to the previously shown location, restoring its remembered
// view when there is one. It reports false when there is nothing to go
// back to.
func (n *Navigator) Back(ctx context.Context) bool {
	n.mu.Lock()
	if len(n.back) == 0 {
		n.mu.Unlock()
		return false
	}
	prev := n.back[len(n.back)-1]
	n.back = n.back[:len(n.back)-1]
	n.mu.Unlock()

	n.navigate(ctx, prev.Path, NavigateOptions{Page: prev.Page}, navBack, 0)
	return true
}

// Refresh re-fetches the current path from page 1, bypassing the server
// cache unless opts.NoForce is set. Remembered views of the path are
// dropped and the scroll position is reset.
func (n *Navigator) Refresh(ctx context.Context, opts RefreshOptions) {
	n.mu.Lock()
	p := n.current.Path
	if p == "" {
		p = RootPath
	}
	reason := "refresh: " + p
	n.cancelLocked(&n.objSlot, reason)
	n.cancelLocked(&n.listSlot, reason)
	n.session.History.ClearPath(p)
	n.hasMore, n.hasMoreKnown = false, false
	n.current.Page = 1
	_, perPage := n.listing.Page()
	n.listing.SetPage(1, perPage)
	n.listing.Clear()
	size := n.pageSizeLocked(0)
	n.mu.Unlock()

	n.navigate(ctx, p, NavigateOptions{
		Page:          1,
		RetryPassword: opts.RetryPassword,
		Force:         !opts.NoForce,
		PageSize:      size,
	}, navRefresh, 0)
	n.listing.SetScrollOffset(0)
}

// LoadMore appends the next page of the current directory. It does nothing
// unless the last listing reported that more entries exist.
func (n *Navigator) LoadMore(ctx context.Context) {
	n.mu.Lock()
	if !n.hasMoreKnown || !n.hasMore {
		n.mu.Unlock()
		return
	}
	gen := n.gen
	p := n.current.Path
	page, _ := n.listing.Page()
	lr := listRequest{page: page + 1, size: n.pageSizeLocked(0), append: true}
	n.mu.Unlock()

	n.list(ctx, gen, p, lr)
}

func (n *Navigator) navigate(ctx context.Context, p string, opts NavigateOptions, mode navMode, expectGen uint64) {
	p = CleanPath(p)

	n.mu.Lock()
	if mode == navRedirect && n.gen != expectGen {
		n.mu.Unlock()
		return
	}
	if mode != navRefresh && p != n.current.Path {
		n.queryPage, n.queryPerPage = 0, 0
	}

	page := opts.Page
	if page < 1 && n.pagination.Type == PaginationClassic {
		page = n.queryPage
	}
	if page < 1 {
		page = 1
	}
	target := HistoryKey{Path: p, Page: page}
	if mode == navForward || mode == navBack {
		n.leaveLocked(target, mode == navForward)
	}

	n.gen++
	gen := n.gen
	reason := "path change: " + p
	n.cancelLocked(&n.objSlot, reason)
	n.cancelLocked(&n.listSlot, reason)
	n.listing.SetBanner("")
	n.hasMore, n.hasMoreKnown = false, false
	n.current = target
	n.retryPassword = opts.RetryPassword
	if !opts.RetryPassword {
		n.listing.SetWrongPassword(false)
	}
	n.listing.SetPath(p)

	roots := n.perms.Permissions()
	lr := listRequest{page: page, size: n.pageSizeLocked(opts.PageSize), force: opts.Force}

	if p == RootPath {
		switch {
		case HasRootPermission(roots):
			n.mu.Unlock()
			n.list(ctx, gen, RootPath, lr)
		case len(roots) > 0:
			n.showRootsLocked(roots)
			n.mu.Unlock()
		default:
			n.listing.SetState(state.Initial)
			n.mu.Unlock()
		}
		return
	}

	if h, ok := n.session.History.Get(p, page); ok {
		n.listing.Restore(h.Capture)
		n.hasMore, n.hasMoreKnown = h.HasMore, h.HasMoreKnown
		n.listing.SetState(state.Folder)
		n.mu.Unlock()
		n.logger.Debug().Str("path", p).Int("page", page).Msg("restored from history")
		return
	}

	known := n.session.Kinds.IsKnownDirectory(p)
	n.mu.Unlock()

	if known {
		n.list(ctx, gen, p, lr)
	} else {
		n.describe(ctx, gen, p, lr)
	}
}

// leaveLocked remembers the folder being left and, for forward
// navigation, pushes it on the back stack.
func (n *Navigator) leaveLocked(target HistoryKey, push bool) {
	cur := n.current
	if cur.Path == "" || cur == target {
		return
	}
	if cur.Path != RootPath && n.listing.State() == state.Folder {
		n.session.History.Save(cur.Path, cur.Page, HistoryEntry{
			Capture:      n.listing.Capture(),
			HasMore:      n.hasMore,
			HasMoreKnown: n.hasMoreKnown,
			SavedAt:      n.now(),
		})
	}
	if push {
		n.back = append(n.back, cur)
		if len(n.back) > constants.MaxHistorySize {
			n.back = n.back[len(n.back)-constants.MaxHistorySize:]
		}
	}
}

func (n *Navigator) showRootsLocked(roots []models.PermissionRoot) {
	entries := SyntheticRootListing(roots, n.now())
	n.listing.ReplaceEntries(entries, int64(len(entries)), state.FolderMeta{})
	n.listing.SetState(state.Folder)
}

// beginLocked cancels whatever occupies slot and registers a new request.
func (n *Navigator) beginLocked(slot *requestSlot, parent context.Context, reason string) (context.Context, uint64, context.CancelCauseFunc) {
	n.cancelLocked(slot, reason)
	ctx, cancel := context.WithCancelCause(parent)
	n.seq++
	slot.cancel = cancel
	slot.ticket = n.seq
	return ctx, n.seq, cancel
}

func (n *Navigator) cancelLocked(slot *requestSlot, reason string) {
	if slot.cancel == nil {
		return
	}
	slot.cancel(fmt.Errorf("%w: %s", ErrSuperseded, reason))
	slot.cancel = nil
	n.logger.Debug().Uint64("ticket", slot.ticket).Str("reason", reason).Msg("request cancelled")
}

// liveLocked reports whether a finished request may still apply its result.
func (n *Navigator) liveLocked(ctx context.Context, slot *requestSlot, ticket, gen uint64) bool {
	return ctx.Err() == nil && slot.ticket == ticket && n.gen == gen
}
