package navigator

import (
	"context"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/state"
)

type listRequest struct {
	page   int
	size   int
	force  bool
	append bool
}

// describe probes p to learn whether it is a file or a directory.
func (n *Navigator) describe(ctx context.Context, gen uint64, p string, lr listRequest) {
	n.mu.Lock()
	if n.gen != gen {
		n.mu.Unlock()
		return
	}
	reqCtx, ticket, cancel := n.beginLocked(&n.objSlot, ctx, "new fs/get: "+p)
	defer cancel(nil)
	n.listing.SetState(state.FetchingObj)
	password := n.password
	n.mu.Unlock()

	start := n.now()
	obj, err := n.backend.DescribeEntry(reqCtx, models.GetRequest{Path: p, Password: password})
	n.logger.Debug().
		Str("path", p).
		Int64("network_ms", n.now().Sub(start).Milliseconds()).
		Msg("fs/get network")

	n.mu.Lock()
	if !n.liveLocked(reqCtx, &n.objSlot, ticket, gen) {
		n.mu.Unlock()
		return
	}
	n.objSlot.cancel = nil

	if err != nil {
		redirect := n.recoverLocked(err)
		n.mu.Unlock()
		n.followRedirect(ctx, gen, p, redirect)
		return
	}

	n.listing.SetObj(obj)
	if obj.IsDir {
		n.session.Kinds.MarkAsDirectory(p)
		n.mu.Unlock()
		n.list(ctx, gen, p, lr)
		return
	}

	n.session.Kinds.MarkAsUnknown(p)
	n.listing.ShowFile(state.FileMeta{
		RawURL:   obj.RawURL,
		Readme:   obj.Readme,
		Header:   obj.Header,
		Provider: obj.Provider,
		Related:  obj.Related,
	})
	n.listing.SetWrongPassword(false)
	n.listing.SetState(state.File)
	n.mu.Unlock()
}

// list fetches one page of p, replacing the listing or appending to it.
func (n *Navigator) list(ctx context.Context, gen uint64, p string, lr listRequest) {
	n.mu.Lock()
	if n.gen != gen {
		n.mu.Unlock()
		return
	}
	page := max(lr.page, 1)
	size := lr.size
	if size <= 0 {
		size = n.pageSizeLocked(0)
	}
	reqCtx, ticket, cancel := n.beginLocked(&n.listSlot, ctx, "new fs/list: "+p)
	defer cancel(nil)
	if lr.append {
		n.listing.SetState(state.FetchingMore)
	} else {
		n.listing.SetState(state.FetchingObjs)
	}
	password := n.password
	target := Resolve(p, n.perms.Permissions())
	n.mu.Unlock()

	start := n.now()
	resp, err := n.backend.ListDirectory(reqCtx, models.ListRequest{
		Path:     target,
		Password: password,
		Page:     page,
		PerPage:  size,
		Refresh:  lr.force,
	})
	networkMs := n.now().Sub(start).Milliseconds()

	n.mu.Lock()
	if !n.liveLocked(reqCtx, &n.listSlot, ticket, gen) {
		n.mu.Unlock()
		return
	}
	n.listSlot.cancel = nil

	if err != nil {
		redirect := n.recoverLocked(err)
		n.mu.Unlock()
		n.followRedirect(ctx, gen, p, redirect)
		return
	}

	respPage := page
	if resp.Page > 0 {
		respPage = resp.Page
	}
	respPerPage := size
	if resp.PerPage > 0 {
		respPerPage = resp.PerPage
	}
	hasMore := resp.ComputeHasMore(respPage, respPerPage)
	total := resp.EffectiveTotal()
	meta := state.FolderMeta{
		Readme:   resp.Readme,
		Header:   resp.Header,
		Write:    resp.Write,
		Provider: resp.Provider,
	}

	n.hasMore, n.hasMoreKnown = hasMore, true
	n.listing.SetPage(respPage, respPerPage)
	if lr.append {
		n.listing.AppendEntries(resp.Content, total, meta)
	} else {
		n.listing.ReplaceEntries(resp.Content, total, meta)
	}
	n.session.Kinds.MarkAsDirectory(p)
	n.current.Page = respPage
	n.listing.SetWrongPassword(false)
	n.listing.SetState(state.Folder)
	n.mu.Unlock()

	n.logger.Debug().
		Str("path", p).
		Int("page", respPage).
		Int("per_page", respPerPage).
		Bool("append", lr.append).
		Bool("has_more", hasMore).
		Int("received_items", len(resp.Content)).
		Int64("total", total).
		Int64("network_ms", networkMs).
		Msg("fs/list")
}

// recoverLocked applies the recovery decision for err and returns the
// path to redirect to, if any.
func (n *Navigator) recoverLocked(err error) string {
	code := api.StatusCode(err)
	msg := api.Message(err)
	roots := n.perms.Permissions()
	d := Decide(code, msg, n.current.Path, roots)

	switch d.Action {
	case ActionNone:
		return ""
	case ActionShowRoots:
		n.showRootsLocked(roots)
	case ActionNeedPassword:
		n.listing.SetWrongPassword(n.retryPassword)
		n.listing.SetState(state.NeedPassword)
	case ActionBanner:
		n.listing.SetBanner(d.Banner)
		n.listing.SetState(state.Initial)
	}

	n.logger.Warn().
		Str("path", n.current.Path).
		Int("code", code).
		Str("kind", d.Kind.String()).
		Str("redirect", d.RedirectTo).
		Msg(msg)
	return d.RedirectTo
}

func (n *Navigator) followRedirect(ctx context.Context, gen uint64, from, to string) {
	if to == "" {
		return
	}
	if n.eventBus != nil {
		n.eventBus.Publish(state.NewRedirectEvent(from, to, "recovered"))
	}
	n.navigate(ctx, to, NavigateOptions{}, navRedirect, gen)
}
