package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/services"
	"github.com/fsnav/fsnav/internal/state"
	"github.com/fsnav/fsnav/internal/util/sanitize"
	strutil "github.com/fsnav/fsnav/internal/util/strings"
)

var errQuit = errors.New("quit")

const browseHelp = `Commands:
  ls [-l]                 show the current view (-l: long format)
  cd PATH | ..            open a directory or file (relative or absolute)
  back                    return to the previous view
  more [all]              load the next page, or every remaining page
  next | prev | page N    change page (classic pagination)
  size N                  change the page size (classic pagination)
  refresh                 reload the directory, bypassing the server cache
  sort name|size|date [desc]
  select NAME... | all    mark entries
  unselect NAME... | all  unmark entries
  archive [CLASS] [DAYS]  archive selected files (default GLACIER)
  restore [DAYS] [TIER]   restore selected files (default 7 days, Standard)
  tasks [done]            show the transition task log
  password                enter the directory password again
  pwd | info              show the current path / navigator state
  help | quit`

// browser is the interactive session state on top of a navigator.
type browser struct {
	nav         *navigator.Navigator
	strategy    navigator.Strategy
	transitions *services.TransitionService
	tasks       *services.TaskService
	ask         passwordFunc
	redirects   <-chan events.Event
	out         io.Writer

	long   bool
	sortBy string
	desc   bool
}

func newBrowser(nav *navigator.Navigator, bus *events.EventBus, out io.Writer) *browser {
	b := &browser{
		nav:      nav,
		strategy: navigator.SelectStrategy(nav.Pagination(), nav),
		ask:      promptPassword,
		out:      out,
	}
	if bus != nil {
		b.redirects = bus.Subscribe(state.EventRedirect)
	}
	return b
}

// newBrowseCmd creates the 'browse' command.
func newBrowseCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse directories interactively",
		Long: `Start an interactive browser at path (default: /).

The browser keeps a back history, remembers visited pages, follows the
site's pagination mode and lets you select files for archive or restore.
Type 'help' inside the browser for the command list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := navigator.RootPath
			if len(args) == 1 {
				p = args[0]
			}
			return runBrowse(GetContext(), p, password)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Directory password")
	return cmd
}

func runBrowse(ctx context.Context, start, password string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	nav, err := a.newNavigator(ctx)
	if err != nil {
		return err
	}
	stop := a.watchProgress(ctx)
	defer stop()

	b := newBrowser(nav, a.bus, os.Stdout)
	b.transitions = a.transitions
	b.tasks = a.tasks

	if user := a.files.User(); user != nil {
		fmt.Fprintf(b.out, "Connected to %s as %s (%s pagination)\n", a.client.BaseURL(), user.Username, nav.Pagination().Type)
	}
	if password != "" {
		nav.SetPassword(password)
	}
	if err := b.open(ctx, start, navigator.NavigateOptions{RetryPassword: password != ""}); err != nil {
		fmt.Fprintln(b.out, err)
	}
	b.show()

	for {
		line, err := promptLine(b.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := b.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(b.out, "Error:", err)
		}
	}
}

func (b *browser) prompt() string {
	return fmt.Sprintf("%s> ", b.nav.CurrentPath())
}

// open navigates to p and unlocks it if needed.
func (b *browser) open(ctx context.Context, p string, opts navigator.NavigateOptions) error {
	err := openPath(ctx, b.nav, p, opts, b.ask)
	b.reportRedirects()
	return err
}

// reportRedirects prints redirects that happened since the last command.
func (b *browser) reportRedirects() {
	if b.redirects == nil {
		return
	}
	for {
		select {
		case ev, ok := <-b.redirects:
			if !ok {
				b.redirects = nil
				return
			}
			if r, ok := ev.(*state.RedirectEvent); ok {
				fmt.Fprintf(b.out, "(%s is not accessible, showing %s)\n", r.From, r.To)
			}
		default:
			return
		}
	}
}

// show renders the current view.
func (b *browser) show() {
	snap := b.nav.Snapshot()
	var shown []models.Entry
	if b.sortBy != "" {
		shown = b.nav.Listing().SortedEntries(b.sortBy, !b.desc)
	}
	printView(b.out, snap, shown, renderOptions{Long: b.long, Marks: snap.SelectedCount > 0})
}

// exec runs one command line. It returns errQuit to end the session.
func (b *browser) exec(ctx context.Context, line string) error {
	fields, err := sanitize.Fields(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return b.autoLoad(ctx, false)
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return errQuit

	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)

	case "pwd":
		fmt.Fprintln(b.out, b.nav.CurrentPath())

	case "ls", "list":
		b.long = len(args) > 0 && args[0] == "-l"
		b.show()

	case "cd", "open":
		if len(args) != 1 {
			return fmt.Errorf("usage: cd PATH")
		}
		if err := b.cd(ctx, args[0]); err != nil {
			return err
		}
		b.show()

	case "..", "up":
		if err := b.cd(ctx, ".."); err != nil {
			return err
		}
		b.show()

	case "back":
		if !b.nav.Back(ctx) {
			fmt.Fprintln(b.out, "No previous view.")
			return nil
		}
		b.reportRedirects()
		b.show()

	case "refresh":
		b.nav.Refresh(ctx, navigator.RefreshOptions{})
		if err := unlock(ctx, b.nav, b.ask); err != nil {
			return err
		}
		b.show()

	case "password":
		b.nav.SetPassword("")
		b.nav.Refresh(ctx, navigator.RefreshOptions{NoForce: true})
		if err := unlock(ctx, b.nav, b.ask); err != nil {
			return err
		}
		b.show()

	case "more":
		if len(args) == 1 && args[0] == "all" {
			if _, auto := b.strategy.(*navigator.AutoLoader); auto {
				return b.autoLoad(ctx, true)
			}
			before := b.nav.Listing().Count()
			if err := loadAll(ctx, b.nav); err != nil {
				return err
			}
			b.printAppended(before)
			return nil
		}
		return b.more(ctx)

	case "next", "prev", "page":
		return b.page(ctx, cmd, args)

	case "size":
		return b.size(ctx, args)

	case "sort":
		return b.sort(args)

	case "select":
		return b.selectEntries(args, true)

	case "unselect":
		return b.selectEntries(args, false)

	case "archive":
		return b.archive(ctx, args)

	case "restore":
		return b.restore(ctx, args)

	case "tasks":
		return b.showTasks(ctx, len(args) > 0 && args[0] == "done")

	case "info":
		b.info()

	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
	return nil
}

// cd opens target relative to the current directory. A name listed as a
// directory is marked as such first so the listing is fetched directly.
func (b *browser) cd(ctx context.Context, target string) error {
	if e, ok := b.nav.Listing().Find(target); ok && e.IsDir && b.nav.State() == state.Folder {
		b.nav.MarkPathKind(e.Name, true, true)
	}
	p := target
	if !strings.HasPrefix(target, "/") {
		p = navigator.JoinPath(b.nav.CurrentPath(), target)
	}
	return b.open(ctx, p, navigator.NavigateOptions{})
}

func (b *browser) more(ctx context.Context) error {
	switch s := b.strategy.(type) {
	case *navigator.LoadMoreButton:
		if !s.Visible() {
			fmt.Fprintln(b.out, "Everything is loaded.")
			return nil
		}
		before := b.nav.Listing().Count()
		s.Click(ctx)
		b.printAppended(before)
		return nil
	case *navigator.AutoLoader:
		return b.autoLoad(ctx, false)
	default:
		return b.page(ctx, "next", nil)
	}
}

// autoLoad feeds the auto loader's sentinel. An empty line counts as
// scrolling to the end once; "more all" keeps the sentinel visible until
// every page is loaded.
func (b *browser) autoLoad(ctx context.Context, untilDone bool) error {
	loader, ok := b.strategy.(*navigator.AutoLoader)
	if !ok {
		return nil
	}
	if b.nav.State() != state.Folder || b.nav.AllLoaded() {
		return nil
	}

	before := b.nav.Listing().Count()
	sentinel := make(chan bool)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(sentinel)
		ticker := time.NewTicker(constants.AutoLoadPollInterval)
		defer ticker.Stop()
		for {
			// A failed page leaves a banner; stop instead of retrying forever.
			if b.nav.Listing().Banner() != "" {
				return
			}
			select {
			case sentinel <- true:
			case <-ctx.Done():
				return
			}
			if !untilDone {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := loader.Observe(ctx, sentinel); err != nil {
		return err
	}
	b.printAppended(before)
	return nil
}

// printAppended prints the entries added by a load-more and the footer.
func (b *browser) printAppended(before int) {
	snap := b.nav.Snapshot()
	if snap.Banner != "" {
		fmt.Fprintf(b.out, "! %s\n", snap.Banner)
	}
	if before < len(snap.Entries) {
		printEntries(b.out, snap.Entries[before:], renderOptions{Long: b.long, Marks: snap.SelectedCount > 0})
	}
	if footer := listingFooter(snap); footer != "" {
		fmt.Fprintln(b.out, footer)
	}
}

func (b *browser) page(ctx context.Context, cmd string, args []string) error {
	pager, ok := b.strategy.(*navigator.ClassicPager)
	if !ok {
		return fmt.Errorf("%s: pages are only numbered in classic pagination, use 'more'", cmd)
	}

	target := pager.Current()
	switch cmd {
	case "next":
		target++
	case "prev":
		target--
	default:
		if len(args) != 1 {
			return fmt.Errorf("usage: page N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page %q", args[0])
		}
		target = n
	}
	if target < 1 || target > pager.PageCount() {
		return fmt.Errorf("page %d out of range 1-%d", target, pager.PageCount())
	}

	pager.GoToPage(ctx, target)
	if err := unlock(ctx, b.nav, b.ask); err != nil {
		return err
	}
	b.show()
	return nil
}

func (b *browser) size(ctx context.Context, args []string) error {
	pager, ok := b.strategy.(*navigator.ClassicPager)
	if !ok {
		return fmt.Errorf("size: only available in classic pagination")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: size N (one of %v)", pager.SizeOptions())
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid size %q", args[0])
	}
	pager.SetPageSize(ctx, navigator.ClampPageSize(n, 0, b.nav.Pagination()))
	if err := unlock(ctx, b.nav, b.ask); err != nil {
		return err
	}
	b.show()
	return nil
}

func (b *browser) sort(args []string) error {
	if len(args) == 0 {
		b.sortBy, b.desc = "", false
		b.show()
		return nil
	}
	switch args[0] {
	case "name", "size", "date":
	default:
		return fmt.Errorf("sort by name, size or date")
	}
	b.sortBy = args[0]
	b.desc = len(args) > 1 && args[1] == "desc"
	b.show()
	return nil
}

func (b *browser) selectEntries(names []string, on bool) error {
	listing := b.nav.Listing()
	if len(names) == 0 {
		fmt.Fprintf(b.out, "%s selected\n", strutil.Count(listing.SelectedCount(), "file"))
		return nil
	}
	if len(names) == 1 && names[0] == "all" {
		if on {
			listing.SelectAll()
		} else {
			listing.ClearSelection()
		}
	} else {
		for _, name := range names {
			if on {
				if !listing.Select(name) {
					return fmt.Errorf("no entry named %q", name)
				}
			} else {
				listing.Deselect(name)
			}
		}
	}
	fmt.Fprintf(b.out, "%d selected\n", listing.SelectedCount())
	return nil
}

func (b *browser) archive(ctx context.Context, args []string) error {
	opts := services.TransitionOptions{Action: models.TransitionArchive}
	if len(args) > 0 {
		opts.StorageClass = args[0]
	}
	if len(args) > 1 {
		days, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid days %q", args[1])
		}
		opts.Days = &days
	}
	return b.transition(ctx, opts)
}

func (b *browser) restore(ctx context.Context, args []string) error {
	opts := services.TransitionOptions{Action: models.TransitionRestore}
	if len(args) > 0 {
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid days %q", args[0])
		}
		opts.Days = &days
	}
	if len(args) > 1 {
		opts.Tier = args[1]
	}
	return b.transition(ctx, opts)
}

func (b *browser) transition(ctx context.Context, opts services.TransitionOptions) error {
	if b.transitions == nil {
		return fmt.Errorf("transitions are not available")
	}
	report, err := b.transitions.SubmitSelection(ctx, b.nav, opts)
	if report != nil {
		printReport(b.out, report)
	}
	if err != nil {
		return err
	}
	b.show()
	return nil
}

func (b *browser) showTasks(ctx context.Context, done bool) error {
	if b.tasks == nil {
		return fmt.Errorf("task log is not available")
	}
	tasks, err := b.tasks.List(ctx, done)
	if err != nil {
		return err
	}
	printTasks(b.out, tasks)
	return nil
}

func (b *browser) info() {
	snap := b.nav.Snapshot()
	fmt.Fprintf(b.out, "path:        %s\n", snap.Path)
	fmt.Fprintf(b.out, "state:       %s\n", snap.State)
	fmt.Fprintf(b.out, "pagination:  %s, %d per page\n", snap.Pagination.Type, b.nav.PageSize())
	fmt.Fprintf(b.out, "page:        %d\n", snap.Page)
	fmt.Fprintf(b.out, "loaded:      %d of %d\n", len(snap.Entries), snap.Total)
	fmt.Fprintf(b.out, "all loaded:  %t\n", snap.AllLoaded)
	fmt.Fprintf(b.out, "can go back: %t\n", snap.CanGoBack)
	fmt.Fprintf(b.out, "selected:    %d\n", snap.SelectedCount)
	if snap.Folder.Provider != "" {
		fmt.Fprintf(b.out, "provider:    %s\n", snap.Folder.Provider)
	}
}
