package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/state"
	"github.com/fsnav/fsnav/internal/util/filter"
)

const maxPasswordAttempts = 3

var errPasswordRequired = errors.New("password required")

// passwordFunc asks the user for a password.
type passwordFunc func(prompt string) (string, error)

// openPath navigates and, when the directory turns out to be password
// protected, calls ask for the password until it is accepted. A nil ask
// fails instead.
func openPath(ctx context.Context, nav *navigator.Navigator, p string, opts navigator.NavigateOptions, ask passwordFunc) error {
	nav.Navigate(ctx, p, opts)
	return unlock(ctx, nav, ask)
}

func unlock(ctx context.Context, nav *navigator.Navigator, ask passwordFunc) error {
	for attempt := 0; nav.State() == state.NeedPassword; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ask == nil {
			return fmt.Errorf("%s: %w (use --password)", nav.CurrentPath(), errPasswordRequired)
		}
		if attempt >= maxPasswordAttempts {
			return fmt.Errorf("%s: %w", nav.CurrentPath(), errPasswordRequired)
		}
		if nav.Snapshot().WrongPassword {
			fmt.Fprintln(os.Stderr, "Wrong password.")
		}

		pw, err := ask(fmt.Sprintf("Password for %s: ", nav.CurrentPath()))
		if err != nil {
			return err
		}
		if pw == "" {
			return fmt.Errorf("%s: %w", nav.CurrentPath(), errPasswordRequired)
		}
		nav.SetPassword(pw)
		nav.Refresh(ctx, navigator.RefreshOptions{RetryPassword: true, NoForce: true})
	}
	return ctx.Err()
}

// loadAll appends pages until the directory is complete.
func loadAll(ctx context.Context, nav *navigator.Navigator) error {
	for !nav.AllLoaded() {
		before := nav.Listing().Count()
		nav.LoadMore(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if nav.State() != state.Folder || nav.Listing().Count() == before {
			break
		}
	}
	if banner := nav.Listing().Banner(); banner != "" {
		return errors.New(banner)
	}
	return nil
}

type lsOptions struct {
	page     int
	perPage  int
	all      bool
	password string
	refresh  bool
	long     bool
	sortBy   string
	desc     bool
	include  string
	exclude  string
	search   []string
	dirs     bool
	files    bool
}

func (o lsOptions) filter() filter.Config {
	cfg := filter.Config{
		Include: filter.ParsePatternList(o.include),
		Exclude: filter.ParsePatternList(o.exclude),
		Search:  o.search,
	}
	switch {
	case o.dirs:
		cfg.Kind = filter.DirsOnly
	case o.files:
		cfg.Kind = filter.FilesOnly
	}
	return cfg
}

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	var opts lsOptions

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Long: `List one page of a directory, or every page with --all.

Paths outside your permission roots are resolved into the closest root.
A path that names a file prints the file's details instead.

Examples:
  fsnav ls /
  fsnav ls /team/reports --page 2 --per-page 100
  fsnav ls /team/reports --all -l --include '*.pdf'
  fsnav ls /private --password secret`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := navigator.RootPath
			if len(args) == 1 {
				p = args[0]
			}
			if opts.dirs && opts.files {
				return fmt.Errorf("--dirs and --files are mutually exclusive")
			}
			return runLs(GetContext(), p, opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 0, "Page to show (classic pagination)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 0, "Entries per page")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Fetch every page")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Directory password")
	cmd.Flags().BoolVarP(&opts.refresh, "refresh", "r", false, "Bypass the server's listing cache")
	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "Show size, modification time and storage class")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "Sort by name, size or date (default: server order)")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Reverse the sort order")
	cmd.Flags().StringVar(&opts.include, "include", "", "Comma-separated glob patterns to keep")
	cmd.Flags().StringVar(&opts.exclude, "exclude", "", "Comma-separated glob patterns to drop")
	cmd.Flags().StringSliceVar(&opts.search, "search", nil, "Keep names containing every term")
	cmd.Flags().BoolVar(&opts.dirs, "dirs", false, "Only directories")
	cmd.Flags().BoolVar(&opts.files, "files", false, "Only files")

	return cmd
}

// interactivePassword prompts only when no password was given up front.
func interactivePassword(given string) passwordFunc {
	if given != "" {
		return nil
	}
	return promptPassword
}

func runLs(ctx context.Context, p string, opts lsOptions) error {
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

	if opts.password != "" {
		nav.SetPassword(opts.password)
	}
	err = openPath(ctx, nav, p, navigator.NavigateOptions{
		Page:          opts.page,
		PageSize:      opts.perPage,
		Force:         opts.refresh,
		RetryPassword: opts.password != "",
	}, interactivePassword(opts.password))
	if err != nil {
		return err
	}

	if opts.all && nav.State() == state.Folder {
		if err := loadAll(ctx, nav); err != nil {
			return err
		}
	}
	stop()

	snap := nav.Snapshot()
	if snap.State == state.Initial && snap.Banner != "" {
		return errors.New(snap.Banner)
	}

	var shown []models.Entry
	if opts.sortBy != "" {
		shown = nav.Listing().SortedEntries(opts.sortBy, !opts.desc)
	}
	if f := opts.filter(); !f.IsZero() {
		if shown == nil {
			shown = snap.Entries
		}
		shown = filter.Apply(shown, f)
		if shown == nil {
			shown = []models.Entry{}
		}
	}

	printView(os.Stdout, snap, shown, renderOptions{Long: opts.long})
	return nil
}
