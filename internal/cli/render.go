package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/state"
	"github.com/fsnav/fsnav/internal/util/sanitize"
	"github.com/fsnav/fsnav/internal/util/storageclass"
	strutil "github.com/fsnav/fsnav/internal/util/strings"
)

// renderOptions controls listing output.
type renderOptions struct {
	// Long adds size, modification time and storage class columns.
	Long bool
	// Marks prefixes selected entries with '*'.
	Marks bool
}

// printEntries writes one line per entry.
func printEntries(w io.Writer, entries []models.Entry, opts renderOptions) {
	if !opts.Long {
		for _, e := range entries {
			fmt.Fprintln(w, mark(e, opts)+entryName(e))
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		size := strutil.FormatSize(e.Size)
		if e.IsDir {
			size = "-"
		}
		class := e.StorageClass
		if storageclass.IsArchived(class) {
			class += " (archived)"
		}
		if class == "" {
			class = "-"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", mark(e, opts), entryName(e), size, strutil.FormatTime(e.Modified), class)
	}
	tw.Flush()
}

func mark(e models.Entry, opts renderOptions) string {
	if !opts.Marks {
		return ""
	}
	if e.Selected {
		return "* "
	}
	return "  "
}

func entryName(e models.Entry) string {
	name := sanitize.DisplayName(e.Name)
	if e.IsDir {
		return name + "/"
	}
	return name
}

// printView writes the navigator's current view: the banner, a password
// hint, a file description or the folder listing with its footer. shown
// replaces the folder entries when the caller sorted or filtered them.
func printView(w io.Writer, snap navigator.Snapshot, shown []models.Entry, opts renderOptions) {
	if snap.Banner != "" {
		fmt.Fprintf(w, "! %s\n", snap.Banner)
	}

	switch snap.State {
	case state.NeedPassword:
		if snap.WrongPassword {
			fmt.Fprintf(w, "%s: wrong password\n", snap.Path)
		} else {
			fmt.Fprintf(w, "%s is password protected\n", snap.Path)
		}

	case state.File:
		printFile(w, snap)

	case state.Folder:
		if snap.Folder.Header != "" {
			fmt.Fprintln(w, snap.Folder.Header)
		}
		if shown == nil {
			shown = snap.Entries
		}
		printEntries(w, shown, opts)
		if footer := listingFooter(snap); footer != "" {
			fmt.Fprintln(w, footer)
		}
	}
}

func printFile(w io.Writer, snap navigator.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if snap.Obj != nil {
		fmt.Fprintf(tw, "Name:\t%s\n", sanitize.DisplayName(snap.Obj.Name))
		fmt.Fprintf(tw, "Size:\t%s\n", strutil.FormatSize(snap.Obj.Size))
		fmt.Fprintf(tw, "Modified:\t%s\n", strutil.FormatTime(snap.Obj.Modified))
		if snap.Obj.StorageClass != "" {
			fmt.Fprintf(tw, "Storage class:\t%s\n", snap.Obj.StorageClass)
		}
	}
	fmt.Fprintf(tw, "Path:\t%s\n", snap.Path)
	if snap.File.Provider != "" {
		fmt.Fprintf(tw, "Provider:\t%s\n", snap.File.Provider)
	}
	if snap.File.RawURL != "" {
		fmt.Fprintf(tw, "URL:\t%s\n", snap.File.RawURL)
	}
	tw.Flush()
}

// listingFooter describes how much of the directory is shown and how to
// get the rest, depending on the pagination mode.
func listingFooter(snap navigator.Snapshot) string {
	shown := len(snap.Entries)
	total := int(snap.Total)
	if total < shown {
		total = shown
	}

	switch snap.Pagination.Type {
	case navigator.PaginationClassic:
		perPage := snap.PerPage
		if perPage <= 0 {
			perPage = snap.Pagination.Size
		}
		pages := 1
		if perPage > 0 && total > 0 {
			pages = (total + perPage - 1) / perPage
		}
		return fmt.Sprintf("-- page %d of %d, %s --", max(snap.Page, 1), pages, strutil.Count(total, "item"))
	default:
		if snap.AllLoaded {
			return fmt.Sprintf("-- %s --", strutil.Count(shown, "item"))
		}
		return fmt.Sprintf("-- showing %d of %s, 'more' loads the next page --", shown, strutil.Count(total, "item"))
	}
}
