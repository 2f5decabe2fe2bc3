package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/services"
	"github.com/fsnav/fsnav/internal/state"
)

func TestListingFooter(t *testing.T) {
	tests := []struct {
		name string
		snap navigator.Snapshot
		want string
	}{
		{
			name: "classic",
			snap: navigator.Snapshot{
				View:       state.View{Entries: make([]models.Entry, 50), Total: 120, Page: 2, PerPage: 50},
				Pagination: navigator.PaginationConfig{Type: navigator.PaginationClassic, Size: 50},
			},
			want: "-- page 2 of 3, 120 items --",
		},
		{
			name: "classic empty",
			snap: navigator.Snapshot{
				Pagination: navigator.PaginationConfig{Type: navigator.PaginationClassic, Size: 50},
			},
			want: "-- page 1 of 1, 0 items --",
		},
		{
			name: "load more partial",
			snap: navigator.Snapshot{
				View:       state.View{Entries: make([]models.Entry, 2), Total: 5},
				Pagination: navigator.PaginationConfig{Type: navigator.PaginationLoadMore, Size: 2},
			},
			want: "-- showing 2 of 5 items, 'more' loads the next page --",
		},
		{
			name: "auto complete",
			snap: navigator.Snapshot{
				View:       state.View{Entries: make([]models.Entry, 1), Total: 1},
				AllLoaded:  true,
				Pagination: navigator.PaginationConfig{Type: navigator.PaginationAuto, Size: 2},
			},
			want: "-- 1 item --",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listingFooter(tt.snap))
		})
	}
}

func TestPrintEntries_Long(t *testing.T) {
	var buf bytes.Buffer
	printEntries(&buf, []models.Entry{
		{Name: "logs", IsDir: true},
		{Name: "old.tar", Size: 2048, StorageClass: "GLACIER", Selected: true},
		{Name: "new.txt", Size: 10},
	}, renderOptions{Long: true, Marks: true})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "  logs/"))
	assert.Contains(t, lines[1], "* old.tar")
	assert.Contains(t, lines[1], "2.0 KiB")
	assert.Contains(t, lines[1], "GLACIER (archived)")
	assert.Contains(t, lines[2], "10 B")
}

func TestPrintEntries_EscapesControlCharacters(t *testing.T) {
	var buf bytes.Buffer
	printEntries(&buf, []models.Entry{{Name: "evil\x1b[2Jname"}}, renderOptions{})
	assert.NotContains(t, buf.String(), "\x1b")
}

func TestPrintView_NeedPassword(t *testing.T) {
	var buf bytes.Buffer
	printView(&buf, navigator.Snapshot{View: state.View{State: state.NeedPassword, Path: "/private"}}, nil, renderOptions{})
	assert.Equal(t, "/private is password protected\n", buf.String())

	buf.Reset()
	printView(&buf, navigator.Snapshot{View: state.View{State: state.NeedPassword, Path: "/private", WrongPassword: true}}, nil, renderOptions{})
	assert.Equal(t, "/private: wrong password\n", buf.String())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &services.TransitionReport{
		Action:     models.TransitionArchive,
		Submitted:  []string{"/s3/a", "/s3/b"},
		TaskIDs:    []string{"t1"},
		Skipped:    []string{"dir"},
		FailedPath: "/s3/c",
	})

	out := buf.String()
	assert.Contains(t, out, "archive submitted for 2 files:")
	assert.Contains(t, out, "  /s3/a\n")
	assert.Contains(t, out, "Tasks: t1")
	assert.Contains(t, out, "Skipped (directory or no storage class): dir")
	assert.Contains(t, out, "Stopped at /s3/c")
}

func TestPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	printTasks(&buf, nil)
	assert.Equal(t, "No tasks.\n", buf.String())

	buf.Reset()
	printTasks(&buf, []services.TaskSummary{
		{ID: "t1", Name: "archive /s3/a", State: models.TaskRunning, Progress: 42, Status: "copying",
			Started: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)},
		{ID: "t2", Name: "restore /s3/b", State: models.TaskFailed, Error: "access denied"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PROGRESS")
	assert.Contains(t, lines[1], "running")
	assert.Contains(t, lines[1], "42%")
	assert.Contains(t, lines[1], "2026-03-01 12:00")
	assert.Contains(t, lines[2], "access denied")
	assert.NotContains(t, lines[2], "copying")
}
