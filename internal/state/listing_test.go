package state

import (
	"testing"
	"time"

	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
)

func entries(names ...string) []models.Entry {
	out := make([]models.Entry, len(names))
	for i, n := range names {
		out[i] = models.Entry{Name: n}
	}
	return out
}

func TestNewListing(t *testing.T) {
	l := NewListing(events.NewEventBus(100))

	if l.State() != Initial {
		t.Errorf("State() = %v, want %v", l.State(), Initial)
	}
	if l.Path() != "/" {
		t.Errorf("Path() = %q, want %q", l.Path(), "/")
	}
	if l.Count() != 0 {
		t.Error("Initial entries should be empty")
	}
}

func TestListing_SetStatePublishesTransition(t *testing.T) {
	eventBus := events.NewEventBus(100)
	ch := eventBus.Subscribe(EventNavStateChanged)
	l := NewListing(eventBus)

	l.SetState(FetchingObjs)
	l.SetState(FetchingObjs)

	select {
	case ev := <-ch:
		changed := ev.(*NavStateChangedEvent)
		if changed.Old != Initial || changed.New != FetchingObjs {
			t.Errorf("transition = %v -> %v, want initial -> fetching_objs", changed.Old, changed.New)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for state event")
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected second event for same state: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestListing_AppendConcatenatesWithoutDedup(t *testing.T) {
	l := NewListing(nil)

	l.ReplaceEntries(entries("a", "b"), 4, FolderMeta{Provider: "local"})
	l.AppendEntries(entries("b", "c"), 4, FolderMeta{Provider: "local"})

	got := l.Entries()
	if len(got) != 4 {
		t.Fatalf("Count = %d, want 4", len(got))
	}
	want := []string{"a", "b", "b", "c"}
	for i, e := range got {
		if e.Name != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, e.Name, want[i])
		}
	}
	if l.Total() != 4 {
		t.Errorf("Total() = %d, want 4", l.Total())
	}
}

func TestListing_ReplaceClearsSelection(t *testing.T) {
	l := NewListing(nil)
	l.ReplaceEntries(entries("a", "b"), 2, FolderMeta{})

	if !l.Select("a") {
		t.Fatal("Select(a) = false")
	}
	if l.Select("zzz") {
		t.Error("Select of unknown entry should fail")
	}
	if l.SelectedCount() != 1 {
		t.Errorf("SelectedCount() = %d, want 1", l.SelectedCount())
	}

	sel := l.SelectedEntries()
	if len(sel) != 1 || sel[0].Name != "a" || !sel[0].Selected {
		t.Errorf("SelectedEntries() = %+v", sel)
	}

	l.ReplaceEntries(entries("c"), 1, FolderMeta{})
	if l.SelectedCount() != 0 {
		t.Errorf("SelectedCount() after replace = %d, want 0", l.SelectedCount())
	}
}

func TestListing_ToggleSelect(t *testing.T) {
	eventBus := events.NewEventBus(100)
	l := NewListing(eventBus)
	l.ReplaceEntries(entries("a"), 1, FolderMeta{})
	ch := eventBus.Subscribe(EventSelectionChanged)

	if !l.ToggleSelect("a") {
		t.Error("ToggleSelect should select")
	}
	if l.ToggleSelect("a") {
		t.Error("ToggleSelect should deselect")
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		case <-time.After(20 * time.Millisecond):
		}
		break
	}
	if count != 2 {
		t.Errorf("selection events = %d, want 2", count)
	}
}

func TestListing_CaptureRestore(t *testing.T) {
	l := NewListing(nil)
	l.SetPath("/docs")
	l.SetPage(2, 50)
	l.ReplaceEntries(entries("x", "y"), 80, FolderMeta{Readme: "hi", Write: true})
	l.SetScrollOffset(7)

	c := l.Capture()

	l.SetPath("/other")
	l.Clear()
	l.SetScrollOffset(0)

	l.Restore(c)

	v := l.View()
	if v.Path != "/docs" || v.Page != 2 || v.PerPage != 50 {
		t.Errorf("restored path/page = %q/%d/%d", v.Path, v.Page, v.PerPage)
	}
	if len(v.Entries) != 2 || v.Total != 80 {
		t.Errorf("restored entries = %d, total = %d", len(v.Entries), v.Total)
	}
	if v.ScrollOffset != 7 {
		t.Errorf("restored ScrollOffset = %d, want 7", v.ScrollOffset)
	}
	if v.Folder.Readme != "hi" || !v.Folder.Write {
		t.Errorf("restored folder meta = %+v", v.Folder)
	}

	// Mutating the capture must not affect the store.
	c.Entries[0].Name = "mutated"
	if l.Entries()[0].Name != "x" {
		t.Error("Restore should copy entries")
	}
}

func TestListing_SortedEntriesDoesNotReorderStore(t *testing.T) {
	l := NewListing(nil)
	l.ReplaceEntries([]models.Entry{
		{Name: "b.txt", Size: 1},
		{Name: "dir", IsDir: true},
		{Name: "A.txt", Size: 5},
	}, 3, FolderMeta{})

	sorted := l.SortedEntries("name", true)
	if sorted[0].Name != "dir" || sorted[1].Name != "A.txt" || sorted[2].Name != "b.txt" {
		t.Errorf("SortedEntries() = %v", sorted)
	}
	if l.Entries()[0].Name != "b.txt" {
		t.Error("store order changed")
	}

	bySize := l.SortedEntries("size", false)
	if bySize[1].Name != "A.txt" {
		t.Errorf("SortedEntries(size, desc)[1] = %q, want A.txt", bySize[1].Name)
	}
}

func TestListing_SortedEntriesNaturalOrder(t *testing.T) {
	l := NewListing(nil)
	l.ReplaceEntries([]models.Entry{
		{Name: "run10.log"},
		{Name: "Run2.log"},
		{Name: "run1.log"},
	}, 3, FolderMeta{})

	sorted := l.SortedEntries("name", true)
	got := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	want := []string{"run1.log", "Run2.log", "run10.log"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedEntries() = %v, want %v", got, want)
		}
	}
}

func TestListing_BannerPublishesOnChange(t *testing.T) {
	eventBus := events.NewEventBus(100)
	ch := eventBus.Subscribe(EventErrorBanner)
	l := NewListing(eventBus)

	l.SetBanner("storage not found")
	l.SetBanner("storage not found")
	l.SetBanner("")

	var msgs []string
	for {
		select {
		case ev := <-ch:
			msgs = append(msgs, ev.(*ErrorBannerEvent).Message)
			continue
		case <-time.After(20 * time.Millisecond):
		}
		break
	}
	if len(msgs) != 2 || msgs[0] != "storage not found" || msgs[1] != "" {
		t.Errorf("banner events = %q", msgs)
	}
}

func TestNavState_String(t *testing.T) {
	if NeedPassword.String() != "need_password" {
		t.Errorf("NeedPassword.String() = %q", NeedPassword.String())
	}
	if !FetchingMore.IsFetching() || Folder.IsFetching() {
		t.Error("IsFetching mismatch")
	}
}
