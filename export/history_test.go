package export

import (
	"context"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/codesnap/dbopen"
)

func TestHistoryRecordAndRecent(t *testing.T) {
	db := dbopen.OpenMemory(t)
	h, err := NewHistory(db)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	ctx := context.Background()
	entries := []Entry{
		{FileName: "a-codesnap.png", Path: "/tmp/a-codesnap.png", Theme: "dark", Language: "Go", LineCount: 12, CreatedAt: 100},
		{FileName: "b-codesnap.png", Path: "/tmp/b-codesnap.png", Theme: "nord", Language: "Python", LineCount: 3, CreatedAt: 200},
	}
	for _, e := range entries {
		if err := h.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].FileName != "b-codesnap.png" || got[1].FileName != "a-codesnap.png" {
		t.Errorf("wrong order: %q then %q", got[0].FileName, got[1].FileName)
	}
	if !strings.HasPrefix(got[0].ID, "cap_") {
		t.Errorf("ID %q missing cap_ prefix", got[0].ID)
	}
	if got[0].Theme != "nord" || got[0].Language != "Python" || got[0].LineCount != 3 {
		t.Errorf("entry fields not round-tripped: %+v", got[0])
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	db := dbopen.OpenMemory(t)
	h, err := NewHistory(db)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := range 5 {
		if err := h.Record(ctx, Entry{FileName: "f.png", Path: "/tmp/f.png", CreatedAt: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := h.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("Recent(3) returned %d entries", len(got))
	}
}

func TestHistoryRequiresDB(t *testing.T) {
	if _, err := NewHistory(nil); err == nil {
		t.Error("expected error for nil DB")
	}
}
