package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) == 0 || len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	for _, idx := range []string{"idx_replies_created", "idx_replies_contact"} {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying index %s: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %s not found", idx)
		}
	}
}

func TestSaveAndGetReply(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveReply(ctx, Reply{
		Contact:      "Alice",
		Message:      "hello",
		Reply:        "Hi Alice! I'm busy at the moment but will respond soon.",
		Source:       "fallback",
		Relationship: "acquaintance",
		Urgency:      "normal",
		Sentiment:    "neutral",
		QuestionType: "none",
		Error:        "model provider not configured",
	})
	if err != nil {
		t.Fatalf("SaveReply: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("SaveReply did not assign an id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("SaveReply did not set created_at")
	}

	got, err := s.GetReply(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetReply: %v", err)
	}
	if got.Contact != "Alice" || got.Source != "fallback" || got.Error != saved.Error {
		t.Errorf("GetReply = %+v", got)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}
}

func TestGetReply_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetReply(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveReply_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := Reply{ID: "fixed", Contact: "Bob", Message: "m", Reply: "r", Source: "model"}
	if _, err := s.SaveReply(ctx, r); err != nil {
		t.Fatalf("first SaveReply: %v", err)
	}
	if _, err := s.SaveReply(ctx, r); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestRecentReplies(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		contact := "Alice"
		if i%2 == 1 {
			contact = "Bob"
		}
		_, err := s.SaveReply(ctx, Reply{
			ID:        fmt.Sprintf("r%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Contact:   contact,
			Message:   "m",
			Reply:     "r",
			Source:    "model",
		})
		if err != nil {
			t.Fatalf("SaveReply %d: %v", i, err)
		}
	}

	all, err := s.RecentReplies(ctx, 3, "")
	if err != nil {
		t.Fatalf("RecentReplies: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r4" || all[2].ID != "r2" {
		t.Errorf("RecentReplies ids = %v", ids(all))
	}

	bob, err := s.RecentReplies(ctx, 10, "Bob")
	if err != nil {
		t.Fatalf("RecentReplies(Bob): %v", err)
	}
	if len(bob) != 2 || bob[0].ID != "r3" || bob[1].ID != "r1" {
		t.Errorf("RecentReplies(Bob) ids = %v", ids(bob))
	}
}

func TestCountBySource(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, src := range []string{"model", "fallback", "model", "model"} {
		if _, err := s.SaveReply(ctx, Reply{Contact: "c", Message: "m", Reply: "r", Source: src}); err != nil {
			t.Fatalf("SaveReply: %v", err)
		}
	}

	counts, err := s.CountBySource(ctx)
	if err != nil {
		t.Fatalf("CountBySource: %v", err)
	}
	want := []SourceCount{{"model", 3}, {"fallback", 1}}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func ids(rs []Reply) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
