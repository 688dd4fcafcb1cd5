package store

import (
	"context"
	"testing"

	"github.com/vango-dev/fieldset/pkg/form"
)

func testSubmission(formName, id string) Submission {
	sub := NewSubmission(formName, form.Values{"field": id})
	sub.ID = id
	return sub
}

func TestNewSubmission(t *testing.T) {
	a := NewSubmission("signup", form.Values{"email": "a@b.co"})
	b := NewSubmission("signup", form.Values{"email": "a@b.co"})

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected generated IDs")
	}
	if a.ID == b.ID {
		t.Error("expected unique IDs per submission")
	}
	if a.Form != "signup" {
		t.Errorf("Form = %q, want %q", a.Form, "signup")
	}
	if a.ReceivedAt.IsZero() {
		t.Error("expected ReceivedAt to be stamped")
	}
	if a.Values.String("email") != "a@b.co" {
		t.Errorf("Values[email] = %v", a.Values["email"])
	}
}

func TestMemoryStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	for _, id := range []string{"first", "second", "third"} {
		if err := m.Save(ctx, testSubmission("signup", id)); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}

	subs, err := m.List(ctx, "signup", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("len = %d, want 3", len(subs))
	}
	// Newest first.
	if subs[0].ID != "third" || subs[2].ID != "first" {
		t.Errorf("order = %s,%s,%s, want third,second,first", subs[0].ID, subs[1].ID, subs[2].ID)
	}
}

func TestMemoryStore_ListLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	for _, id := range []string{"a", "b", "c"} {
		if err := m.Save(ctx, testSubmission("f", id)); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	subs, err := m.List(ctx, "f", 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
	if subs[0].ID != "c" || subs[1].ID != "b" {
		t.Errorf("order = %s,%s, want c,b", subs[0].ID, subs[1].ID)
	}
}

func TestMemoryStore_CapacityDropsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(WithCapacity(2))
	defer m.Close()

	for _, id := range []string{"a", "b", "c"} {
		if err := m.Save(ctx, testSubmission("f", id)); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	if got := m.Count("f"); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
	subs, err := m.List(ctx, "f", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if subs[0].ID != "c" || subs[1].ID != "b" {
		t.Errorf("retained = %s,%s, want c,b", subs[0].ID, subs[1].ID)
	}
}

func TestMemoryStore_FormsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if err := m.Save(ctx, testSubmission("signup", "s1")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := m.Save(ctx, testSubmission("contact", "c1")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	subs, err := m.List(ctx, "signup", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "s1" {
		t.Errorf("signup list = %+v", subs)
	}

	subs, err = m.List(ctx, "unknown", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("unknown form should list empty, got %d", len(subs))
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	// A second close is a no-op.
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	if err := m.Save(ctx, testSubmission("f", "x")); err != ErrClosed {
		t.Errorf("Save after close = %v, want %v", err, ErrClosed)
	}
	if _, err := m.List(ctx, "f", 0); err != ErrClosed {
		t.Errorf("List after close = %v, want %v", err, ErrClosed)
	}
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(WithCapacity(1000))
	defer m.Close()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				_ = m.Save(ctx, NewSubmission("f", form.Values{"n": i}))
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	if got := m.Count("f"); got != 400 {
		t.Errorf("Count = %d, want 400", got)
	}
}
