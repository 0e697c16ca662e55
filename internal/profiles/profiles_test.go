package profiles

import (
	"context"
	"fmt"
	"testing"

	"curator/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st), st
}

func TestList_EmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	profiles, err := svc.List(context.Background(), store.ProfileSourceArticles)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0] != "default" {
		t.Errorf("empty store should still offer the default profile, got %v", profiles)
	}
}

func TestList_DefaultFirstThenSorted(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	for i, profile := range []string{"tech", "brasil", "tech", "default"} {
		if _, _, err := st.AddArticle(ctx, fmt.Sprintf("https://example.com/%d", i), "Article", "", profile); err != nil {
			t.Fatalf("AddArticle failed: %v", err)
		}
	}

	profiles, err := svc.List(ctx, store.ProfileSourceArticles)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"default", "brasil", "tech"}
	if len(profiles) != len(want) {
		t.Fatalf("profiles = %v, want %v", profiles, want)
	}
	for i := range want {
		if profiles[i] != want[i] {
			t.Errorf("profiles[%d] = %q, want %q", i, profiles[i], want[i])
		}
	}
}

func TestList_BriefsSource(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := st.SaveBrief(ctx, "# Brief", nil, "science"); err != nil {
		t.Fatalf("SaveBrief failed: %v", err)
	}

	profiles, err := svc.List(ctx, store.ProfileSourceBriefs)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 2 || profiles[0] != "default" || profiles[1] != "science" {
		t.Errorf("profiles = %v", profiles)
	}
}
