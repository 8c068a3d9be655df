package app

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
)

func TestNewSnapshotProviderRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewSnapshotProvider(nil, hostPrincipal); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestNewSnapshotProviderRequiresPrincipal(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotProvider(newFakeStore(), Principal{})
	if apperrors.CodeOf(err) != apperrors.CodePrincipalRequired {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodePrincipalRequired)
	}
}

func TestFetchFieldSnapshotStampsMonotonicSeq(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedGathering(store, nil)
	provider, err := NewSnapshotProvider(store, hostPrincipal)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	first, err := provider.FetchFieldSnapshot(context.Background(), "gath-1")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := provider.FetchFieldSnapshot(context.Background(), "gath-1")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if !first.Loaded || !second.Loaded {
		t.Fatal("fetched snapshots must be loaded")
	}
	if second.Seq <= first.Seq {
		t.Fatalf("seq did not advance: first=%d second=%d", first.Seq, second.Seq)
	}
	if first.Fields.Title != "Fireside Chat" {
		t.Fatalf("title = %q, want %q", first.Fields.Title, "Fireside Chat")
	}
}

func TestFetchFieldSnapshotNotFound(t *testing.T) {
	t.Parallel()

	provider, err := NewSnapshotProvider(newFakeStore(), hostPrincipal)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = provider.FetchFieldSnapshot(context.Background(), "missing")
	if apperrors.CodeOf(err) != apperrors.CodeGatheringNotFound {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeGatheringNotFound)
	}
}

func TestFetchFieldSnapshotScopesToOrg(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedGathering(store, nil)
	outsider := Principal{UserID: "host-1", OrgID: "org-other"}
	provider, err := NewSnapshotProvider(store, outsider)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = provider.FetchFieldSnapshot(context.Background(), "gath-1")
	if apperrors.CodeOf(err) != apperrors.CodeGatheringNotFound {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeGatheringNotFound)
	}
}

func TestFetchFieldSnapshotSurfacesStoreError(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.getErr = errors.New("store offline")
	provider, err := NewSnapshotProvider(store, hostPrincipal)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := provider.FetchFieldSnapshot(context.Background(), "gath-1"); err == nil {
		t.Fatal("expected fetch error")
	}
}
