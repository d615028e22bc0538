package catalog

import (
	"testing"

	"CrateFM/model"
)

func TestIngestIdenticalCandidateIsStable(t *testing.T) {
	store := NewStore()

	record := model.AlbumRecord{ID: 7, Title: "Maggot Brain", Artist: "Funkadelic", Year: 1971}
	first := store.Ingest(&record)
	if !first.Added {
		t.Fatalf("first ingest = %+v, want added", first)
	}

	// Re-ingesting the identical candidate is always a duplicate and
	// never grows the working set.
	for i := 0; i < 3; i++ {
		again := store.Ingest(&record)
		if !again.Duplicate || again.Replaced {
			t.Fatalf("re-ingest #%d = %+v, want duplicate only", i+1, again)
		}
		if store.Len() != 1 {
			t.Fatalf("re-ingest #%d: working set length = %d, want 1", i+1, store.Len())
		}
	}
}

func TestAppendUniqueSkipsExistingIDs(t *testing.T) {
	store := NewStore()
	store.Replace([]model.AlbumRecord{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
	})

	added := store.AppendUnique([]model.AlbumRecord{
		{ID: 2, Title: "Two again"},
		{ID: 3, Title: "Three"},
		{ID: 3, Title: "Three again"},
	})

	if added != 1 {
		t.Fatalf("AppendUnique added %d, want 1", added)
	}
	if store.Len() != 3 {
		t.Fatalf("working set length = %d, want 3", store.Len())
	}
}

func TestFingerprintTracksEndpoints(t *testing.T) {
	store := NewStore()
	if fp := store.Fingerprint(); fp != (Fingerprint{}) {
		t.Fatalf("empty store fingerprint = %+v, want zero", fp)
	}

	store.Replace([]model.AlbumRecord{{ID: 5}, {ID: 9}, {ID: 12}})
	fp := store.Fingerprint()
	want := Fingerprint{Count: 3, FirstID: 5, LastID: 12}
	if fp != want {
		t.Fatalf("fingerprint = %+v, want %+v", fp, want)
	}

	store.AppendUnique([]model.AlbumRecord{{ID: 20}})
	if got := store.Fingerprint(); got == fp {
		t.Fatal("fingerprint unchanged after append")
	}
}

func TestWorkingSetIsACopy(t *testing.T) {
	store := NewStore()
	store.Replace([]model.AlbumRecord{{ID: 1, Title: "Original"}})

	out := store.WorkingSet()
	out[0].Title = "Mutated"

	if store.WorkingSet()[0].Title != "Original" {
		t.Fatal("external mutation leaked into the store")
	}
}
