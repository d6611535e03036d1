package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trip_hotels/internal/app"
	"trip_hotels/internal/storage/localfs"
)

func TestImageFetcher_EmptyURLMakesNoRequest(t *testing.T) {
	doer := &countingDoer{}
	f := app.NewImageFetcher(doer, &memImages{}, time.Second)

	if ref := f.Fetch(context.Background(), "", "Anything"); ref != nil {
		t.Fatalf("expected nil, got %q", *ref)
	}
	if doer.calls != 0 {
		t.Fatalf("expected no requests, got %d", doer.calls)
	}
}

func TestImageFetcher_FailuresYieldNil(t *testing.T) {
	doer := &countingDoer{status: map[string]int{
		"https://img.example/500.jpg":  500,
		"https://img.example/down.jpg": 0,
	}}
	imgs := &memImages{}
	f := app.NewImageFetcher(doer, imgs, time.Second)

	for _, u := range []string{"https://img.example/500.jpg", "https://img.example/down.jpg"} {
		if ref := f.Fetch(context.Background(), u, "Broken"); ref != nil {
			t.Fatalf("%s: expected nil, got %q", u, *ref)
		}
	}
	if doer.calls != 2 {
		t.Fatalf("expected exactly one attempt per image, got %d", doer.calls)
	}
	if len(imgs.saved) != 0 {
		t.Fatalf("nothing should be saved, got %v", imgs.saved)
	}
}

func TestImageFetcher_SavesUnderSanitizedTitle(t *testing.T) {
	dir := t.TempDir()
	store, err := localfs.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	f := app.NewImageFetcher(&countingDoer{}, store, time.Second)

	ref := f.Fetch(context.Background(), "https://img.example/a.jpg", "Grand Hyatt-Central")
	if ref == nil {
		t.Fatal("expected an image reference")
	}
	want := filepath.Join(dir, "grand_hyatt_central.jpg")
	if *ref != want {
		t.Fatalf("ref: got %q want %q", *ref, want)
	}
	b, err := os.ReadFile(want)
	if err != nil || string(b) != "jpeg-bytes" {
		t.Fatalf("file: %q %v", b, err)
	}
}

func TestImageFetcher_SaveFailureYieldsNil(t *testing.T) {
	store, _ := localfs.New(t.TempDir())
	f := app.NewImageFetcher(&countingDoer{}, store, time.Second)

	// a slash in the title can't become a file name
	if ref := f.Fetch(context.Background(), "https://img.example/a.jpg", "A/B Hotel"); ref != nil {
		t.Fatalf("expected nil, got %q", *ref)
	}
}
