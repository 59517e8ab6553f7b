package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jackin-rest/jackin/docstore"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens a throwaway docstore in a temp directory and sets up
// the requested collections. The cleanup function removes everything.
func AcquireStore(ctx context.Context, t TestLog, collections ...string) (*docstore.Store, func()) {
	dir, err := os.MkdirTemp("", "jackin-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := docstore.Open(ctx, filepath.Join(dir, "jackin.db"))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range collections {
		if err := store.EnsureCollection(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			t.Log("unable to close store", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
