package resource

import (
	"context"

	"github.com/hupe1980/imgsim/blobstore"
)

// LimitedStore wraps a BlobStore so that blob reads wait on the controller's IO limiter.
type LimitedStore struct {
	blobstore.BlobStore
	rc *Controller
}

// NewLimitedStore wraps store. Writes, deletes and listings pass through unchanged.
func NewLimitedStore(store blobstore.BlobStore, rc *Controller) *LimitedStore {
	return &LimitedStore{BlobStore: store, rc: rc}
}

// Open opens a rate limited blob.
func (s *LimitedStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &limitedBlob{Blob: b, rc: s.rc}, nil
}

type limitedBlob struct {
	blobstore.Blob
	rc *Controller
}

func (b *limitedBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n := len(p)
	if remaining := b.Size() - off; remaining < int64(n) {
		n = int(max(remaining, 0))
	}
	if err := b.rc.AcquireIO(ctx, n); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}
