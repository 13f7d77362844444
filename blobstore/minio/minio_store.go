package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/imgsim/blobstore"
)

const (
	tableContentType   = "application/vnd.imgsim.hash-table"
	pointerContentType = "text/plain; charset=utf-8"
)

// Store is a blobstore.BlobStore over one bucket of a MinIO or other
// S3-compatible server. Blob names are keys below a root prefix.
type Store struct {
	client *minio.Client
	bucket string
	root   string
}

// NewStore returns a Store writing below rootPrefix (e.g. "imgsim/tables").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		root:   strings.Trim(rootPrefix, "/"),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.root, name)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open returns a handle whose reads are ranged GETs against the object.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &objectBlob{obj: obj, size: info.Size}, nil
}

// Put uploads data with an MD5 so the server rejects corrupted uploads.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	contentType := tableContentType
	if name == blobstore.CurrentPointer {
		contentType = pointerContentType
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:    contentType,
		SendContentMd5: true,
	})
	return err
}

// Delete removes a blob. Missing blobs are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names below prefix, relative to the root.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := obj.Key
		if s.root != "" {
			rel, ok := strings.CutPrefix(obj.Key, s.root+"/")
			if !ok {
				continue
			}
			name = rel
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// objectBlob adapts *minio.Object, which already implements io.ReaderAt
// with ranged requests. The object is bound to the context given to Open.
type objectBlob struct {
	obj  *minio.Object
	size int64
}

func (b *objectBlob) Size() int64 { return b.size }

func (b *objectBlob) Close() error { return b.obj.Close() }

func (b *objectBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	return b.obj.ReadAt(p, off)
}
