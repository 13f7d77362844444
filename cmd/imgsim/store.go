package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/imgsim/blobstore"
	"github.com/hupe1980/imgsim/blobstore/minio"
	"github.com/hupe1980/imgsim/blobstore/s3"
)

// tableStore opens the blob store named by --tables, or nil when unset.
//
//	file:///var/lib/imgsim/tables  (or a bare path)
//	s3://bucket/prefix             (AWS default credential chain)
//	minio://host:9000/bucket/prefix
func (a *app) tableStore(ctx context.Context) (blobstore.BlobStore, error) {
	raw := a.v.GetString("tables")
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		return blobstore.NewLocalStore(raw), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --tables URL: %w", err)
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(u.Host + u.Path), nil

	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		var store blobstore.BlobStore = s3.NewStore(awss3.NewFromConfig(cfg), u.Host, prefix)
		if table := a.v.GetString("ddb-table"); table != "" {
			store = s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), table, raw)
		}
		return store, nil

	case "minio":
		bucket, prefix, _ := strings.Cut(prefix, "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid --tables URL %q: missing bucket", raw)
		}
		client, err := miniogo.New(u.Host, &miniogo.Options{
			Creds:  credentials.NewStaticV4(a.v.GetString("minio-access-key"), a.v.GetString("minio-secret-key"), ""),
			Secure: a.v.GetBool("minio-secure"),
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, bucket, prefix), nil

	default:
		return nil, fmt.Errorf("unsupported table store scheme %q", u.Scheme)
	}
}
