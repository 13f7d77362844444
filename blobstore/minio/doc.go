// Package minio stores hash table sets in MinIO or any other S3-compatible
// server.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := imgminio.NewStore(client, "tables", "imgsim/")
//	tables := hashing.LoadCurrent(ctx, store)
package minio
