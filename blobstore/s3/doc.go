// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "imgsim/tables")
//
//	// Optional: keep the CURRENT pointer in DynamoDB so publishers race safely.
//	commits := s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), "imgsim-tables", "s3://my-bucket/imgsim/tables")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads via the transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
