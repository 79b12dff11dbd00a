// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("lshdb/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	db, err := lshdb.New(
//	    lshdb.WithPersistentStorage("index-a", storage.NewBlobStorage(store)),
//	)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the SDK upload manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
