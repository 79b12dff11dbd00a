// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and any other S3-compatible server (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blobs := minioblob.NewStore(client, "embeddings", "lshdb/")
//	db, err := lshdb.New(
//	    lshdb.WithPersistentStorage("index-a", storage.NewBlobStorage(blobs)),
//	)
package minio
