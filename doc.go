// Package lshdb provides a minimal in-memory vector index for Go.
//
// lshdb stores fixed-dimension embeddings paired with text and answers
// approximate nearest-neighbor queries with random-hyperplane
// locality-sensitive hashing (LSH). Every embedding is hashed into a binary
// signature; a query only scores the entries that share its signature, so
// it never compares against the whole collection.
//
// # Quick Start
//
//	ctx := context.Background()
//	db, err := lshdb.New(
//	    lshdb.WithDimension(384),
//	    lshdb.WithMaxSize(100_000),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Stop(ctx)
//
//	pos, err := db.Insert(ctx, "hello world", embedding)
//
//	res, err := db.Query(ctx, query, lshdb.DefaultTopN, 0.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer res.Release()
//	for _, r := range res.Results {
//	    fmt.Println(r.Position, r.Score, r.Entry.Text)
//	}
//
// # Hash Parameters
//
// The number of signature bits defaults to floor(ln(MaxSize)). Fewer bits
// mean larger buckets: better recall, more candidates to score. The random
// projections are drawn once from a generator seeded with WithSeed, so two
// indexes with the same parameters and seed hash identically.
//
// # Persistence
//
// The index never performs I/O. In persistent mode every growth of the
// entry store is delegated to a storage.Storage collaborator:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("lshdb/"))
//	db, _ := lshdb.New(
//	    lshdb.WithPersistentStorage("index-a", storage.NewBlobStorage(store)),
//	)
//	_ = db.Start(ctx)
//
// Without a collaborator, persistent growth fails with ErrCapacity.
//
// # Concurrency
//
// A DB is not safe for concurrent use. Callers serialize access.
package lshdb
