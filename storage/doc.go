// Package storage defines the persistence collaborator of an lshdb index and
// ships a blob-backed implementation.
//
// The index never performs I/O itself. In persistent mode every growth of
// the entry store is delegated to a Storage, which may persist the entries
// accumulated so far and decides how much capacity to grant. A Storage that
// returns an error denies the growth and the insertion that triggered it
// fails with no state change.
//
// BlobStorage spills the entries of each growth step as one immutable
// segment blob:
//
//	<folder>/segment-000001.seg
//	<folder>/segment-000002.seg
//	...
//
// A segment is a small header naming the codec, followed by a compressed
// block holding the encoded entries. Load reads every segment of a folder
// back in position order.
package storage
