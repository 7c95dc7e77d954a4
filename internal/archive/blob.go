package archive

import "io"

// BlobStore provides content-addressed persistence for media bytes stored
// outside the relational database. Operations stream through io.Reader and
// io.Writer so large assets never need to fit in memory twice.
type BlobStore interface {
	// Put stores content under its digest. Idempotent: storing the same
	// digest again is safe and keeps the first copy. size is the number of
	// bytes that will be read from r.
	Put(digest string, r io.Reader, size int64) error

	// Get retrieves content by digest and writes it to w.
	Get(digest string, w io.Writer) error

	// Exists reports whether content with the given digest is stored.
	Exists(digest string) (bool, error)
}
