package archive

import (
	"context"

	"twarchive/internal/model"
)

// Outcome reports what an idempotent insert did.
type Outcome int

const (
	// Inserted means a new row was written.
	Inserted Outcome = iota + 1
	// AlreadyExists means the row was present before the call. This is the
	// expected result when two workers race on the same ID, or on a re-run
	// over an existing archive. It is not an error.
	AlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already-exists"
	default:
		return "unknown"
	}
}

// Store provides relational persistence for tweets, users, media metadata
// and their link tables.
//
// Every method may be called concurrently. Existence checks racing inserts
// of the same ID are allowed: the uniqueness constraint on the primary key
// is the single synchronization point, and inserts report the loss of such
// a race as AlreadyExists rather than an error. Any non-nil error from a
// Store method is a fatal store failure (bad connection, disk full, schema
// mismatch) and must stop the walk for the affected account.
type Store interface {
	// TweetExists reports whether a tweet row with the given ID is present.
	TweetExists(ctx context.Context, id int64) (bool, error)

	// UserExists reports whether a user row with the given ID is present.
	UserExists(ctx context.Context, id int64) (bool, error)

	// MediaExists reports whether a media row with the given digest is present.
	MediaExists(ctx context.Context, digest string) (bool, error)

	// InsertTweet writes a tweet row, or reports AlreadyExists if the ID is taken.
	InsertTweet(ctx context.Context, t *model.Tweet) (Outcome, error)

	// InsertUser writes a user row, or reports AlreadyExists if the ID is taken.
	InsertUser(ctx context.Context, u *model.User) (Outcome, error)

	// InsertMedia writes a media row, or reports AlreadyExists if the digest is taken.
	InsertMedia(ctx context.Context, m *model.Media) (Outcome, error)

	// LinkMediaToTweet records that a tweet references a media row.
	// Idempotent: linking the same pair twice is a no-op.
	LinkMediaToTweet(ctx context.Context, digest string, tweetID int64) error

	// LinkMediaToUser records that a user profile references a media row.
	// Idempotent like LinkMediaToTweet.
	LinkMediaToUser(ctx context.Context, digest string, userID int64) error

	// CreateRun records the start of an archiving run.
	CreateRun(ctx context.Context, r *model.Run) error

	// FinishRun stores the final status and counters of a run.
	FinishRun(ctx context.Context, r *model.Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.Run, error)

	// GetMediaBlob returns the embedded blob bytes for a digest, or nil when
	// the row stores no bytes (externally stored media).
	GetMediaBlob(ctx context.Context, digest string) ([]byte, error)

	// Close closes the store.
	Close() error
}
