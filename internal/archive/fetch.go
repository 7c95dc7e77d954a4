package archive

import (
	"context"
	"errors"

	"twarchive/internal/model"
)

// ErrNotFound is returned by Fetcher.FetchByID when the item has been
// deleted or is otherwise unavailable upstream. The ref is terminal: the
// walk logs it and moves on.
var ErrNotFound = errors.New("item not found upstream")

// TweetCursor is a lazy, finite sequence of raw tweets. Next returns io.EOF
// when the sequence is exhausted. Cursors are not restartable: a fresh
// search starts the sequence from the beginning.
type TweetCursor interface {
	Next(ctx context.Context) (*model.RawTweet, error)
}

// Fetcher is the lookup collaborator: the external scraping backend that
// turns queries and IDs into raw records. The core never implements it, it
// only consumes this contract.
type Fetcher interface {
	// SearchByAccount yields every tweet posted by the handle, native
	// retweets included. Ordering is source-defined and not relied upon.
	SearchByAccount(ctx context.Context, handle string) (TweetCursor, error)

	// FetchByID retrieves one tweet. Returns ErrNotFound when the tweet is
	// deleted or unavailable; no retry is implied.
	FetchByID(ctx context.Context, id int64) (*model.RawTweet, error)

	// SearchByConversation yields the tweets of a conversation thread.
	SearchByConversation(ctx context.Context, conversationID int64) (TweetCursor, error)
}

// Downloader fetches raw media bytes from a URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Transcoder converts a segmented-streaming playlist into a single-file
// container and returns its bytes. It is an external filter (ffmpeg); any
// temporary files it creates are its own to clean up.
type Transcoder interface {
	Transcode(ctx context.Context, url string) ([]byte, error)
}
