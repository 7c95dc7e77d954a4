package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"twarchive/internal/archive"
	"twarchive/internal/model"
)

// FakeFetcher serves scripted tweets without any external process.
// Populate the maps before use; lookups that miss return archive.ErrNotFound.
// Safe for concurrent use.
type FakeFetcher struct {
	mu            sync.Mutex
	Accounts      map[string][]*model.RawTweet
	Conversations map[int64][]*model.RawTweet
	Tweets        map[int64]*model.RawTweet
	FetchErrs     map[int64]error
	SearchErrs    map[string]error

	// Calls records every lookup in order, e.g. "account:alice", "id:100".
	Calls []string
}

var _ archive.Fetcher = (*FakeFetcher)(nil)

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		Accounts:      map[string][]*model.RawTweet{},
		Conversations: map[int64][]*model.RawTweet{},
		Tweets:        map[int64]*model.RawTweet{},
		FetchErrs:     map[int64]error{},
		SearchErrs:    map[string]error{},
	}
}

func (f *FakeFetcher) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *FakeFetcher) SearchByAccount(ctx context.Context, handle string) (archive.TweetCursor, error) {
	f.record("account:" + handle)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.SearchErrs[handle]; ok {
		return nil, err
	}
	return &sliceCursor{tweets: f.Accounts[handle]}, nil
}

func (f *FakeFetcher) SearchByConversation(ctx context.Context, conversationID int64) (archive.TweetCursor, error) {
	f.record(fmt.Sprintf("conversation:%d", conversationID))
	f.mu.Lock()
	tweets := f.Conversations[conversationID]
	f.mu.Unlock()
	return &sliceCursor{tweets: tweets}, nil
}

func (f *FakeFetcher) FetchByID(ctx context.Context, id int64) (*model.RawTweet, error) {
	f.record(fmt.Sprintf("id:%d", id))
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FetchErrs[id]; ok {
		return nil, err
	}
	if t, ok := f.Tweets[id]; ok {
		return t, nil
	}
	return nil, archive.ErrNotFound
}

// CallCount returns how many times a lookup was recorded.
func (f *FakeFetcher) CallCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// sliceCursor yields a fixed slice of tweets, then io.EOF.
type sliceCursor struct {
	tweets []*model.RawTweet
	pos    int
}

func (c *sliceCursor) Next(ctx context.Context) (*model.RawTweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.pos >= len(c.tweets) {
		return nil, io.EOF
	}
	t := c.tweets[c.pos]
	c.pos++
	return t, nil
}
