package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"twarchive/internal/model"
)

// EntityResolver normalizes raw records into persisted rows and reports the
// related entities that still need resolution. It holds no state across
// calls; all state lives in the Store.
type EntityResolver struct {
	store    Store
	media    *MediaResolver
	fetcher  Fetcher // conversation-thread search only
	log      Logger
	counters *Counters
}

func NewEntityResolver(store Store, media *MediaResolver, fetcher Fetcher, log Logger, counters *Counters) *EntityResolver {
	return &EntityResolver{store: store, media: media, fetcher: fetcher, log: log, counters: counters}
}

// ResolveTweet archives one raw tweet: owner and mentioned users, attached
// media, then the tweet row itself, in that order, so the row never lands
// before its side effects. It returns a PendingRef for every linked tweet
// (quote, retweet, reply, conversation sibling) that is not yet archived.
//
// seed marks tweets that came straight from the account search; only those
// have their conversation thread expanded, so the closure stays anchored to
// the account's own threads instead of spidering across unrelated ones.
func (r *EntityResolver) ResolveTweet(ctx context.Context, raw *model.RawTweet, seed bool) ([]model.PendingRef, error) {
	// Owner first: the tweet row references the user row.
	exists, err := r.store.UserExists(ctx, raw.User.ID)
	if err != nil {
		return nil, fmt.Errorf("checking tweet author: %w", err)
	}
	if !exists {
		if err := r.ResolveUser(ctx, &raw.User); err != nil {
			return nil, err
		}
	}

	owner := Owner{Kind: model.KindTweet, ID: raw.ID}
	for i := range raw.Media {
		if _, err := r.media.Resolve(ctx, &raw.Media[i], owner); err != nil {
			return nil, err
		}
	}

	// Mentioned users are resolved eagerly: their records are already
	// embedded in the raw tweet, no extra fetch is needed.
	mentioned := make([]string, 0, len(raw.MentionedUsers))
	for i := range raw.MentionedUsers {
		u := &raw.MentionedUsers[i]
		mentioned = append(mentioned, u.Username)
		if err := r.ResolveUser(ctx, u); err != nil {
			return nil, err
		}
	}

	var refs []model.PendingRef
	enqueued := map[int64]bool{raw.ID: true}

	quotedID, err := r.neighbor(ctx, raw, "quoted", raw.QuotedID, raw.Quoted, &refs, enqueued)
	if err != nil {
		return nil, err
	}
	retweetedID, err := r.neighbor(ctx, raw, "retweeted", raw.RetweetedID, raw.Retweeted, &refs, enqueued)
	if err != nil {
		return nil, err
	}
	repliedToID, err := r.neighbor(ctx, raw, "replied_to", raw.RepliedToID, nil, &refs, enqueued)
	if err != nil {
		return nil, err
	}

	if seed && raw.ConversationID != 0 {
		if err := r.conversationSiblings(ctx, raw, &refs, enqueued); err != nil {
			return nil, err
		}
	}

	row := tweetRow(raw)
	row.MentionedUsers = strings.Join(mentioned, ", ")
	row.QuotedID = quotedID
	row.RetweetedID = retweetedID
	row.RepliedToID = repliedToID

	outcome, err := r.store.InsertTweet(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("inserting tweet %d: %w", raw.ID, err)
	}
	if outcome == Inserted {
		r.counters.Archived(model.KindTweet)
	} else {
		// Lost a race against a concurrent worker. The side effects above
		// (user rows, media links) are all idempotent, nothing to roll back.
		r.counters.Skipped(model.KindTweet)
	}

	return refs, nil
}

// neighbor validates one self-referencing link and enqueues it when the
// target is not archived yet. It returns the ID to persist in the column,
// or nil when the link is absent or anomalous.
func (r *EntityResolver) neighbor(ctx context.Context, raw *model.RawTweet, rel string, id *int64, embedded *model.RawTweet, refs *[]model.PendingRef, enqueued map[int64]bool) (*int64, error) {
	if id == nil && embedded != nil {
		id = &embedded.ID
	}
	if id == nil {
		return nil, nil
	}
	if *id == raw.ID {
		// A tweet cannot quote, retweet or reply to itself; upstream data
		// anomaly, drop the link.
		r.log.Warn("discarding self-reference", "tweet", raw.ID, "relation", rel)
		return nil, nil
	}
	if enqueued[*id] {
		return id, nil
	}
	exists, err := r.store.TweetExists(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("checking %s tweet: %w", rel, err)
	}
	if !exists {
		enqueued[*id] = true
		*refs = append(*refs, model.PendingRef{Kind: model.KindTweet, ID: *id, Raw: embedded})
	}
	return id, nil
}

// conversationSiblings enqueues every tweet of the seed's conversation
// thread, capturing sibling replies not reachable by following only
// quote/retweet/reply edges. Search failure is terminal for the expansion
// only; the seed itself is still persisted.
func (r *EntityResolver) conversationSiblings(ctx context.Context, raw *model.RawTweet, refs *[]model.PendingRef, enqueued map[int64]bool) error {
	cursor, err := r.fetcher.SearchByConversation(ctx, raw.ConversationID)
	if err != nil {
		r.log.Info("conversation search failed", "conversation", raw.ConversationID, "error", err)
		r.counters.Failed()
		return nil
	}
	for {
		sibling, err := cursor.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			r.log.Info("conversation search interrupted", "conversation", raw.ConversationID, "error", err)
			r.counters.Failed()
			return nil
		}
		if enqueued[sibling.ID] {
			continue
		}
		exists, err := r.store.TweetExists(ctx, sibling.ID)
		if err != nil {
			return fmt.Errorf("checking conversation sibling: %w", err)
		}
		if !exists {
			enqueued[sibling.ID] = true
			*refs = append(*refs, model.PendingRef{Kind: model.KindTweet, ID: sibling.ID, Raw: sibling})
		}
	}
}

// ResolveUser archives one raw user: profile image and banner first (each
// resolved independently), then the user row.
func (r *EntityResolver) ResolveUser(ctx context.Context, raw *model.RawUser) error {
	exists, err := r.store.UserExists(ctx, raw.ID)
	if err != nil {
		return fmt.Errorf("checking user %d: %w", raw.ID, err)
	}
	if exists {
		r.counters.Skipped(model.KindUser)
		return nil
	}

	owner := Owner{Kind: model.KindUser, ID: raw.ID}
	if raw.ProfileImageURL != "" {
		if _, err := r.media.ResolveURL(ctx, raw.ProfileImageURL, owner); err != nil {
			return err
		}
	}
	if raw.ProfileBannerURL != "" {
		if _, err := r.media.ResolveURL(ctx, raw.ProfileBannerURL, owner); err != nil {
			return err
		}
	}

	outcome, err := r.store.InsertUser(ctx, userRow(raw))
	if err != nil {
		return fmt.Errorf("inserting user %d: %w", raw.ID, err)
	}
	if outcome == Inserted {
		r.counters.Archived(model.KindUser)
	} else {
		r.counters.Skipped(model.KindUser)
	}
	return nil
}

// tweetRow normalizes a raw tweet into its persisted shape. Timestamps are
// converted to UTC; the geotag is flattened; the place descriptor is copied
// so the row does not alias collaborator-owned memory.
func tweetRow(raw *model.RawTweet) *model.Tweet {
	row := &model.Tweet{
		ID:             raw.ID,
		Content:        raw.Content,
		CreatedAt:      raw.CreatedAt.UTC(),
		ConversationID: raw.ConversationID,
		Language:       raw.Language,
		LikeCount:      raw.LikeCount,
		ReplyCount:     raw.ReplyCount,
		RetweetCount:   raw.RetweetCount,
		QuoteCount:     raw.QuoteCount,
		ViewCount:      raw.ViewCount,
		Hashtags:       strings.Join(raw.Hashtags, ", "),
		SourceApp:      raw.SourceApp,
		URL:            raw.URL,
		UserID:         raw.User.ID,
		Username:       raw.User.Username,
	}
	if raw.Coordinates != nil {
		lat, lon := raw.Coordinates.Latitude, raw.Coordinates.Longitude
		row.Latitude, row.Longitude = &lat, &lon
	}
	if raw.Place != nil {
		place := *raw.Place
		row.Place = &place
	}
	return row
}

func userRow(raw *model.RawUser) *model.User {
	return &model.User{
		ID:             raw.ID,
		Username:       raw.Username,
		DisplayName:    raw.DisplayName,
		Description:    raw.Description,
		Verified:       raw.Verified,
		Protected:      raw.Protected,
		CreatedAt:      raw.CreatedAt.UTC(),
		FollowersCount: raw.FollowersCount,
		FriendsCount:   raw.FriendsCount,
		StatusCount:    raw.StatusCount,
		FavoritesCount: raw.FavoritesCount,
		ListedCount:    raw.ListedCount,
		Location:       raw.Location,
		LinkedURL:      raw.LinkedURL,
		AccountURL:     raw.AccountURL,
	}
}
