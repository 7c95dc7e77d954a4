package fetch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"twarchive/internal/model"
)

// Wire types for the scraper's JSONL output. Every record carries a "_type"
// discriminator; anything that is not a tweet (tombstones, errors) is
// skipped rather than rejected.

type jsonTweet struct {
	Type             string            `json:"_type"`
	ID               int64             `json:"id"`
	Content          string            `json:"content"`
	RawContent       string            `json:"rawContent"` // newer scraper versions renamed "content"
	Date             string            `json:"date"`
	ConversationID   int64             `json:"conversationId"`
	Lang             string            `json:"lang"`
	Coordinates      *jsonCoordinates  `json:"coordinates"`
	Place            *jsonPlace        `json:"place"`
	LikeCount        int64             `json:"likeCount"`
	ReplyCount       int64             `json:"replyCount"`
	RetweetCount     int64             `json:"retweetCount"`
	QuoteCount       int64             `json:"quoteCount"`
	ViewCount        *int64            `json:"viewCount"`
	Hashtags         []string          `json:"hashtags"`
	MentionedUsers   []jsonUser        `json:"mentionedUsers"`
	SourceLabel      string            `json:"sourceLabel"`
	URL              string            `json:"url"`
	User             jsonUser          `json:"user"`
	Media            []json.RawMessage `json:"media"`
	QuotedTweet      json.RawMessage   `json:"quotedTweet"`
	RetweetedTweet   json.RawMessage   `json:"retweetedTweet"`
	InReplyToTweetID *int64            `json:"inReplyToTweetId"`
}

type jsonCoordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type jsonPlace struct {
	FullName    string `json:"fullName"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

type jsonUser struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	DisplayName      string `json:"displayname"`
	Description      string `json:"rawDescription"`
	Verified         bool   `json:"verified"`
	Protected        bool   `json:"protected"`
	Created          string `json:"created"`
	FollowersCount   int64  `json:"followersCount"`
	FriendsCount     int64  `json:"friendsCount"`
	StatusesCount    int64  `json:"statusesCount"`
	FavouritesCount  int64  `json:"favouritesCount"`
	ListedCount      int64  `json:"listedCount"`
	Location         string `json:"location"`
	LinkURL          string `json:"linkUrl"`
	URL              string `json:"url"`
	ProfileImageURL  string `json:"profileImageUrl"`
	ProfileBannerURL string `json:"profileBannerUrl"`
}

type jsonMedia struct {
	Type         string        `json:"_type"`
	FullURL      string        `json:"fullUrl"`
	PreviewURL   string        `json:"previewUrl"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	AltText      *string       `json:"altText"`
	Duration     *float64      `json:"duration"`
	Views        *int64        `json:"views"`
	Variants     []jsonVariant `json:"variants"`
}

type jsonVariant struct {
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
	Bitrate     int64  `json:"bitrate"`
}

// parseTweet decodes one JSONL line. Returns (nil, nil) for records that are
// not tweets, such as tombstones for withheld content.
func parseTweet(line []byte) (*model.RawTweet, error) {
	var probe struct {
		Type string `json:"_type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, fmt.Errorf("decoding scraper record: %w", err)
	}
	if !strings.HasSuffix(probe.Type, ".Tweet") {
		return nil, nil
	}

	var jt jsonTweet
	if err := json.Unmarshal(line, &jt); err != nil {
		return nil, fmt.Errorf("decoding tweet record: %w", err)
	}
	return jt.toModel()
}

func (jt *jsonTweet) toModel() (*model.RawTweet, error) {
	createdAt, err := parseDate(jt.Date)
	if err != nil {
		return nil, fmt.Errorf("tweet %d: %w", jt.ID, err)
	}

	content := jt.RawContent
	if content == "" {
		content = jt.Content
	}

	t := &model.RawTweet{
		ID:             jt.ID,
		Content:        content,
		CreatedAt:      createdAt,
		ConversationID: jt.ConversationID,
		Language:       jt.Lang,
		LikeCount:      jt.LikeCount,
		ReplyCount:     jt.ReplyCount,
		RetweetCount:   jt.RetweetCount,
		QuoteCount:     jt.QuoteCount,
		ViewCount:      jt.ViewCount,
		Hashtags:       jt.Hashtags,
		SourceApp:      jt.SourceLabel,
		URL:            jt.URL,
		User:           jt.User.toModel(),
		RepliedToID:    jt.InReplyToTweetID,
	}

	if jt.Coordinates != nil {
		t.Coordinates = &model.Coordinates{
			Latitude:  jt.Coordinates.Latitude,
			Longitude: jt.Coordinates.Longitude,
		}
	}
	if jt.Place != nil {
		t.Place = &model.Place{
			FullName:    jt.Place.FullName,
			Name:        jt.Place.Name,
			Type:        jt.Place.Type,
			Country:     jt.Place.Country,
			CountryCode: jt.Place.CountryCode,
		}
	}
	for _, u := range jt.MentionedUsers {
		t.MentionedUsers = append(t.MentionedUsers, u.toModel())
	}
	for _, raw := range jt.Media {
		m, err := parseMedia(raw)
		if err != nil {
			return nil, fmt.Errorf("tweet %d: %w", jt.ID, err)
		}
		if m != nil {
			t.Media = append(t.Media, *m)
		}
	}

	quoted, quotedID, err := parseEmbedded(jt.QuotedTweet)
	if err != nil {
		return nil, fmt.Errorf("tweet %d quoted: %w", jt.ID, err)
	}
	t.Quoted, t.QuotedID = quoted, quotedID

	retweeted, retweetedID, err := parseEmbedded(jt.RetweetedTweet)
	if err != nil {
		return nil, fmt.Errorf("tweet %d retweeted: %w", jt.ID, err)
	}
	t.Retweeted, t.RetweetedID = retweeted, retweetedID

	return t, nil
}

// parseEmbedded handles a nested quoted or retweeted record. A full tweet
// yields both the record and its ID; a bare reference (the scraper got only
// the ID) yields just the ID; a tombstone yields neither.
func parseEmbedded(raw json.RawMessage) (*model.RawTweet, *int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil, nil
	}

	embedded, err := parseTweet(raw)
	if err != nil {
		return nil, nil, err
	}
	if embedded != nil {
		id := embedded.ID
		return embedded, &id, nil
	}

	var ref struct {
		Type string `json:"_type"`
		ID   int64  `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, nil, fmt.Errorf("decoding embedded record: %w", err)
	}
	if strings.HasSuffix(ref.Type, ".TweetRef") && ref.ID != 0 {
		id := ref.ID
		return nil, &id, nil
	}
	return nil, nil, nil
}

func parseMedia(raw json.RawMessage) (*model.RawMedia, error) {
	var jm jsonMedia
	if err := json.Unmarshal(raw, &jm); err != nil {
		return nil, fmt.Errorf("decoding media record: %w", err)
	}

	m := &model.RawMedia{
		AltText:      jm.AltText,
		Duration:     jm.Duration,
		Views:        jm.Views,
		ThumbnailURL: jm.ThumbnailURL,
	}
	for _, v := range jm.Variants {
		m.Variants = append(m.Variants, model.MediaVariant{
			URL:         v.URL,
			Bitrate:     v.Bitrate,
			ContentType: v.ContentType,
		})
	}

	switch {
	case strings.HasSuffix(jm.Type, ".Photo"):
		m.Kind = model.MediaPhoto
		m.FullURL = jm.FullURL
	case strings.HasSuffix(jm.Type, ".Video"):
		m.Kind = model.MediaVideo
	case strings.HasSuffix(jm.Type, ".Gif"):
		m.Kind = model.MediaAnimated
	default:
		// Unknown attachment shape, skip rather than fail the tweet.
		return nil, nil
	}
	return m, nil
}

func (ju *jsonUser) toModel() model.RawUser {
	created, _ := parseDate(ju.Created)
	return model.RawUser{
		ID:               ju.ID,
		Username:         ju.Username,
		DisplayName:      ju.DisplayName,
		Description:      ju.Description,
		Verified:         ju.Verified,
		Protected:        ju.Protected,
		CreatedAt:        created,
		FollowersCount:   ju.FollowersCount,
		FriendsCount:     ju.FriendsCount,
		StatusCount:      ju.StatusesCount,
		FavoritesCount:   ju.FavouritesCount,
		ListedCount:      ju.ListedCount,
		Location:         ju.Location,
		LinkedURL:        ju.LinkURL,
		AccountURL:       ju.URL,
		ProfileImageURL:  ju.ProfileImageURL,
		ProfileBannerURL: ju.ProfileBannerURL,
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t.UTC(), nil
}
