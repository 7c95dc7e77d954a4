package model

import "time"

// Tweet is an archived tweet row. Rows are append-only: once inserted they
// are never updated or deleted. The self-referencing IDs may point at tweets
// that have not been archived yet; they are resolved by later walk steps.
type Tweet struct {
	ID             int64 // Platform-assigned, globally unique
	Content        string
	CreatedAt      time.Time // Normalized to UTC
	ConversationID int64
	Language       string
	Latitude       *float64
	Longitude      *float64
	LikeCount      int64
	ReplyCount     int64
	RetweetCount   int64
	QuoteCount     int64
	ViewCount      *int64
	Hashtags       string // Comma-joined, empty when none
	MentionedUsers string // Comma-joined usernames, empty when none
	Place          *Place
	QuotedID       *int64
	RetweetedID    *int64
	RepliedToID    *int64
	SourceApp      string
	URL            string
	UserID         int64
	Username       string
}

// Place is the optional location descriptor attached to a tweet.
type Place struct {
	FullName    string
	Name        string
	Type        string
	Country     string
	CountryCode string
}

// User is an archived account profile. Append-only like Tweet.
type User struct {
	ID             int64
	Username       string
	DisplayName    string
	Description    string
	Verified       bool
	Protected      bool
	CreatedAt      time.Time
	FollowersCount int64
	FriendsCount   int64
	StatusCount    int64
	FavoritesCount int64
	ListedCount    int64
	Location       string
	LinkedURL      string
	AccountURL     string
}

// Media is an archived asset. The ID is the SHA-512 digest of the asset's
// bytes (not a UUID and not the source URL): the same asset can be reachable
// through several URLs, and a URL can later serve different bytes, so
// identity has to track content.
type Media struct {
	ID          string // SHA-512 digest, lowercase hex
	Blob        []byte // nil when the bytes live in an external blob store
	AltText     *string
	Duration    *float64 // Seconds, video only
	URL         string   // Source URL the bytes were fetched from
	Views       *int64
	ThumbnailID *string
}

// Run records one archiving invocation, with the final outcome counters.
type Run struct {
	ID         string // UUID
	Accounts   string // Comma-joined handles
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "running", "success" or "error"
	Archived   int64
	Skipped    int64
	Missing    int64
	Failed     int64
}
