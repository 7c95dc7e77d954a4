package model

import "time"

// MediaKind classifies an attachment once, at the collaborator boundary.
// Downstream code switches on the kind instead of inspecting payload shapes.
type MediaKind int

const (
	MediaPhoto MediaKind = iota + 1
	MediaVideo
	MediaAnimated // Animated image ("gif"), delivered as a looping video
)

func (k MediaKind) String() string {
	switch k {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAnimated:
		return "animated"
	default:
		return "unknown"
	}
}

// MediaVariant is one encoding of a video or animated attachment. The source
// lists its own variants best-quality first, so position 0 is the one worth
// keeping.
type MediaVariant struct {
	URL         string
	Bitrate     int64
	ContentType string
}

// RawMedia is an attachment as delivered by the lookup collaborator.
type RawMedia struct {
	Kind         MediaKind
	FullURL      string         // Photo URL; unused for video/animated
	Variants     []MediaVariant // Video/animated encodings, best first
	AltText      *string
	Duration     *float64
	Views        *int64
	ThumbnailURL string
}

// BestURL returns the URL of the variant worth archiving, or "" when the
// attachment carries no usable location.
func (m *RawMedia) BestURL() string {
	switch m.Kind {
	case MediaPhoto:
		return m.FullURL
	case MediaVideo, MediaAnimated:
		if len(m.Variants) > 0 {
			return m.Variants[0].URL
		}
	}
	return ""
}

// RawUser is an account profile as delivered by the lookup collaborator.
type RawUser struct {
	ID               int64
	Username         string
	DisplayName      string
	Description      string
	Verified         bool
	Protected        bool
	CreatedAt        time.Time
	FollowersCount   int64
	FriendsCount     int64
	StatusCount      int64
	FavoritesCount   int64
	ListedCount      int64
	Location         string
	LinkedURL        string
	AccountURL       string
	ProfileImageURL  string
	ProfileBannerURL string
}

// Coordinates is an optional geotag on a raw tweet.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// RawTweet is a tweet as delivered by the lookup collaborator.
//
// Quoted and Retweeted carry the full downstream record when the source
// embedded one; the matching *ID field is set either way. Replies only ever
// carry RepliedToID, so resolving one always needs a separate fetch.
type RawTweet struct {
	ID             int64
	Content        string
	CreatedAt      time.Time
	ConversationID int64
	Language       string
	Coordinates    *Coordinates
	LikeCount      int64
	ReplyCount     int64
	RetweetCount   int64
	QuoteCount     int64
	ViewCount      *int64
	Hashtags       []string
	MentionedUsers []RawUser
	Place          *Place
	SourceApp      string
	URL            string
	User           RawUser
	Media          []RawMedia
	Quoted         *RawTweet
	QuotedID       *int64
	Retweeted      *RawTweet
	RetweetedID    *int64
	RepliedToID    *int64
}
