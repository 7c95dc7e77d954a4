package model

// Kind identifies which entity table an ID belongs to.
type Kind int

const (
	KindTweet Kind = iota + 1
	KindUser
	KindMedia
)

func (k Kind) String() string {
	switch k {
	case KindTweet:
		return "tweet"
	case KindUser:
		return "user"
	case KindMedia:
		return "media"
	default:
		return "unknown"
	}
}

// PendingRef is an entity awaiting resolution on a walk frontier.
//
// Raw is set when the full record is already in hand (seed tweets, embedded
// quotes and retweets, conversation siblings); a nil Raw means the record
// must be fetched by ID first. Seed marks tweets that came straight from the
// account search: only those have their conversation thread expanded.
type PendingRef struct {
	Kind Kind
	ID   int64
	Raw  *RawTweet
	Seed bool
}
