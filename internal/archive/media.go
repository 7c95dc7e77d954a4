package archive

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"twarchive/internal/model"
)

// ContentDigest returns the SHA-512 digest of data as lowercase hex. It is
// the storage identity of a media asset.
func ContentDigest(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// Owner identifies the tweet or user a resolved media asset belongs to.
type Owner struct {
	Kind model.Kind // KindTweet or KindUser
	ID   int64
}

// MediaResolver turns media references into persisted, content-addressed
// media rows. It holds no state across calls.
type MediaResolver struct {
	store    Store
	blobs    BlobStore // nil: bytes are embedded in the media row
	dl       Downloader
	tc       Transcoder
	log      Logger
	counters *Counters
}

// NewMediaResolver creates a MediaResolver. blobs may be nil, in which case
// media bytes are stored inside the relational row.
func NewMediaResolver(store Store, blobs BlobStore, dl Downloader, tc Transcoder, log Logger, counters *Counters) *MediaResolver {
	return &MediaResolver{store: store, blobs: blobs, dl: dl, tc: tc, log: log, counters: counters}
}

// Resolve archives one attachment and links it to its owner. It returns the
// media digest, or "" when the asset could not be fetched. Fetch and
// transcode failures are expected (assets expire) and terminal for this
// asset only; the returned error is non-nil solely for fatal store failures.
func (r *MediaResolver) Resolve(ctx context.Context, m *model.RawMedia, owner Owner) (string, error) {
	url := m.BestURL()
	if url == "" {
		return "", nil
	}

	// Thumbnails are resolved first, one level deep: a thumbnail is never
	// assumed to have a thumbnail of its own.
	var thumbID *string
	if m.Kind == model.MediaVideo && m.ThumbnailURL != "" {
		id, err := r.ResolveURL(ctx, m.ThumbnailURL, owner)
		if err != nil {
			return "", err
		}
		if id != "" {
			thumbID = &id
		}
	}

	return r.resolve(ctx, url, owner, m.AltText, m.Duration, m.Views, thumbID)
}

// ResolveURL archives the asset at a direct URL (profile images, banners,
// thumbnails), skipping attachment-kind inspection.
func (r *MediaResolver) ResolveURL(ctx context.Context, url string, owner Owner) (string, error) {
	return r.resolve(ctx, url, owner, nil, nil, nil, nil)
}

func (r *MediaResolver) resolve(ctx context.Context, url string, owner Owner, alt *string, duration *float64, views *int64, thumbID *string) (string, error) {
	var data []byte
	var err error
	if strings.Contains(url, ".m3u8") {
		// Segmented playlist: convert to a single container before hashing,
		// so the digest identifies the stored bytes.
		data, err = r.tc.Transcode(ctx, url)
	} else {
		data, err = r.dl.Download(ctx, url)
	}
	if err != nil {
		r.log.Info("media unavailable", "url", url, "owner", owner.ID, "error", err)
		r.counters.Failed()
		return "", nil
	}

	digest := ContentDigest(data)

	exists, err := r.store.MediaExists(ctx, digest)
	if err != nil {
		return "", fmt.Errorf("checking for existing media: %w", err)
	}
	if exists {
		r.counters.Skipped(model.KindMedia)
	} else {
		rec := &model.Media{
			ID:          digest,
			URL:         url,
			AltText:     alt,
			Duration:    duration,
			Views:       views,
			ThumbnailID: thumbID,
		}
		if r.blobs != nil {
			if err := r.blobs.Put(digest, bytes.NewReader(data), int64(len(data))); err != nil {
				return "", fmt.Errorf("storing media blob: %w", err)
			}
		} else {
			rec.Blob = data
		}
		outcome, err := r.store.InsertMedia(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("inserting media: %w", err)
		}
		if outcome == Inserted {
			r.counters.Archived(model.KindMedia)
		} else {
			r.counters.Skipped(model.KindMedia)
		}
	}

	// The asset may be shared: even when the row existed, the link from
	// this owner can be new.
	switch owner.Kind {
	case model.KindUser:
		err = r.store.LinkMediaToUser(ctx, digest, owner.ID)
	default:
		err = r.store.LinkMediaToTweet(ctx, digest, owner.ID)
	}
	if err != nil {
		return "", fmt.Errorf("linking media: %w", err)
	}

	return digest, nil
}
