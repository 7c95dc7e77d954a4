package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"twarchive/internal/archive"
	"twarchive/internal/database/migrations"
	"twarchive/internal/model"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// This is exported for tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection: a second pool connection
	// would see a separate, empty database. Pin the pool to one connection
	// so every worker shares the same store.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Several workers write concurrently; WAL lets readers proceed during
	// writes and busy_timeout makes writers wait for the lock instead of
	// failing immediately with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// foreign_keys stays OFF: link rows and graph edges (quoted_id,
	// thumbnail_id, media_tweets) are written before their target rows
	// exist, and the targets may legitimately never arrive when an item
	// is gone upstream.

	return db, nil
}

// isUniqueViolation reports whether err is a primary key or unique
// constraint failure. These are the expected result of two workers racing
// on the same ID, or of a re-run over an existing archive.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique)
	}
	return false
}

// Existence checks

func (s *SQLiteStore) TweetExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM tweets WHERE id = ?", id)
}

func (s *SQLiteStore) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) MediaExists(ctx context.Context, digest string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM media WHERE id = ?", digest)
}

func (s *SQLiteStore) exists(ctx context.Context, query string, id any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return true, nil
}

// Inserts

func (s *SQLiteStore) InsertTweet(ctx context.Context, t *model.Tweet) (archive.Outcome, error) {
	var place model.Place
	if t.Place != nil {
		place = *t.Place
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tweets (
			id, content, created_at, conversation_id, language,
			latitude, longitude,
			like_count, reply_count, retweet_count, quote_count, view_count,
			hashtags, mentioned_users,
			place_full_name, place_name, place_type, place_country, place_country_code,
			source_app, url,
			quoted_id, retweeted_id, replied_to_id,
			user_id, username
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, nullString(t.Content), t.CreatedAt.UTC(), t.ConversationID, nullString(t.Language),
		nullFloat(t.Latitude), nullFloat(t.Longitude),
		t.LikeCount, t.ReplyCount, t.RetweetCount, t.QuoteCount, nullInt(t.ViewCount),
		nullString(t.Hashtags), nullString(t.MentionedUsers),
		nullString(place.FullName), nullString(place.Name), nullString(place.Type),
		nullString(place.Country), nullString(place.CountryCode),
		nullString(t.SourceApp), nullString(t.URL),
		nullInt(t.QuotedID), nullInt(t.RetweetedID), nullInt(t.RepliedToID),
		t.UserID, nullString(t.Username),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return archive.AlreadyExists, nil
		}
		return 0, fmt.Errorf("inserting tweet %d: %w", t.ID, err)
	}
	return archive.Inserted, nil
}

func (s *SQLiteStore) InsertUser(ctx context.Context, u *model.User) (archive.Outcome, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, display_name, description, verified, protected, created_at,
			followers_count, friends_count, status_count, favorites_count, listed_count,
			location, linked_url, account_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, nullString(u.DisplayName), nullString(u.Description),
		u.Verified, u.Protected, nullTime(u.CreatedAt),
		u.FollowersCount, u.FriendsCount, u.StatusCount, u.FavoritesCount, u.ListedCount,
		nullString(u.Location), nullString(u.LinkedURL), nullString(u.AccountURL),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return archive.AlreadyExists, nil
		}
		return 0, fmt.Errorf("inserting user %d: %w", u.ID, err)
	}
	return archive.Inserted, nil
}

func (s *SQLiteStore) InsertMedia(ctx context.Context, m *model.Media) (archive.Outcome, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, content_blob, alt_text, duration, url, views, thumbnail_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Blob, nullStringPtr(m.AltText), nullFloat(m.Duration),
		nullString(m.URL), nullInt(m.Views), nullStringPtr(m.ThumbnailID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return archive.AlreadyExists, nil
		}
		return 0, fmt.Errorf("inserting media %s: %w", m.ID, err)
	}
	return archive.Inserted, nil
}

// Link tables

func (s *SQLiteStore) LinkMediaToTweet(ctx context.Context, digest string, tweetID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO media_tweets (media_id, tweet_id) VALUES (?, ?)",
		digest, tweetID,
	)
	if err != nil {
		return fmt.Errorf("linking media %s to tweet %d: %w", digest, tweetID, err)
	}
	return nil
}

func (s *SQLiteStore) LinkMediaToUser(ctx context.Context, digest string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO media_users (media_id, user_id) VALUES (?, ?)",
		digest, userID,
	)
	if err != nil {
		return fmt.Errorf("linking media %s to user %d: %w", digest, userID, err)
	}
	return nil
}

// Run tracking

func (s *SQLiteStore) CreateRun(ctx context.Context, r *model.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, accounts, started_at, status, archived, skipped, missing, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Accounts, r.StartedAt.UTC(), r.Status,
		r.Archived, r.Skipped, r.Missing, r.Failed,
	)
	if err != nil {
		return fmt.Errorf("creating run %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, r *model.Run) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, status = ?, archived = ?, skipped = ?, missing = ?, failed = ?
		WHERE id = ?`,
		nullTimePtr(r.FinishedAt), r.Status,
		r.Archived, r.Skipped, r.Missing, r.Failed,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, accounts, started_at, finished_at, status, archived, skipped, missing, failed
		FROM runs ORDER BY started_at DESC LIMIT ?`,
		int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var r model.Run
		var finished sql.NullTime
		err := rows.Scan(&r.ID, &r.Accounts, &r.StartedAt, &finished,
			&r.Status, &r.Archived, &r.Skipped, &r.Missing, &r.Failed)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetMediaBlob returns the embedded bytes for a digest, or nil when the row
// stores its bytes externally. A missing row is an error: callers look up
// digests they obtained from the archive itself.
func (s *SQLiteStore) GetMediaBlob(ctx context.Context, digest string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT content_blob FROM media WHERE id = ?", digest).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("media %s not found", digest)
	}
	if err != nil {
		return nil, fmt.Errorf("reading media blob %s: %w", digest, err)
	}
	return blob, nil
}

// Path returns the database file path (or ":memory:" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Nullable column helpers. Empty strings and zero times are stored as NULL.

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Compile-time check that SQLiteStore implements the Store interface
var _ archive.Store = (*SQLiteStore)(nil)
