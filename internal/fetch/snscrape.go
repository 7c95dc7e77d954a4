package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"twarchive/internal/archive"
	"twarchive/internal/config"
	"twarchive/internal/model"
)

// Single tweets can carry deeply nested quoted records; lines run well past
// bufio's default 64KB cap.
const maxLineSize = 16 * 1024 * 1024

// Scraper implements the Fetcher interface by executing the snscrape CLI
// and parsing its JSONL output. One subprocess is spawned per search; uses
// of the returned cursor stream tweets as the process emits them.
type Scraper struct {
	scraperPath string
	log         archive.Logger
}

// NewScraper creates a scraper from configuration. An empty scraper_path
// resolves "snscrape" through PATH.
func NewScraper(cfg config.FetchConfig, log archive.Logger) *Scraper {
	path := cfg.ScraperPath
	if path == "" {
		path = "snscrape"
	}
	return &Scraper{
		scraperPath: path,
		log:         log,
	}
}

// SearchByAccount yields every tweet posted by the handle, native retweets
// included.
func (s *Scraper) SearchByAccount(ctx context.Context, handle string) (archive.TweetCursor, error) {
	return s.search(ctx, fmt.Sprintf("from:%s include:nativeretweets", handle))
}

// SearchByConversation yields the tweets of a conversation thread.
func (s *Scraper) SearchByConversation(ctx context.Context, conversationID int64) (archive.TweetCursor, error) {
	return s.search(ctx, fmt.Sprintf("conversation_id:%d", conversationID))
}

func (s *Scraper) search(ctx context.Context, query string) (archive.TweetCursor, error) {
	cmd := exec.CommandContext(ctx, s.scraperPath, "--jsonl", "twitter-search", query)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting scraper for %q: %w", query, err)
	}
	s.log.Debug("scraper started", "query", query, "pid", cmd.Process.Pid)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &processCursor{cmd: cmd, lines: scanner}, nil
}

// FetchByID retrieves one tweet. The scraper exits nonzero for deleted,
// protected or suspended tweets; that is reported as ErrNotFound.
func (s *Scraper) FetchByID(ctx context.Context, id int64) (*model.RawTweet, error) {
	cmd := exec.CommandContext(ctx, s.scraperPath, "--jsonl", "twitter-tweet", strconv.FormatInt(id, 10))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			s.log.Debug("scraper lookup failed", "id", id, "stderr", stderr.String())
			return nil, archive.ErrNotFound
		}
		return nil, fmt.Errorf("running scraper for tweet %d: %w", id, err)
	}

	for _, line := range bytes.Split(stdout.Bytes(), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		t, err := parseTweet(line)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return nil, archive.ErrNotFound
}

// processCursor streams tweets from a running scraper subprocess.
type processCursor struct {
	cmd    *exec.Cmd
	lines  *bufio.Scanner
	waited bool
}

// Next returns the next tweet, or io.EOF once the scraper exits cleanly
// with no output left.
func (c *processCursor) Next(ctx context.Context) (*model.RawTweet, error) {
	for {
		if err := ctx.Err(); err != nil {
			c.wait()
			return nil, err
		}

		if !c.lines.Scan() {
			if err := c.lines.Err(); err != nil {
				c.wait()
				return nil, fmt.Errorf("reading scraper output: %w", err)
			}
			if err := c.wait(); err != nil {
				return nil, fmt.Errorf("scraper exited: %w", err)
			}
			return nil, io.EOF
		}

		line := bytes.TrimSpace(c.lines.Bytes())
		if len(line) == 0 {
			continue
		}
		t, err := parseTweet(line)
		if err != nil {
			c.wait()
			return nil, err
		}
		if t == nil {
			continue
		}
		return t, nil
	}
}

func (c *processCursor) wait() error {
	if c.waited {
		return nil
	}
	c.waited = true
	return c.cmd.Wait()
}

// Compile-time check that Scraper implements the Fetcher interface
var _ archive.Fetcher = (*Scraper)(nil)
