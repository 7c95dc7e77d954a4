package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"twarchive/internal/archive"
	"twarchive/internal/config"
)

// FFmpegTranscoder converts HLS playlists into single MP4 files by shelling
// out to ffmpeg. Streams are copied, not re-encoded, so the output keeps the
// source quality.
type FFmpegTranscoder struct {
	ffmpegPath string
	workDir    string
	log        archive.Logger
}

// NewFFmpegTranscoder creates a transcoder. workDir holds the intermediate
// MP4 files; each one is removed as soon as its bytes are read back.
func NewFFmpegTranscoder(cfg config.FetchConfig, workDir string, log archive.Logger) (*FFmpegTranscoder, error) {
	path := cfg.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating transcode work directory: %w", err)
	}
	return &FFmpegTranscoder{
		ffmpegPath: path,
		workDir:    workDir,
		log:        log,
	}, nil
}

// Transcode downloads the playlist at url through ffmpeg and returns the
// resulting MP4 bytes.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, url string) ([]byte, error) {
	// Unique name so concurrent workers never collide on the output file.
	outPath := filepath.Join(t.workDir, uuid.New().String()+".mp4")
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-i", url,
		"-bsf:a", "aac_adtstoasc",
		"-vcodec", "copy",
		"-c", "copy",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.log.Debug("ffmpeg failed", "url", url, "output", string(out))
		return nil, fmt.Errorf("transcoding %s: %w", url, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading transcoded file: %w", err)
	}
	return data, nil
}

// Compile-time check that FFmpegTranscoder implements the Transcoder interface
var _ archive.Transcoder = (*FFmpegTranscoder)(nil)
