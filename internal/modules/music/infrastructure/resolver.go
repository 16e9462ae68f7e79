package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/ppalone/ytsearch"
	"golang.org/x/time/rate"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

var _ ports.TrackResolver = (*Resolver)(nil)

const streamFormat = "bestaudio[ext=webm]/bestaudio[ext=m4a]/bestaudio/best"

// Resolver resolves queries and URLs to playable streams. Plain text goes
// through YouTube search; YouTube watch URLs use the native extraction client
// as a fast path; everything else, and any fast-path failure, falls back to
// yt-dlp. Collections yield their first entry only.
type Resolver struct {
	yt      yt.Client
	search  *ytsearch.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewResolver creates a resolver whose calls are each bounded by timeout.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		search:  ytsearch.NewClient(nil),
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		timeout: timeout,
	}
}

// Resolve returns a fresh stream reference for the source.
func (r *Resolver) Resolve(ctx context.Context, source string) (*domain.ResolvedStream, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}

	target := source
	if !isURL(source) {
		url, _, _, err := r.searchFirst(ctx, source)
		if err != nil {
			// yt-dlp can run the search itself when the search client
			// is unavailable.
			target = "ytsearch1:" + source
		} else {
			target = url
		}
	}

	if isYouTubeURL(target) {
		stream, err := r.resolveNative(ctx, target)
		if err == nil {
			return stream, nil
		}
		slog.Debug("native extraction failed, falling back to yt-dlp",
			"source", target, "error", err)
	}

	stream, err := r.resolveYtdlp(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}
	return stream, nil
}

// Lookup fetches display metadata without extracting a stream URL.
func (r *Resolver) Lookup(ctx context.Context, query string) (string, string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.limiter.Wait(ctx); err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}

	if !isURL(query) {
		url, title, duration, err := r.searchFirst(ctx, query)
		if err != nil {
			return "", "", 0, fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
		}
		return title, url, duration, nil
	}

	if isYouTubeURL(query) {
		if video, err := r.yt.GetVideoContext(ctx, query); err == nil {
			return video.Title, query, video.Duration, nil
		}
	}

	title, duration, err := r.ytdlpMetadata(ctx, query)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}
	return title, query, duration, nil
}

func (r *Resolver) searchFirst(ctx context.Context, query string) (url, title string, duration time.Duration, err error) {
	res, err := r.search.Search(ctx, query)
	if err != nil {
		return "", "", 0, err
	}
	if len(res.Results) == 0 {
		return "", "", 0, errors.New("no search results")
	}
	first := res.Results[0]
	return "https://www.youtube.com/watch?v=" + first.VideoID, first.Title, parseColonDuration(first.Duration), nil
}

func (r *Resolver) resolveNative(ctx context.Context, url string) (*domain.ResolvedStream, error) {
	video, err := r.yt.GetVideoContext(ctx, url)
	if err != nil {
		return nil, err
	}
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats")
	}
	streamURL, err := r.yt.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, err
	}
	return &domain.ResolvedStream{
		StreamURL: streamURL,
		Title:     video.Title,
		Duration:  video.Duration,
	}, nil
}

func (r *Resolver) resolveYtdlp(ctx context.Context, target string) (*domain.ResolvedStream, error) {
	res, err := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig().
		Format(streamFormat).
		PlaylistItems("1").
		Print("%(url)s\t%(title)s\t%(duration)s").
		Run(ctx, "--skip-download", target)
	if err != nil {
		return nil, err
	}

	streamURL, title, duration, err := parseStreamLine(res.Stdout)
	if err != nil {
		return nil, err
	}
	return &domain.ResolvedStream{
		StreamURL: streamURL,
		Title:     title,
		Duration:  duration,
	}, nil
}

func (r *Resolver) ytdlpMetadata(ctx context.Context, target string) (string, time.Duration, error) {
	res, err := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig().
		PlaylistItems("1").
		Print("%(title)s\t%(duration)s").
		Run(ctx, "--skip-download", target)
	if err != nil {
		return "", 0, err
	}

	line := firstLine(res.Stdout)
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", 0, fmt.Errorf("unexpected yt-dlp output %q", line)
	}
	return parts[0], parseSeconds(parts[1]), nil
}

// parseStreamLine splits a "url<TAB>title<TAB>duration" print line.
func parseStreamLine(stdout string) (string, string, time.Duration, error) {
	line := firstLine(stdout)
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 || parts[0] == "" {
		return "", "", 0, fmt.Errorf("unexpected yt-dlp output %q", line)
	}
	return parts[0], parts[1], parseSeconds(parts[2]), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseSeconds parses a duration in seconds, tolerating "NA" and fractional
// values. Unparseable input means unknown duration.
func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// parseColonDuration parses "3:20" or "1:02:05" style durations.
func parseColonDuration(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeURL(s string) bool {
	return isURL(s) && (strings.Contains(s, "youtube.com/") || strings.Contains(s, "youtu.be/"))
}
