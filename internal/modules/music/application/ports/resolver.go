package ports

import (
	"context"
	"time"

	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// TrackResolver turns a query or URL into a playable stream reference via the
// external extraction service. Calls may take several seconds and must stay
// off the interaction hot path where possible.
type TrackResolver interface {
	// Resolve returns a fresh stream reference for the source. Collections
	// (playlists, search listings) yield their first entry only.
	Resolve(ctx context.Context, source string) (*domain.ResolvedStream, error)

	// Lookup fetches display metadata for a query or URL without extracting
	// a stream URL.
	Lookup(ctx context.Context, query string) (title, canonicalURL string, duration time.Duration, err error)
}
