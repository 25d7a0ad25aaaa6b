package artwork

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"
)

// Accessor fetches the raw thumbnail bytes for the current track. It is
// the most expensive step of a poll cycle, which is why its result is
// memoized per track.
type Accessor func(ctx context.Context) ([]byte, error)

// CoverCache memoizes the encoded artwork for the most recent track. The
// widget only ever shows one cover, so a single entry keyed by song
// identity is all that is needed.
type CoverCache struct {
	logger       *zap.Logger
	cachedSongID string
	cached       string
	primed       bool
}

// NewCoverCache creates an empty cover cache
func NewCoverCache(logger *zap.Logger) *CoverCache {
	return &CoverCache{logger: logger}
}

// Cover returns the encoded artwork for the given song identity. The
// accessor is only invoked when the identity differs from the cached one;
// on fetch failure an empty string is returned and the cache key is left
// untouched, so the next differing observation retries.
func (c *CoverCache) Cover(ctx context.Context, songID string, fetch Accessor) string {
	if c.primed && songID == c.cachedSongID {
		return c.cached
	}

	data, err := fetch(ctx)
	if err != nil {
		c.logger.Debug("Thumbnail fetch failed", zap.String("songID", songID), zap.Error(err))
		return ""
	}
	if len(data) == 0 {
		// Indistinguishable from "no art"; cache the absence so the
		// accessor is not re-invoked every cycle for the same track.
		c.cachedSongID = songID
		c.cached = ""
		c.primed = true
		return ""
	}

	c.cachedSongID = songID
	c.cached = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	c.primed = true

	c.logger.Debug("Cover cached", zap.String("songID", songID), zap.Int("bytes", len(data)))
	return c.cached
}
