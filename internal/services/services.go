// package services defines interface MusicService for external music metadata providers
package services

import (
	"context"

	"github.com/dhmun/mediapack/internal/models"
)

// MusicService is the interface for music metadata providers consumed
// during pack creation. Implementations fetch descriptive track metadata;
// they never write to the catalog themselves.
type MusicService interface {
	// SearchTracks searches for tracks matching the query string.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// GetTracksByIDs fetches metadata for the given provider track ids.
	// Unknown ids are absent from the result rather than an error.
	GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error)

	// Name returns the provider's name (e.g. "Spotify")
	Name() string
}
