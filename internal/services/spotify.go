// Spotify API implementation of [MusicService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps /tracks batch lookups at 50 ids per request.
	spotifyTracksBatchSize = 50

	// Requests per second against the API; metadata lookups are bursty
	// during reconciliation and the public quota is generous but not free.
	spotifyRateLimit = 10
)

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
}

type spotifyTracksResponse struct {
	Tracks []*SpotifyTrack `json:"tracks"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyService implements [MusicService] against the Spotify Web API.
//
// Uses the OAuth2 client-credentials grant: metadata lookups need no user
// context, and the token source refreshes expired tokens transparently.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a SpotifyService from API credentials.
func NewSpotifyService(cfg shared.MusicConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret are required", shared.ErrMissingCredentials)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	return &SpotifyService{
		baseURL:    baseURL,
		httpClient: conf.Client(context.Background()),
		limiter:    rate.NewLimiter(rate.Limit(spotifyRateLimit), 1),
	}, nil
}

// Name returns the provider name.
func (s *SpotifyService) Name() string { return "Spotify" }

// SearchTracks searches the Spotify catalog for tracks matching query.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var resp spotifySearchResponse
	if err := s.getJSON(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, st := range resp.Tracks.Items {
		tracks = append(tracks, mapSpotifyTrack(st))
	}

	return tracks, nil
}

// GetTracksByIDs fetches track metadata in batches of up to 50 ids.
// Ids Spotify does not recognize come back as null entries and are skipped.
func (s *SpotifyService) GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	var tracks []models.Track

	for start := 0; start < len(ids); start += spotifyTracksBatchSize {
		end := start + spotifyTracksBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("ids", strings.Join(ids[start:end], ","))

		var resp spotifyTracksResponse
		if err := s.getJSON(ctx, "/tracks?"+params.Encode(), &resp); err != nil {
			return nil, err
		}

		for _, st := range resp.Tracks {
			if st == nil {
				continue
			}
			tracks = append(tracks, mapSpotifyTrack(*st))
		}
	}

	return tracks, nil
}

// getJSON performs a rate-limited GET against the API and decodes the
// JSON response into out.
func (s *SpotifyService) getJSON(ctx context.Context, path string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", shared.ErrAPIRequest, err)
	}

	return nil
}

// mapSpotifyTrack converts a Spotify API track to the provider-neutral DTO.
func mapSpotifyTrack(st SpotifyTrack) models.Track {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	thumbnail := ""
	if len(st.Album.Images) > 0 {
		thumbnail = st.Album.Images[0].URL
	}

	return models.Track{
		ID:           st.ID,
		Title:        st.Name,
		Artist:       strings.Join(artists, ", "),
		Album:        st.Album.Name,
		Duration:     st.DurationMS / 1000,
		ThumbnailURL: thumbnail,
		ISRC:         st.ExternalIDs.ISRC,
	}
}
