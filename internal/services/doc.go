// Package services defines the [MusicService] interface for external music metadata providers and implements it for Spotify.
//
// # Service Interface
//
// The pack creation workflow consumes [MusicService] during reconciliation:
// referenced track ids that are not yet catalog contents get their metadata
// fetched here before being absorbed into the catalog.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client-credentials grant;
// metadata lookups need no user consent and the token source refreshes
// transparently. Requests are throttled with a [rate.Limiter] since
// reconciliation can issue bursts of lookups.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : provider credentials not configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned non-2xx
//   - [shared.ErrTrackNotFound] : track id not found
//
// Both SearchTracks and GetTracksByIDs map provider-specific JSON into
// [models.Track]; id batches respect the API's 50-id lookup cap.
package services
