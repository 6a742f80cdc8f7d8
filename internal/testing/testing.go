// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"

	"github.com/dhmun/mediapack/internal/models"
)

// MockMusicService is a test double for [services.MusicService].
//
// Tracks maps provider ids to metadata; ids absent from the map are
// treated as unknown to the provider. Err, when set, fails every call.
type MockMusicService struct {
	Tracks map[string]models.Track
	Err    error
	Calls  int
}

func (m *MockMusicService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	var tracks []models.Track
	for _, track := range m.Tracks {
		tracks = append(tracks, track)
		if len(tracks) >= limit {
			break
		}
	}
	return tracks, nil
}

func (m *MockMusicService) GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	var tracks []models.Track
	for _, id := range ids {
		if track, ok := m.Tracks[id]; ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func (m *MockMusicService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
