package models

// Track represents a music track as described by the external music provider.
//
// Tracks are not catalog entries by themselves; the pack creation workflow
// absorbs referenced tracks into the catalog as kpop [Content] records.
type Track struct {
	ID           string
	Title        string
	Artist       string
	Album        string
	Duration     int // Duration in seconds
	ThumbnailURL string
	ISRC         string // International Standard Recording Code
}
