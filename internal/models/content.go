package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind categorizes catalog content.
type Kind string

const (
	KindMovie Kind = "movie"
	KindDrama Kind = "drama"
	KindShow  Kind = "show"
	KindKpop  Kind = "kpop"
	KindDoc   Kind = "doc"
)

// Valid reports whether k is a known content kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindDrama, KindShow, KindKpop, KindDoc:
		return true
	}
	return false
}

// Kinds lists all known content kinds.
func Kinds() []Kind {
	return []Kind{KindMovie, KindDrama, KindShow, KindKpop, KindDoc}
}

// Content is a catalog entry: a movie, drama, show, k-pop track, or documentary.
//
// The id is immutable once created and may carry a provenance prefix
// (e.g. "music_" for tracks absorbed from the music provider). Inactive
// contents are excluded from every catalog query.
type Content struct {
	id           string
	kind         Kind
	title        string
	summary      string
	thumbnailURL string
	sizeMB       int
	isActive     bool
	popularity   float64
	voteAverage  float64
	releaseDate  *time.Time
	genreIDs     []int
	createdAt    time.Time
	updatedAt    time.Time
}

var _ Model = (*Content)(nil)

// NewContent creates an active Content with the given identity and metadata.
func NewContent(id string, kind Kind, title, summary string, sizeMB int) *Content {
	now := time.Now()
	return &Content{
		id:        id,
		kind:      kind,
		title:     title,
		summary:   summary,
		sizeMB:    sizeMB,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Content) ID() string              { return c.id }
func (c *Content) Kind() Kind              { return c.kind }
func (c *Content) Title() string           { return c.title }
func (c *Content) Summary() string         { return c.summary }
func (c *Content) ThumbnailURL() string    { return c.thumbnailURL }
func (c *Content) SizeMB() int             { return c.sizeMB }
func (c *Content) IsActive() bool          { return c.isActive }
func (c *Content) Popularity() float64     { return c.popularity }
func (c *Content) VoteAverage() float64    { return c.voteAverage }
func (c *Content) ReleaseDate() *time.Time { return c.releaseDate }
func (c *Content) GenreIDs() []int         { return c.genreIDs }
func (c *Content) CreatedAt() time.Time    { return c.createdAt }
func (c *Content) UpdatedAt() time.Time    { return c.updatedAt }

func (c *Content) SetThumbnailURL(url string)  { c.thumbnailURL = url }
func (c *Content) SetPopularity(p float64)     { c.popularity = p }
func (c *Content) SetVoteAverage(v float64)    { c.voteAverage = v }
func (c *Content) SetReleaseDate(t *time.Time) { c.releaseDate = t }
func (c *Content) SetGenreIDs(ids []int)       { c.genreIDs = ids }
func (c *Content) SetActive(active bool)       { c.isActive = active }
func (c *Content) SetCreatedAt(t time.Time)    { c.createdAt = t }
func (c *Content) SetUpdatedAt(t time.Time)    { c.updatedAt = t }

// Validate checks the content's invariants.
func (c *Content) Validate() error {
	if c.id == "" {
		return fmt.Errorf("content id is required")
	}
	if !c.kind.Valid() {
		return fmt.Errorf("unknown content kind: %q", c.kind)
	}
	if c.title == "" {
		return fmt.Errorf("content title is required")
	}
	if c.sizeMB <= 0 {
		return fmt.Errorf("content size must be positive, got %d", c.sizeMB)
	}
	return nil
}

// EncodeGenreIDs serializes a genre id set as sorted comma-separated text
// for storage (e.g. "12,28,35").
func EncodeGenreIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// ParseGenreIDs parses comma-separated genre ids, skipping malformed entries.
func ParseGenreIDs(s string) []int {
	if s == "" {
		return nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
