package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Pack name and message limits are counted in runes so multibyte
// campaign text ("선물", "힘내세요") is measured the way users see it.
const (
	PackNameMaxLen    = 20
	PackMessageMaxLen = 50
	PackMinContents   = 3
	PackMaxContents   = 20
)

// Pack is a named, shareable bundle of catalog content references.
//
// The serial is strictly increasing across all packs and assigned once;
// the share slug is a 10-character globally unique public identifier.
// Both are immutable after creation.
type Pack struct {
	id        string
	serial    int
	shareSlug string
	name      string
	message   string
	createdAt time.Time
}

var _ Model = (*Pack)(nil)

// NewPack creates a Pack with the given serial, slug, and user-provided text.
func NewPack(serial int, shareSlug, name, message string) *Pack {
	return &Pack{
		serial:    serial,
		shareSlug: shareSlug,
		name:      name,
		message:   message,
		createdAt: time.Now(),
	}
}

func (p *Pack) ID() string           { return p.id }
func (p *Pack) Serial() int          { return p.serial }
func (p *Pack) ShareSlug() string    { return p.shareSlug }
func (p *Pack) Name() string         { return p.name }
func (p *Pack) Message() string      { return p.message }
func (p *Pack) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the creation time; packs are immutable after creation.
func (p *Pack) UpdatedAt() time.Time { return p.createdAt }

func (p *Pack) SetID(id string)          { p.id = id }
func (p *Pack) SetCreatedAt(t time.Time) { p.createdAt = t }

// Validate checks the pack's invariants.
func (p *Pack) Validate() error {
	if n := utf8.RuneCountInString(p.name); n < 1 || n > PackNameMaxLen {
		return fmt.Errorf("pack name must be 1-%d characters, got %d", PackNameMaxLen, n)
	}
	if n := utf8.RuneCountInString(p.message); n < 1 || n > PackMessageMaxLen {
		return fmt.Errorf("pack message must be 1-%d characters, got %d", PackMessageMaxLen, n)
	}
	if p.serial <= 0 {
		return fmt.Errorf("pack serial must be positive, got %d", p.serial)
	}
	if len(p.shareSlug) != 10 {
		return fmt.Errorf("share slug must be 10 characters, got %d", len(p.shareSlug))
	}
	return nil
}

// PackDetail is a pack resolved together with its complete membership.
type PackDetail struct {
	Pack     *Pack
	Contents []*Content
}
