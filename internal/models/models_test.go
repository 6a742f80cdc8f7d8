package models

import (
	"strings"
	"testing"
)

func TestKind(t *testing.T) {
	tc := []struct {
		kind  Kind
		valid bool
	}{
		{kind: KindMovie, valid: true},
		{kind: KindDrama, valid: true},
		{kind: KindShow, valid: true},
		{kind: KindKpop, valid: true},
		{kind: KindDoc, valid: true},
		{kind: Kind("podcast"), valid: false},
		{kind: Kind(""), valid: false},
	}

	for _, tt := range tc {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.valid {
				t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.valid)
			}
		})
	}
}

func TestContentValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := NewContent("mv_1", KindMovie, "Title", "summary", 700)
		if err := c.Validate(); err != nil {
			t.Errorf("expected valid content, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		c := NewContent("", KindMovie, "Title", "", 700)
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("bad kind", func(t *testing.T) {
		c := NewContent("mv_1", Kind("vinyl"), "Title", "", 700)
		if err := c.Validate(); err == nil {
			t.Error("expected error for invalid kind")
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		c := NewContent("mv_1", KindMovie, "Title", "", 0)
		if err := c.Validate(); err == nil {
			t.Error("expected error for zero size")
		}
	})
}

func TestGenreIDs(t *testing.T) {
	t.Run("encode sorts", func(t *testing.T) {
		if got := EncodeGenreIDs([]int{35, 12, 28}); got != "12,28,35" {
			t.Errorf("EncodeGenreIDs = %q, want 12,28,35", got)
		}
	})

	t.Run("encode empty", func(t *testing.T) {
		if got := EncodeGenreIDs(nil); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("parse roundtrip", func(t *testing.T) {
		ids := ParseGenreIDs("12,28,35")
		if len(ids) != 3 || ids[0] != 12 || ids[2] != 35 {
			t.Errorf("unexpected ids: %v", ids)
		}
	})

	t.Run("parse skips malformed", func(t *testing.T) {
		ids := ParseGenreIDs("12, x, ,35")
		if len(ids) != 2 || ids[0] != 12 || ids[1] != 35 {
			t.Errorf("expected malformed entries skipped, got %v", ids)
		}
	})
}

func TestPackValidate(t *testing.T) {
	t.Run("valid multibyte text", func(t *testing.T) {
		p := NewPack(1, "abcdefghjk", "선물", "힘내세요")
		if err := p.Validate(); err != nil {
			t.Errorf("expected valid pack, got %v", err)
		}
	})

	t.Run("name counted in runes", func(t *testing.T) {
		// 20 Hangul runes, 60 bytes.
		p := NewPack(1, "abcdefghjk", strings.Repeat("가", PackNameMaxLen), "메시지")
		if err := p.Validate(); err != nil {
			t.Errorf("20-rune name should validate, got %v", err)
		}

		p = NewPack(1, "abcdefghjk", strings.Repeat("가", PackNameMaxLen+1), "메시지")
		if err := p.Validate(); err == nil {
			t.Error("expected error for 21-rune name")
		}
	})

	t.Run("message limit", func(t *testing.T) {
		p := NewPack(1, "abcdefghjk", "name", strings.Repeat("힘", PackMessageMaxLen+1))
		if err := p.Validate(); err == nil {
			t.Error("expected error for over-long message")
		}
	})

	t.Run("serial must be positive", func(t *testing.T) {
		p := NewPack(0, "abcdefghjk", "name", "message")
		if err := p.Validate(); err == nil {
			t.Error("expected error for zero serial")
		}
	})

	t.Run("slug length", func(t *testing.T) {
		p := NewPack(1, "short", "name", "message")
		if err := p.Validate(); err == nil {
			t.Error("expected error for short slug")
		}
	})
}

func TestModelContract(t *testing.T) {
	pack := NewPack(1, "abcdefghjk", "선물", "힘내세요")
	pack.SetID("pk_1")

	entities := []Model{
		NewContent("mv_1", KindMovie, "Oldboy", "", 700),
		pack,
	}

	for _, m := range entities {
		if m.ID() == "" {
			t.Errorf("%T: expected non-empty id", m)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("%T: expected valid entity, got %v", m, err)
		}
		if m.UpdatedAt().Before(m.CreatedAt()) {
			t.Errorf("%T: updated at %v precedes created at %v", m, m.UpdatedAt(), m.CreatedAt())
		}
	}
}
