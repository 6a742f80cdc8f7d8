package formatter

import (
	"strings"
	"testing"

	"github.com/dhmun/mediapack/internal/models"
)

func samplePack() *models.PackDetail {
	movie := models.NewContent("mv_1", models.KindMovie, "Oldboy", "", 700)
	track := models.NewContent("music_sp1", models.KindKpop, "Spring Day", "BTS", 5)

	pack := models.NewPack(3, "abcdefghjk", "선물", "힘내세요")
	return &models.PackDetail{Pack: pack, Contents: []*models.Content{movie, track}}
}

func TestContentsToCSV(t *testing.T) {
	detail := samplePack()

	data, err := ContentsToCSV(detail.Contents)
	if err != nil {
		t.Fatalf("failed to format CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID,Kind,Title") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Oldboy") || !strings.Contains(lines[1], "700MB") {
		t.Errorf("unexpected record: %s", lines[1])
	}
}

func TestPackToMarkdown(t *testing.T) {
	data, err := PackToMarkdown(samplePack())
	if err != nil {
		t.Fatalf("failed to format Markdown: %v", err)
	}

	out := string(data)
	for _, want := range []string{"# 선물", "> 힘내세요", "**Pack**: #3", "abcdefghjk", "[kpop] Spring Day"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestPackToText(t *testing.T) {
	data, err := PackToText(samplePack())
	if err != nil {
		t.Fatalf("failed to format text: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "선물 (#3)") {
		t.Errorf("text missing header:\n%s", out)
	}
	if !strings.Contains(out, "total: 705MB") {
		t.Errorf("text missing size total:\n%s", out)
	}
}

func TestNilPack(t *testing.T) {
	if _, err := PackToMarkdown(nil); err == nil {
		t.Error("expected error for nil pack")
	}
	if _, err := PackToText(nil); err == nil {
		t.Error("expected error for nil pack")
	}
}
