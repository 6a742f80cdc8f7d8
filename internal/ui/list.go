package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
)

// contentItem wraps a catalog entry so the bubbles list can render it,
// with a marker for entries already picked for the pack.
type contentItem struct {
	content  *models.Content
	selected bool
}

func (i contentItem) FilterValue() string {
	return i.content.Title()
}

func (i contentItem) Title() string {
	marker := "[ ]"
	if i.selected {
		marker = "[x]"
	}

	return fmt.Sprintf("%s %s", marker, i.content.Title())
}

func (i contentItem) Description() string {
	return fmt.Sprintf("%s · %s", i.content.Kind(), shared.FormatSize(i.content.SizeMB()))
}

func newContentList(contents []*models.Content, selected map[string]bool) list.Model {
	items := make([]list.Item, 0, len(contents))
	for _, c := range contents {
		items = append(items, contentItem{content: c, selected: selected[c.ID()]})
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "Pick contents for your pack"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return l
}
