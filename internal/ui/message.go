package ui

import (
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/tasks"
)

// contentsFetchedMsg carries the catalog page loaded at startup.
type contentsFetchedMsg struct {
	contents []*models.Content
	err      error
}

// progressMsg carries one update from the pack creation workflow.
type progressMsg struct {
	update tasks.ProgressUpdate
	ok     bool
}

// packCreatedMsg signals the workflow finished, successfully or not.
type packCreatedMsg struct {
	result *tasks.CreatePackResult
	err    error
}
