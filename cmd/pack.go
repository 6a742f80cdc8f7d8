package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/formatter"
	"github.com/dhmun/mediapack/internal/shared"
	"github.com/dhmun/mediapack/internal/tasks"
)

// PackCreate runs the pack creation workflow from the command line.
func (r *Runner) PackCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngines(); err != nil {
		return err
	}

	input := tasks.CreatePackInput{
		Name:               cmd.String("name"),
		Message:            cmd.String("message"),
		SelectedContentIDs: cmd.StringSlice("content"),
		MusicTrackIDs:      cmd.StringSlice("track"),
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	result, err := r.engine.CreatePack(ctx, progress, input)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("pack creation failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"share_slug":     result.ShareSlug,
			"serial":         result.Serial,
			"content_ids":    result.ContentIDs,
			"skipped_tracks": result.Reconciliation.Skipped,
		}, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ Pack created")
	r.writePlain("  Slug:   %s\n", result.ShareSlug)
	r.writePlain("  Serial: #%d\n", result.Serial)
	r.writePlain("  Items:  %d\n", len(result.ContentIDs))
	for _, skip := range result.Reconciliation.Skipped {
		r.writePlain("  skipped %s: %s\n", skip.ID, skip.Reason)
	}

	return nil
}

// PackShow looks up a pack by its share slug.
func (r *Runner) PackShow(ctx context.Context, cmd *cli.Command) error {
	slug := cmd.StringArg("slug")
	if slug == "" {
		return fmt.Errorf("%w: share slug", shared.ErrMissingArgument)
	}

	if err := r.ensureEngines(); err != nil {
		return err
	}

	detail, err := r.engine.GetPack(slug)
	if err != nil {
		return fmt.Errorf("failed to load pack: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"share_slug": detail.Pack.ShareSlug(),
			"serial":     detail.Pack.Serial(),
			"name":       detail.Pack.Name(),
			"message":    detail.Pack.Message(),
			"contents":   toContentRows(detail.Contents),
		}, cmd.Bool("pretty"))
	}

	var data []byte
	if cmd.Bool("markdown") {
		data, err = formatter.PackToMarkdown(detail)
	} else {
		data, err = formatter.PackToText(detail)
	}
	if err != nil {
		return fmt.Errorf("failed to format pack: %w", err)
	}

	return r.writePlain("%s", data)
}
