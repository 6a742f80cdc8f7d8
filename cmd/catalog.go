package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/catalog"
	"github.com/dhmun/mediapack/internal/formatter"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
)

// contentRow is the CLI-facing JSON shape for a catalog entry.
type contentRow struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary,omitempty"`
	SizeMB      int     `json:"size_mb"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date,omitempty"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
}

func toContentRow(c *models.Content) contentRow {
	row := contentRow{
		ID:          c.ID(),
		Kind:        string(c.Kind()),
		Title:       c.Title(),
		Summary:     c.Summary(),
		SizeMB:      c.SizeMB(),
		Popularity:  c.Popularity(),
		VoteAverage: c.VoteAverage(),
		GenreIDs:    c.GenreIDs(),
	}
	if rd := c.ReleaseDate(); rd != nil {
		row.ReleaseDate = rd.Format("2006-01-02")
	}
	return row
}

func toContentRows(contents []*models.Content) []contentRow {
	rows := make([]contentRow, 0, len(contents))
	for _, c := range contents {
		rows = append(rows, toContentRow(c))
	}
	return rows
}

func (r *Runner) writeCatalogResult(cmd *cli.Command, result *catalog.Result) error {
	if cmd.Bool("csv") {
		data, err := formatter.ContentsToCSV(result.Contents)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		return r.writePlain("%s", data)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"contents": toContentRows(result.Contents),
			"total":    result.Total,
			"has_more": result.HasMore,
		}, cmd.Bool("pretty"))
	}

	for _, c := range result.Contents {
		r.writePlain("%-14s %-6s %-40s %s\n", c.ID(), c.Kind(), c.Title(), shared.FormatSize(c.SizeMB()))
	}
	r.writePlain("%d of %d contents\n", len(result.Contents), result.Total)

	return nil
}

// CatalogList lists catalog contents with kind, sort and pagination filters.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngines(); err != nil {
		return err
	}

	result, err := r.catalog.Query(catalog.Params{
		Kind:      models.Kind(cmd.String("kind")),
		SortBy:    cmd.String("sort"),
		SortOrder: cmd.String("order"),
		Page:      int(cmd.Int("page")),
		Limit:     int(cmd.Int("limit")),
	})
	if err != nil {
		return fmt.Errorf("catalog query failed: %w", err)
	}

	return r.writeCatalogResult(cmd, result)
}

// CatalogSearch searches contents by title or summary.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	if err := r.ensureEngines(); err != nil {
		return err
	}

	result, err := r.catalog.Search(query, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}

	return r.writeCatalogResult(cmd, result)
}

// CatalogPopular lists the most popular contents.
func (r *Runner) CatalogPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngines(); err != nil {
		return err
	}

	result, err := r.catalog.Popular(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("catalog query failed: %w", err)
	}

	return r.writeCatalogResult(cmd, result)
}

// CatalogImport bulk-loads contents from a JSON file into the catalog.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var rows []contentRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	if err := r.ensureEngines(); err != nil {
		return err
	}

	contents := make([]*models.Content, 0, len(rows))
	for _, row := range rows {
		c := models.NewContent(row.ID, models.Kind(row.Kind), row.Title, row.Summary, row.SizeMB)
		c.SetPopularity(row.Popularity)
		c.SetVoteAverage(row.VoteAverage)
		c.SetGenreIDs(row.GenreIDs)
		if row.ReleaseDate != "" {
			rd, err := time.Parse("2006-01-02", row.ReleaseDate)
			if err != nil {
				return fmt.Errorf("%w: release_date %q for %s", shared.ErrInvalidInput, row.ReleaseDate, row.ID)
			}
			c.SetReleaseDate(&rd)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid content %s: %w", row.ID, err)
		}
		contents = append(contents, c)
	}

	if err := r.contents.Upsert(contents); err != nil {
		return fmt.Errorf("failed to import contents: %w", err)
	}
	r.catalog.Invalidate()

	r.logger.Info("catalog import complete", "count", len(contents), "file", path)
	r.writePlain("✓ Imported %d contents\n", len(contents))

	return nil
}
