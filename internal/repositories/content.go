package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dhmun/mediapack/internal/models"
)

// releaseDateSentinel stands in for missing release dates in ORDER BY so
// date ordering is always total.
const releaseDateSentinel = "0001-01-01"

// ContentQuery describes a filtered, sorted, paginated catalog query at
// the storage level. Offset/Limit are absolute; page math happens in the
// catalog engine.
type ContentQuery struct {
	Kind      string
	Search    string
	GenreIDs  []int
	SortBy    string // popularity | vote_average | release_date | title
	SortOrder string // asc | desc
	Offset    int
	Limit     int
}

// ContentRepository implements SQLite persistence for [models.Content].
//
// Inactive contents (is_active = 0) are excluded from every query; rows are
// soft-deleted by flipping the flag rather than removed.
type ContentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new ContentRepository with the given database connection
func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = "id, kind, title, summary, thumbnail_url, size_mb, is_active, popularity, vote_average, release_date, genre_ids, created_at, updated_at"

// Create inserts a new [models.Content] into the database.
func (r *ContentRepository) Create(content *models.Content) error {
	if err := content.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO contents (` + contentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, contentArgs(content)...)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}

	return nil
}

// Upsert inserts contents, updating metadata for rows whose id already
// exists. The id, kind, and created_at of an existing row never change.
// Upserts are idempotent, so a partially failed reconciliation can be
// safely repeated.
func (r *ContentRepository) Upsert(contents []*models.Content) error {
	if len(contents) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contents (` + contentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			thumbnail_url = excluded.thumbnail_url,
			size_mb = excluded.size_mb,
			popularity = excluded.popularity,
			vote_average = excluded.vote_average,
			release_date = excluded.release_date,
			genre_ids = excluded.genre_ids,
			updated_at = excluded.updated_at
	`

	for _, content := range contents {
		if err := content.Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", content.ID(), err)
		}
		if _, err := tx.Exec(query, contentArgs(content)...); err != nil {
			return fmt.Errorf("failed to upsert content %s: %w", content.ID(), err)
		}
	}

	return tx.Commit()
}

// Get retrieves an active content by ID.
func (r *ContentRepository) Get(id string) (*models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE id = ? AND is_active = 1
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByIDs retrieves all active contents whose ids appear in ids.
// Missing ids are silently absent from the result.
func (r *ContentRepository) GetByIDs(ids []string) ([]*models.Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE id IN (` + placeholders + `) AND is_active = 1
	`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Query runs a filtered, sorted, paginated catalog query and returns the
// page of contents plus the total count of matching rows.
//
// Ties on the sort field fall back to created_at descending, then id
// ascending, so pagination is stable across rows sharing a sort key.
func (r *ContentRepository) Query(q ContentQuery) ([]*models.Content, int, error) {
	where, args := buildContentFilter(q)

	var total int
	countQuery := "SELECT COUNT(*) FROM contents " + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contents: %w", err)
	}

	query := "SELECT " + contentColumns + " FROM contents " + where +
		" ORDER BY " + orderClause(q.SortBy, q.SortOrder) +
		" LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset)

	rows, err := r.db.Query(query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	contents, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return contents, total, nil
}

// Deactivate soft-deletes a content by flipping is_active.
func (r *ContentRepository) Deactivate(id string) error {
	result, err := r.db.Exec("UPDATE contents SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("content not found or already inactive: %s", id)
	}

	return nil
}

// buildContentFilter assembles the WHERE clause shared by the count and
// page queries. An empty search string means no search filter; genre
// filters match on set overlap.
func buildContentFilter(q ContentQuery) (string, []any) {
	clauses := []string{"is_active = 1"}
	args := []any{}

	if q.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, q.Kind)
	}

	if q.Search != "" {
		clauses = append(clauses, "(title LIKE ? OR summary LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(q.GenreIDs) > 0 {
		overlap := make([]string, len(q.GenreIDs))
		for i, genreID := range q.GenreIDs {
			overlap[i] = "(',' || genre_ids || ',') LIKE ?"
			args = append(args, fmt.Sprintf("%%,%d,%%", genreID))
		}
		clauses = append(clauses, "("+strings.Join(overlap, " OR ")+")")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps a sort request to a safe ORDER BY expression. Sort
// fields are whitelisted; anything unknown falls back to popularity.
func orderClause(sortBy, sortOrder string) string {
	var expr string
	switch sortBy {
	case "vote_average":
		expr = "vote_average"
	case "release_date":
		expr = "COALESCE(release_date, '" + releaseDateSentinel + "')"
	case "title":
		expr = "title"
	default:
		expr = "popularity"
	}

	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	return fmt.Sprintf("%s %s, created_at DESC, id ASC", expr, dir)
}

func contentArgs(c *models.Content) []any {
	var releaseDate any
	if rd := c.ReleaseDate(); rd != nil {
		releaseDate = rd.Format("2006-01-02")
	}

	return []any{
		c.ID(),
		string(c.Kind()),
		c.Title(),
		c.Summary(),
		c.ThumbnailURL(),
		c.SizeMB(),
		c.IsActive(),
		c.Popularity(),
		c.VoteAverage(),
		releaseDate,
		models.EncodeGenreIDs(c.GenreIDs()),
		c.CreatedAt(),
		c.UpdatedAt(),
	}
}

type contentScanner interface {
	Scan(dest ...any) error
}

func scanContent(s contentScanner) (*models.Content, error) {
	var (
		id           string
		kind         string
		title        string
		summary      string
		thumbnailURL string
		sizeMB       int
		isActive     bool
		popularity   float64
		voteAverage  float64
		releaseDate  sql.NullString
		genreIDs     string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := s.Scan(&id, &kind, &title, &summary, &thumbnailURL, &sizeMB, &isActive, &popularity, &voteAverage, &releaseDate, &genreIDs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	content := models.NewContent(id, models.Kind(kind), title, summary, sizeMB)
	content.SetThumbnailURL(thumbnailURL)
	content.SetActive(isActive)
	content.SetPopularity(popularity)
	content.SetVoteAverage(voteAverage)
	content.SetGenreIDs(models.ParseGenreIDs(genreIDs))
	content.SetCreatedAt(createdAt)
	content.SetUpdatedAt(updatedAt)

	if releaseDate.Valid && releaseDate.String != "" {
		if t, err := time.Parse("2006-01-02", releaseDate.String); err == nil {
			content.SetReleaseDate(&t)
		}
	}

	return content, nil
}

func (r *ContentRepository) scanOne(row *sql.Row) (*models.Content, error) {
	content, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("content not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	return content, nil
}

func (r *ContentRepository) collect(rows *sql.Rows) ([]*models.Content, error) {
	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return contents, nil
}
