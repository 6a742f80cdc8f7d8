package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
)

// PackRepository implements SQLite persistence for [models.Pack] and its
// membership rows.
//
// Packs are hard-deleted on compensation so a failed creation leaves no
// trace and the slug becomes reusable; membership rows cascade with the
// pack row.
type PackRepository struct {
	db *sql.DB
}

// NewPackRepository creates a new PackRepository with the given database connection
func NewPackRepository(db *sql.DB) *PackRepository {
	return &PackRepository{db: db}
}

// Create inserts a new pack row with a generated ID.
//
// A UNIQUE violation on share_slug is returned unwrapped so callers can
// detect it with [IsUniqueViolation] and retry with a fresh slug.
func (r *PackRepository) Create(pack *models.Pack) error {
	id := shared.GenerateID()
	pack.SetID(id)

	if err := pack.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO packs (id, serial, share_slug, name, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		pack.Serial(),
		pack.ShareSlug(),
		pack.Name(),
		pack.Message(),
		pack.CreatedAt(),
	)
	if err != nil {
		if IsUniqueViolation(err, "packs.share_slug") {
			return err
		}
		return fmt.Errorf("failed to insert pack: %w", err)
	}

	return nil
}

// Delete removes a pack row and, via ON DELETE CASCADE, any membership
// rows pointing at it. Used as the compensation step when membership
// writes fail.
func (r *PackRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM packs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pack: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pack not found: %s", id)
	}

	return nil
}

// AddMembers inserts one membership row per content id, all in a single
// transaction. Either every row lands or none do.
func (r *PackRepository) AddMembers(packID string, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return fmt.Errorf("no content ids to add")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, contentID := range contentIDs {
		if _, err := tx.Exec("INSERT INTO pack_contents (pack_id, content_id) VALUES (?, ?)", packID, contentID); err != nil {
			return fmt.Errorf("failed to insert membership for %s: %w", contentID, err)
		}
	}

	return tx.Commit()
}

// GetBySlug retrieves a pack by its share slug together with its complete
// resolved membership. Returns [shared.ErrPackNotFound] if no pack row
// exists for the slug.
func (r *PackRepository) GetBySlug(slug string) (*models.PackDetail, error) {
	query := `
		SELECT id, serial, share_slug, name, message, created_at
		FROM packs
		WHERE share_slug = ?
	`

	var (
		id        string
		serial    int
		shareSlug string
		name      string
		message   string
		createdAt time.Time
	)

	err := r.db.QueryRow(query, slug).Scan(&id, &serial, &shareSlug, &name, &message, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPackNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pack: %w", err)
	}

	pack := models.NewPack(serial, shareSlug, name, message)
	pack.SetID(id)
	pack.SetCreatedAt(createdAt)

	contents, err := r.members(id)
	if err != nil {
		return nil, err
	}

	return &models.PackDetail{Pack: pack, Contents: contents}, nil
}

// SlugExists reports whether any pack already uses the given share slug.
func (r *PackRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM packs WHERE share_slug = ?)", slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// MaxSerial returns the highest serial assigned to any existing pack, or
// zero when no packs exist.
func (r *PackRepository) MaxSerial() (int, error) {
	var serial int
	err := r.db.QueryRow("SELECT COALESCE(MAX(serial), 0) FROM packs").Scan(&serial)
	if err != nil {
		return 0, fmt.Errorf("failed to read max serial: %w", err)
	}
	return serial, nil
}

// members resolves a pack's membership rows to content records.
func (r *PackRepository) members(packID string) ([]*models.Content, error) {
	query := `
		SELECT ` + prefixColumns("c", contentColumns) + `
		FROM pack_contents pc
		JOIN contents c ON c.id = pc.content_id
		WHERE pc.pack_id = ?
		ORDER BY c.id ASC
	`

	rows, err := r.db.Query(query, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pack members: %w", err)
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pack member: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return contents, nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}
