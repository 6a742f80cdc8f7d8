// package tasks implements the pack creation workflow.
//
// The core abstraction is PackEngine, which orchestrates serial assignment,
// pack row creation, music track reconciliation, and membership writes,
// compensating back to a clean state when a required step fails. Progress
// updates are emitted via channels for non-blocking status reporting to
// CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/repositories"
	"github.com/dhmun/mediapack/internal/services"
	"github.com/dhmun/mediapack/internal/shared"
)

const (
	// MusicIDPrefix marks catalog ids absorbed from the music provider,
	// keeping them collision-free against other sources.
	MusicIDPrefix = "music_"

	// Synthetic capacity assigned to every absorbed music track.
	musicTrackSizeMB = 5

	// serialCounterKey is the counter backing pack serial numbers.
	serialCounterKey = "pack_serial"

	// maxSlugAttempts bounds slug regeneration on uniqueness collisions.
	maxSlugAttempts = 5
)

// CreatePackInput is the caller-supplied pack proposal.
type CreatePackInput struct {
	Name               string
	Message            string
	SelectedContentIDs []string // ids already in the catalog
	MusicTrackIDs      []string // provider track ids, possibly not yet cataloged
}

// SkippedTrack records a music track dropped during reconciliation.
type SkippedTrack struct {
	ID     string
	Reason string
}

// ReconciliationOutcome reports which referenced tracks made it into the
// catalog and which were dropped. Reconciliation is the only best-effort
// step in the workflow; skips are visible here instead of being silently
// swallowed.
type ReconciliationOutcome struct {
	Succeeded []string // final catalog ids for reconciled tracks
	Skipped   []SkippedTrack
}

// CreatePackResult is returned on full success.
type CreatePackResult struct {
	ShareSlug      string
	Serial         int
	ContentIDs     []string
	Reconciliation ReconciliationOutcome
}

// ContentStore is the catalog surface the workflow writes through.
type ContentStore interface {
	GetByIDs(ids []string) ([]*models.Content, error)
	Upsert(contents []*models.Content) error
}

// PackStore persists pack rows and membership.
type PackStore interface {
	Create(pack *models.Pack) error
	Delete(id string) error
	AddMembers(packID string, contentIDs []string) error
	GetBySlug(slug string) (*models.PackDetail, error)
}

// CounterStore hands out linearizable serial numbers.
type CounterStore interface {
	Increment(key string) (int, error)
}

// Invalidator drops cached catalog query results after catalog writes.
type Invalidator interface {
	Invalidate()
}

// PackEngine implements the pack creation workflow.
type PackEngine struct {
	contents ContentStore
	packs    PackStore
	counter  CounterStore
	music    services.MusicService
	catalog  Invalidator
	logger   *log.Logger
}

// PackEngineOpts contains dependencies for creating a PackEngine.
// Music and Catalog are optional; Logger defaults to a stderr logger.
type PackEngineOpts struct {
	Contents ContentStore
	Packs    PackStore
	Counter  CounterStore
	Music    services.MusicService
	Catalog  Invalidator
	Logger   *log.Logger
}

// NewPackEngine creates a PackEngine with the provided dependencies.
func NewPackEngine(opts PackEngineOpts) *PackEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &PackEngine{
		contents: opts.Contents,
		packs:    opts.Packs,
		counter:  opts.Counter,
		music:    opts.Music,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
	}
}

// SetLogger replaces the engine's logger, so callers can redirect workflow
// logging after the engine is wired.
func (e *PackEngine) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// CreatePack atomically materializes a new pack.
//
// The workflow runs validate → assign serial → create pack row → reconcile
// external tracks → write membership. Validation failures have no side
// effects. A consumed serial is never reused even when a later step fails;
// gaps in the serial sequence are benign. Any failure after the pack row
// exists compensates by deleting the row (membership cascades), so a pack
// is either fully visible or not visible at all.
func (e *PackEngine) CreatePack(ctx context.Context, progress chan<- ProgressUpdate, input CreatePackInput) (*CreatePackResult, error) {
	// Step 1: validate. Terminal on failure, nothing written yet.
	e.sendProgress(progress, validateUpdate())
	combined, err := e.validate(input)
	if err != nil {
		return nil, err
	}

	// Step 2: assign serial. Cannot be rolled back; a failure later on
	// burns this value.
	e.sendProgress(progress, assignSerialUpdate())
	serial, err := e.counter.Increment(serialCounterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCounterUnavailable, err)
	}

	// Step 3: create the pack row, regenerating the slug on collision.
	e.sendProgress(progress, createRowUpdate(serial))
	pack, err := e.createPackRow(serial, input.Name, input.Message)
	if err != nil {
		e.logger.Warn("pack row creation failed, serial burned", "serial", serial, "err", err)
		return nil, err
	}

	// Step 4: reconcile referenced music tracks into the catalog.
	// Per-track fetch failures are skipped; catalog write failures
	// compensate the pack row.
	e.sendProgress(progress, reconcileUpdate(len(input.MusicTrackIDs)))
	outcome, err := e.reconcile(ctx, input.MusicTrackIDs)
	if err != nil {
		e.compensate(pack, "reconciliation")
		return nil, err
	}

	finalIDs := finalContentIDs(combined, outcome)
	if len(finalIDs) < models.PackMinContents {
		e.compensate(pack, "reconciliation")
		return nil, fmt.Errorf("%w: only %d contents remained after reconciliation", shared.ErrPartialCreation, len(finalIDs))
	}

	// Step 5: write membership, all or nothing.
	e.sendProgress(progress, membershipUpdate(len(finalIDs)))
	if err := e.packs.AddMembers(pack.ID(), finalIDs); err != nil {
		e.compensate(pack, "membership write")
		return nil, fmt.Errorf("%w: %v", shared.ErrPartialCreation, err)
	}

	if e.catalog != nil {
		e.catalog.Invalidate()
	}

	e.logger.Info("pack created", "slug", pack.ShareSlug(), "serial", serial, "contents", len(finalIDs))
	e.sendProgress(progress, doneUpdate(pack))

	return &CreatePackResult{
		ShareSlug:      pack.ShareSlug(),
		Serial:         serial,
		ContentIDs:     finalIDs,
		Reconciliation: outcome,
	}, nil
}

// GetPack returns a pack with its complete resolved membership, or
// [shared.ErrPackNotFound] if no pack exists for the slug.
func (e *PackEngine) GetPack(slug string) (*models.PackDetail, error) {
	return e.packs.GetBySlug(slug)
}

// validate checks the proposal and returns the deduplicated combined
// content id list (catalog ids plus provenance-prefixed track ids).
func (e *PackEngine) validate(input CreatePackInput) ([]string, error) {
	if n := utf8.RuneCountInString(input.Name); n < 1 || n > models.PackNameMaxLen {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", shared.ErrInvalidPackInput, models.PackNameMaxLen)
	}
	if n := utf8.RuneCountInString(input.Message); n < 1 || n > models.PackMessageMaxLen {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", shared.ErrInvalidPackInput, models.PackMessageMaxLen)
	}

	seen := make(map[string]bool)
	var combined []string
	for _, id := range input.SelectedContentIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		combined = append(combined, id)
	}
	for _, trackID := range input.MusicTrackIDs {
		id := MusicIDPrefix + trackID
		if trackID == "" || seen[id] {
			continue
		}
		seen[id] = true
		combined = append(combined, id)
	}

	if len(combined) < models.PackMinContents {
		return nil, fmt.Errorf("%w: at least %d contents required, got %d", shared.ErrInvalidPackInput, models.PackMinContents, len(combined))
	}
	if len(combined) > models.PackMaxContents {
		return nil, fmt.Errorf("%w: at most %d contents allowed, got %d", shared.ErrInvalidPackInput, models.PackMaxContents, len(combined))
	}

	return combined, nil
}

// createPackRow inserts the pack row, retrying slug generation on the
// vanishingly rare uniqueness collision.
func (e *PackEngine) createPackRow(serial int, name, message string) (*models.Pack, error) {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		pack := models.NewPack(serial, shared.GenerateSlug(), name, message)

		err := e.packs.Create(pack)
		if err == nil {
			return pack, nil
		}
		if repositories.IsUniqueViolation(err, "packs.share_slug") {
			e.logger.Warn("share slug collision, regenerating", "attempt", attempt+1)
			continue
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}

	return nil, fmt.Errorf("%w: exhausted %d attempts", shared.ErrSlugCollision, maxSlugAttempts)
}

// reconcile absorbs referenced music tracks into the catalog.
//
// Tracks already cataloged count as succeeded without a provider call.
// Provider failures and unknown ids are logged and skipped; only catalog
// write failures abort (the caller then compensates the pack row).
func (e *PackEngine) reconcile(ctx context.Context, trackIDs []string) (ReconciliationOutcome, error) {
	outcome := ReconciliationOutcome{}
	if len(trackIDs) == 0 {
		return outcome, nil
	}

	catalogIDs := make([]string, 0, len(trackIDs))
	for _, trackID := range trackIDs {
		catalogIDs = append(catalogIDs, MusicIDPrefix+trackID)
	}

	existing, err := e.contents.GetByIDs(catalogIDs)
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	known := make(map[string]bool, len(existing))
	for _, content := range existing {
		known[content.ID()] = true
		outcome.Succeeded = append(outcome.Succeeded, content.ID())
	}

	var missing []string
	for _, trackID := range trackIDs {
		if !known[MusicIDPrefix+trackID] {
			missing = append(missing, trackID)
		}
	}
	if len(missing) == 0 {
		return outcome, nil
	}

	if e.music == nil {
		for _, trackID := range missing {
			outcome.Skipped = append(outcome.Skipped, SkippedTrack{ID: trackID, Reason: "music provider not configured"})
		}
		e.logger.Warn("skipping uncataloged tracks, no music provider", "count", len(missing))
		return outcome, nil
	}

	fetched, err := e.music.GetTracksByIDs(ctx, missing)
	if err != nil {
		// Best-effort: a provider outage drops these tracks, it does not
		// abort the pack.
		for _, trackID := range missing {
			outcome.Skipped = append(outcome.Skipped, SkippedTrack{ID: trackID, Reason: fmt.Sprintf("provider fetch failed: %v", err)})
		}
		e.logger.Warn("music provider fetch failed, tracks skipped", "count", len(missing), "err", err)
		return outcome, nil
	}

	fetchedByID := make(map[string]models.Track, len(fetched))
	for _, track := range fetched {
		fetchedByID[track.ID] = track
	}

	var upserts []*models.Content
	for _, trackID := range missing {
		track, ok := fetchedByID[trackID]
		if !ok {
			outcome.Skipped = append(outcome.Skipped, SkippedTrack{ID: trackID, Reason: "unknown to provider"})
			e.logger.Warn("track unknown to provider, skipped", "track", trackID)
			continue
		}
		upserts = append(upserts, trackToContent(track))
	}

	if len(upserts) > 0 {
		if err := e.contents.Upsert(upserts); err != nil {
			return outcome, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
		}
		for _, content := range upserts {
			outcome.Succeeded = append(outcome.Succeeded, content.ID())
		}
	}

	return outcome, nil
}

// compensate deletes the pack row after a failed required step. The
// delete cascades over any partial membership rows.
func (e *PackEngine) compensate(pack *models.Pack, stage string) {
	e.logger.Warn("compensating pack row", "slug", pack.ShareSlug(), "stage", stage)
	if err := e.packs.Delete(pack.ID()); err != nil {
		e.logger.Error("compensation failed, pack row may be orphaned", "pack", pack.ID(), "err", err)
	}
}

// finalContentIDs filters the combined id list down to members that
// actually exist: catalog-selected ids plus successfully reconciled
// track ids, preserving the caller's order.
func finalContentIDs(combined []string, outcome ReconciliationOutcome) []string {
	skipped := make(map[string]bool, len(outcome.Skipped))
	for _, s := range outcome.Skipped {
		skipped[MusicIDPrefix+s.ID] = true
	}

	final := make([]string, 0, len(combined))
	for _, id := range combined {
		if skipped[id] {
			continue
		}
		final = append(final, id)
	}
	return final
}

// trackToContent converts provider track metadata into a catalog record.
func trackToContent(track models.Track) *models.Content {
	summary := track.Artist
	if track.Album != "" {
		summary = fmt.Sprintf("%s • %s", track.Artist, track.Album)
	}

	content := models.NewContent(MusicIDPrefix+track.ID, models.KindKpop, track.Title, summary, musicTrackSizeMB)
	content.SetThumbnailURL(track.ThumbnailURL)
	return content
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PackEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
