package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// A :memory: database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestContent(t *testing.T, id, title string, popularity float64) *models.Content {
	t.Helper()

	content := models.NewContent(id, models.KindMovie, title, "summary for "+title, 700)
	content.SetPopularity(popularity)
	return content
}

func TestContentRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		content := newTestContent(t, "mv_001", "Oldboy", 88.5)
		content.SetGenreIDs([]int{53, 18})

		if err := repo.Create(content); err != nil {
			t.Fatalf("failed to create content: %v", err)
		}

		retrieved, err := repo.Get("mv_001")
		if err != nil {
			t.Fatalf("failed to get content: %v", err)
		}

		if retrieved.Title() != "Oldboy" {
			t.Errorf("expected title Oldboy, got %s", retrieved.Title())
		}
		if got := retrieved.GenreIDs(); len(got) != 2 || got[0] != 18 || got[1] != 53 {
			t.Errorf("expected sorted genre ids [18 53], got %v", got)
		}
	})

	t.Run("UpsertUpdatesExistingRow", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		content := newTestContent(t, "mv_002", "Original Title", 10)
		if err := repo.Create(content); err != nil {
			t.Fatalf("failed to create content: %v", err)
		}

		updated := newTestContent(t, "mv_002", "Updated Title", 42)
		if err := repo.Upsert([]*models.Content{updated}); err != nil {
			t.Fatalf("failed to upsert content: %v", err)
		}

		retrieved, err := repo.Get("mv_002")
		if err != nil {
			t.Fatalf("failed to get content: %v", err)
		}
		if retrieved.Title() != "Updated Title" {
			t.Errorf("expected updated title, got %s", retrieved.Title())
		}
		if retrieved.Popularity() != 42 {
			t.Errorf("expected popularity 42, got %v", retrieved.Popularity())
		}

		// Upserting the same rows again must not fail.
		if err := repo.Upsert([]*models.Content{updated}); err != nil {
			t.Fatalf("repeated upsert failed: %v", err)
		}
	})

	t.Run("GetByIDsSkipsMissingAndInactive", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		for _, id := range []string{"mv_a", "mv_b", "mv_c"} {
			if err := repo.Create(newTestContent(t, id, "Title "+id, 1)); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}
		if err := repo.Deactivate("mv_c"); err != nil {
			t.Fatalf("failed to deactivate content: %v", err)
		}

		contents, err := repo.GetByIDs([]string{"mv_a", "mv_c", "mv_missing"})
		if err != nil {
			t.Fatalf("failed to get contents: %v", err)
		}
		if len(contents) != 1 || contents[0].ID() != "mv_a" {
			t.Errorf("expected only mv_a, got %d contents", len(contents))
		}
	})

	t.Run("QueryFiltersByKind", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		movie := newTestContent(t, "mv_010", "A Movie", 1)
		drama := models.NewContent("dr_010", models.KindDrama, "A Drama", "", 500)
		if err := repo.Create(movie); err != nil {
			t.Fatalf("failed to create content: %v", err)
		}
		if err := repo.Create(drama); err != nil {
			t.Fatalf("failed to create content: %v", err)
		}

		contents, total, err := repo.Query(ContentQuery{Kind: "drama", Limit: 10})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if total != 1 || len(contents) != 1 || contents[0].ID() != "dr_010" {
			t.Errorf("expected one drama, got total=%d len=%d", total, len(contents))
		}
	})

	t.Run("QuerySearchMatchesTitleAndSummary", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		byTitle := newTestContent(t, "mv_020", "Winter Sonata", 1)
		bySummary := models.NewContent("mv_021", models.KindMovie, "Unrelated", "a story of winter love", 700)
		miss := newTestContent(t, "mv_022", "Summer Days", 1)
		for _, c := range []*models.Content{byTitle, bySummary, miss} {
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}

		_, total, err := repo.Query(ContentQuery{Search: "winter", Limit: 10})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if total != 2 {
			t.Errorf("expected 2 matches for winter, got %d", total)
		}
	})

	t.Run("QueryGenreOverlap", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		action := newTestContent(t, "mv_030", "Action One", 1)
		action.SetGenreIDs([]int{28, 12})
		eleven := newTestContent(t, "mv_031", "Genre Eleven", 1)
		eleven.SetGenreIDs([]int{11})
		for _, c := range []*models.Content{action, eleven} {
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}

		// Genre 1 must not match the "11" entry via substring.
		contents, total, err := repo.Query(ContentQuery{GenreIDs: []int{1}, Limit: 10})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if total != 0 || len(contents) != 0 {
			t.Errorf("genre 1 should match nothing, got total=%d", total)
		}

		// Any overlap is a match.
		_, total, err = repo.Query(ContentQuery{GenreIDs: []int{12, 99}, Limit: 10})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if total != 1 {
			t.Errorf("expected 1 match for genre overlap, got %d", total)
		}
	})

	t.Run("QueryPaginationIsStableOnTies", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		createdAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
		for _, id := range []string{"mv_d", "mv_b", "mv_c", "mv_a"} {
			c := newTestContent(t, id, "Tied", 50)
			c.SetCreatedAt(createdAt)
			c.SetUpdatedAt(createdAt)
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}

		var seen []string
		for offset := 0; offset < 4; offset += 2 {
			contents, _, err := repo.Query(ContentQuery{SortBy: "popularity", Limit: 2, Offset: offset})
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			for _, c := range contents {
				seen = append(seen, c.ID())
			}
		}

		want := []string{"mv_a", "mv_b", "mv_c", "mv_d"}
		if len(seen) != len(want) {
			t.Fatalf("expected %d rows across pages, got %d", len(want), len(seen))
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Errorf("page order at %d: expected %s, got %s", i, want[i], seen[i])
			}
		}
	})

	t.Run("QuerySortByReleaseDateHandlesNull", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContentRepository(db)
		dated := newTestContent(t, "mv_040", "Dated", 1)
		release := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
		dated.SetReleaseDate(&release)
		undated := newTestContent(t, "mv_041", "Undated", 1)
		for _, c := range []*models.Content{undated, dated} {
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}

		contents, _, err := repo.Query(ContentQuery{SortBy: "release_date", SortOrder: "desc", Limit: 10})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(contents) != 2 || contents[0].ID() != "mv_040" {
			t.Errorf("expected dated content first, got %v", contents[0].ID())
		}
	})
}

func TestPackRepository(t *testing.T) {
	t.Run("CreateAndGetBySlug", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		contents := NewContentRepository(db)
		packs := NewPackRepository(db)

		for _, id := range []string{"mv_z", "mv_x", "mv_y"} {
			if err := contents.Create(newTestContent(t, id, "Title "+id, 1)); err != nil {
				t.Fatalf("failed to create content: %v", err)
			}
		}

		pack := models.NewPack(1, "abcdefghjk", "선물", "힘내세요")
		if err := packs.Create(pack); err != nil {
			t.Fatalf("failed to create pack: %v", err)
		}
		if pack.ID() == "" {
			t.Error("pack ID should be set after creation")
		}

		if err := packs.AddMembers(pack.ID(), []string{"mv_z", "mv_x", "mv_y"}); err != nil {
			t.Fatalf("failed to add members: %v", err)
		}

		detail, err := packs.GetBySlug("abcdefghjk")
		if err != nil {
			t.Fatalf("failed to get pack: %v", err)
		}
		if detail.Pack.Serial() != 1 || detail.Pack.Name() != "선물" {
			t.Errorf("unexpected pack fields: serial=%d name=%s", detail.Pack.Serial(), detail.Pack.Name())
		}
		if len(detail.Contents) != 3 {
			t.Fatalf("expected 3 members, got %d", len(detail.Contents))
		}
		// Members come back ordered by content id.
		if detail.Contents[0].ID() != "mv_x" || detail.Contents[2].ID() != "mv_z" {
			t.Errorf("expected members sorted by id, got %s..%s", detail.Contents[0].ID(), detail.Contents[2].ID())
		}
	})

	t.Run("GetBySlugNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		packs := NewPackRepository(db)
		_, err := packs.GetBySlug("nosuchslug")
		if !errors.Is(err, shared.ErrPackNotFound) {
			t.Errorf("expected ErrPackNotFound, got %v", err)
		}
	})

	t.Run("DeleteCascadesMembership", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		contents := NewContentRepository(db)
		packs := NewPackRepository(db)

		if err := contents.Create(newTestContent(t, "mv_m", "Member", 1)); err != nil {
			t.Fatalf("failed to create content: %v", err)
		}

		pack := models.NewPack(7, "bcdefghjkm", "Pack", "msg")
		if err := packs.Create(pack); err != nil {
			t.Fatalf("failed to create pack: %v", err)
		}
		if err := packs.AddMembers(pack.ID(), []string{"mv_m"}); err != nil {
			t.Fatalf("failed to add members: %v", err)
		}

		if err := packs.Delete(pack.ID()); err != nil {
			t.Fatalf("failed to delete pack: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM pack_contents WHERE pack_id = ?", pack.ID()).Scan(&count); err != nil {
			t.Fatalf("failed to count membership: %v", err)
		}
		if count != 0 {
			t.Errorf("expected membership rows to cascade, found %d", count)
		}

		if _, err := packs.GetBySlug("bcdefghjkm"); !errors.Is(err, shared.ErrPackNotFound) {
			t.Errorf("expected pack gone after delete, got %v", err)
		}
	})

	t.Run("DuplicateSlugIsUniqueViolation", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		packs := NewPackRepository(db)
		first := models.NewPack(1, "cdefghjkmn", "First", "hello")
		if err := packs.Create(first); err != nil {
			t.Fatalf("failed to create pack: %v", err)
		}

		second := models.NewPack(2, "cdefghjkmn", "Second", "hello")
		err := packs.Create(second)
		if err == nil {
			t.Fatal("expected error on duplicate slug")
		}
		if !IsUniqueViolation(err, "packs.share_slug") {
			t.Errorf("expected slug unique violation, got %v", err)
		}
	})

	t.Run("SlugExists", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		packs := NewPackRepository(db)
		pack := models.NewPack(3, "defghjkmnp", "Pack", "hello")
		if err := packs.Create(pack); err != nil {
			t.Fatalf("failed to create pack: %v", err)
		}

		exists, err := packs.SlugExists("defghjkmnp")
		if err != nil {
			t.Fatalf("failed to check slug: %v", err)
		}
		if !exists {
			t.Error("expected slug to exist")
		}

		exists, err = packs.SlugExists("zzzzzzzzzz")
		if err != nil {
			t.Fatalf("failed to check slug: %v", err)
		}
		if exists {
			t.Error("expected slug to be free")
		}
	})
}

func TestNextSequence(t *testing.T) {
	t.Run("IncrementsMonotonically", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		first, err := NextSequence(db, "pack_serial")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		second, err := NextSequence(db, "pack_serial")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}

		if first != 1 || second != 2 {
			t.Errorf("expected 1 then 2, got %d then %d", first, second)
		}
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NextSequence(db, "pack_serial"); err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		other, err := NextSequence(db, "other_counter")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if other != 1 {
			t.Errorf("expected fresh counter to start at 1, got %d", other)
		}
	})

	t.Run("CounterAdapter", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		counter := NewCounter(db)
		if v, err := counter.Increment("pack_serial"); err != nil || v != 1 {
			t.Fatalf("expected increment to 1, got %d (%v)", v, err)
		}
		if v, err := counter.Value("pack_serial"); err != nil || v != 1 {
			t.Fatalf("expected value 1, got %d (%v)", v, err)
		}
	})
}
