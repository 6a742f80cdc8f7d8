package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dhmun/mediapack/internal/cache"
	"github.com/dhmun/mediapack/internal/catalog"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/repositories"
	"github.com/dhmun/mediapack/internal/shared"
	"github.com/dhmun/mediapack/internal/tasks"
)

// setupTestServer wires real engines over an in-memory database behind the router.
func setupTestServer(t *testing.T) (*BasicRouter, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	contents := repositories.NewContentRepository(db)
	packs := repositories.NewPackRepository(db)
	counter := repositories.NewCounter(db)

	c := cache.New(cache.Config{TTL: time.Minute, SweepInterval: time.Minute, Capacity: 100})
	catalogEngine := catalog.NewEngine(contents, c, logger)
	packEngine := tasks.NewPackEngine(tasks.PackEngineOpts{
		Contents: contents,
		Packs:    packs,
		Counter:  counter,
		Catalog:  catalogEngine,
		Logger:   logger,
	})

	router := NewBasicRouter()
	router.Use(Recover(logger), RequestLogger(logger))
	router.Handler(NewCatalogHandler(catalogEngine, logger))
	router.Handler(NewPackHandler(packEngine, logger))
	router.Handler(&HealthHandler{})

	return router, db
}

func seedContents(t *testing.T, db *sql.DB, n int) {
	t.Helper()
	repo := repositories.NewContentRepository(db)
	for i := 0; i < n; i++ {
		content := models.NewContent(fmt.Sprintf("mv_%03d", i), models.KindMovie, fmt.Sprintf("Title %d", i), "", 700)
		content.SetPopularity(float64(i))
		if err := repo.Create(content); err != nil {
			t.Fatalf("failed to seed content: %v", err)
		}
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("ListContents", func(t *testing.T) {
		router, db := setupTestServer(t)
		seedContents(t, db, 5)

		req := httptest.NewRequest(http.MethodGet, "/api/contents?limit=3", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["total"].(float64) != 5 {
			t.Errorf("expected total 5, got %v", body["total"])
		}
		if contents := body["contents"].([]any); len(contents) != 3 {
			t.Errorf("expected 3 contents on page, got %d", len(contents))
		}
		if body["has_more"] != true {
			t.Error("expected has_more true")
		}
	})

	t.Run("KindFilter", func(t *testing.T) {
		router, db := setupTestServer(t)
		seedContents(t, db, 2)

		req := httptest.NewRequest(http.MethodGet, "/api/contents?kind=drama", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		body := decodeBody(t, rec)
		if body["total"].(float64) != 0 {
			t.Errorf("expected no dramas, got %v", body["total"])
		}
	})

	t.Run("Popular", func(t *testing.T) {
		router, db := setupTestServer(t)
		seedContents(t, db, 5)

		req := httptest.NewRequest(http.MethodGet, "/api/contents/popular?limit=2", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		contents := body["contents"].([]any)
		if len(contents) != 2 {
			t.Fatalf("expected 2 contents, got %d", len(contents))
		}
		first := contents[0].(map[string]any)
		if first["id"] != "mv_004" {
			t.Errorf("expected most popular first, got %v", first["id"])
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		router, _ := setupTestServer(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/contents", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestPackEndpoints(t *testing.T) {
	createBody := func(ids ...string) *bytes.Buffer {
		payload, _ := json.Marshal(map[string]any{
			"name":                 "선물",
			"message":              "힘내세요",
			"selected_content_ids": ids,
		})
		return bytes.NewBuffer(payload)
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		router, db := setupTestServer(t)
		seedContents(t, db, 3)

		req := httptest.NewRequest(http.MethodPost, "/api/packs", createBody("mv_000", "mv_001", "mv_002"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		slug, _ := body["share_slug"].(string)
		if len(slug) != shared.SlugLength {
			t.Fatalf("expected %d-char slug, got %q", shared.SlugLength, slug)
		}
		if body["serial"].(float64) != 1 {
			t.Errorf("expected serial 1, got %v", body["serial"])
		}

		req = httptest.NewRequest(http.MethodGet, "/api/packs/"+slug, nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body = decodeBody(t, rec)
		if body["name"] != "선물" {
			t.Errorf("unexpected pack name: %v", body["name"])
		}
		if contents := body["contents"].([]any); len(contents) != 3 {
			t.Errorf("expected 3 members, got %d", len(contents))
		}
	})

	t.Run("CreateInvalidInput", func(t *testing.T) {
		router, db := setupTestServer(t)
		seedContents(t, db, 2)

		req := httptest.NewRequest(http.MethodPost, "/api/packs", createBody("mv_000", "mv_001"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for under-minimum pack, got %d", rec.Code)
		}
	})

	t.Run("CreateMalformedJSON", func(t *testing.T) {
		router, _ := setupTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/packs", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for malformed body, got %d", rec.Code)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		router, _ := setupTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/packs/zzzzzzzzzz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}
