// package catalog implements the cached catalog query engine.
//
// The engine answers filtered, sorted, paginated content queries,
// memoizing each result in the TTL cache under a canonical key so
// logically identical queries share one backing-store round trip.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhmun/mediapack/internal/cache"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/repositories"
	"github.com/dhmun/mediapack/internal/shared"
)

// Pagination bounds. Requested limits are clamped into [1, MaxLimit].
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Sort fields accepted by [Params.SortBy].
const (
	SortPopularity  = "popularity"
	SortVoteAverage = "vote_average"
	SortReleaseDate = "release_date"
	SortTitle       = "title"
)

// Params describes a catalog query. Zero values mean "no filter" for
// predicates and "use defaults" for sorting and pagination; an empty
// search string is no search filter, not "match nothing".
type Params struct {
	Kind      models.Kind
	Search    string
	GenreIDs  []int
	SortBy    string
	SortOrder string // asc | desc
	Page      int
	Limit     int
}

// normalized returns a copy with defaults applied and bounds clamped, so
// equivalent queries map to one canonical parameter set.
func (p Params) normalized() Params {
	p.Search = strings.TrimSpace(p.Search)

	switch p.SortBy {
	case SortVoteAverage, SortReleaseDate, SortTitle:
	default:
		p.SortBy = SortPopularity
	}

	if !strings.EqualFold(p.SortOrder, "asc") {
		p.SortOrder = "desc"
	} else {
		p.SortOrder = "asc"
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	sorted := make([]int, len(p.GenreIDs))
	copy(sorted, p.GenreIDs)
	sort.Ints(sorted)
	p.GenreIDs = sorted

	return p
}

// CacheKey builds the canonical cache key: parameter names sorted
// alphabetically, joined as name=value pairs. Two logically identical
// queries always produce the same key regardless of construction order.
func (p Params) CacheKey() string {
	p = p.normalized()

	pairs := []string{
		fmt.Sprintf("genres=%s", models.EncodeGenreIDs(p.GenreIDs)),
		fmt.Sprintf("kind=%s", p.Kind),
		fmt.Sprintf("limit=%d", p.Limit),
		fmt.Sprintf("order=%s", p.SortOrder),
		fmt.Sprintf("page=%d", p.Page),
		fmt.Sprintf("search=%s", p.Search),
		fmt.Sprintf("sort=%s", p.SortBy),
	}
	sort.Strings(pairs)

	return "contents|" + strings.Join(pairs, "&")
}

// Result is a single page of catalog contents.
type Result struct {
	Contents []*models.Content
	Total    int
	HasMore  bool
}

// Store is the backing catalog store consumed by the engine.
// [repositories.ContentRepository] implements it.
type Store interface {
	Query(q repositories.ContentQuery) ([]*models.Content, int, error)
}

// Engine answers catalog queries through the TTL cache.
type Engine struct {
	store  Store
	cache  *cache.Cache
	logger *log.Logger
}

// NewEngine creates an Engine over the given store and cache.
func NewEngine(store Store, c *cache.Cache, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{store: store, cache: c, logger: logger}
}

// SetLogger replaces the engine's logger. Callers that redirect logging
// after construction, such as the TUI, use this to move engine output too.
func (e *Engine) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Query returns the page of contents matching params, consulting the
// cache first. Backing-store errors surface as
// [shared.ErrCatalogUnavailable] and are never cached.
func (e *Engine) Query(params Params) (*Result, error) {
	params = params.normalized()
	key := params.CacheKey()

	if entry, ok := e.cache.Get(key); ok {
		if result, ok := entry.(*Result); ok {
			e.logger.Debug("catalog cache hit", "key", key)
			return result, nil
		}
	}

	contents, total, err := e.store.Query(repositories.ContentQuery{
		Kind:      string(params.Kind),
		Search:    params.Search,
		GenreIDs:  params.GenreIDs,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Offset:    (params.Page - 1) * params.Limit,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}

	result := &Result{
		Contents: contents,
		Total:    total,
		HasMore:  params.Page*params.Limit < total,
	}

	e.cache.Set(key, result)
	e.logger.Debug("catalog cache fill", "key", key, "total", total)

	return result, nil
}

// Popular returns the most popular contents across all kinds.
func (e *Engine) Popular(limit int) (*Result, error) {
	return e.Query(Params{SortBy: SortPopularity, SortOrder: "desc", Page: 1, Limit: limit})
}

// ByGenre returns contents overlapping any of the given genre ids.
func (e *Engine) ByGenre(genreIDs []int, page, limit int) (*Result, error) {
	return e.Query(Params{GenreIDs: genreIDs, Page: page, Limit: limit})
}

// Search returns contents whose title or summary contains term.
func (e *Engine) Search(term string, page, limit int) (*Result, error) {
	return e.Query(Params{Search: term, Page: page, Limit: limit})
}

// Invalidate drops every cached query result. Called after writes that
// change catalog contents, e.g. pack creation absorbing new tracks.
func (e *Engine) Invalidate() {
	e.cache.Clear()
}
