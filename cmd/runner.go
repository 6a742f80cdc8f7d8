package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/cache"
	"github.com/dhmun/mediapack/internal/catalog"
	"github.com/dhmun/mediapack/internal/repositories"
	"github.com/dhmun/mediapack/internal/services"
	"github.com/dhmun/mediapack/internal/shared"
	"github.com/dhmun/mediapack/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	music  services.MusicService
	logger *log.Logger
	output io.Writer

	db       *sql.DB
	cache    *cache.Cache
	contents *repositories.ContentRepository
	packs    *repositories.PackRepository
	counter  *repositories.Counter
	catalog  *catalog.Engine
	engine   *tasks.PackEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Music  services.MusicService
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		music:  opts.Music,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger and propagates it to wired engines.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.catalog != nil {
		r.catalog.SetLogger(logger)
	}
	if r.engine != nil {
		r.engine.SetLogger(logger)
	}
}

// ensureEngines lazily opens the database and wires the catalog and pack
// engines. Commands other than setup call this before doing any work, so
// the database connection is only opened when a command actually needs it.
func (r *Runner) ensureEngines() error {
	if r.engine != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	r.contents = repositories.NewContentRepository(db)
	r.packs = repositories.NewPackRepository(db)
	r.counter = repositories.NewCounter(db)

	r.cache = cache.New(cache.Config{
		TTL:           r.config.Cache.TTL(),
		SweepInterval: r.config.Cache.SweepInterval(),
		Capacity:      r.config.Cache.Capacity,
	})
	r.cache.Start()

	r.catalog = catalog.NewEngine(r.contents, r.cache, r.logger)
	r.engine = tasks.NewPackEngine(tasks.PackEngineOpts{
		Contents: r.contents,
		Packs:    r.packs,
		Counter:  r.counter,
		Music:    r.music,
		Catalog:  r.catalog,
		Logger:   r.logger,
	})

	return nil
}

// Close releases the database connection and stops the cache sweeper.
func (r *Runner) Close() {
	if r.cache != nil {
		r.cache.Stop()
	}
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, catalogCommand, packCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
