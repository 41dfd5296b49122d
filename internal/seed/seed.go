// Package seed fills the database from PokéAPI. Individual dex entries
// that fail are collected and reported; only cancellation aborts a run.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pidex/pidex/internal/model"
	"github.com/pidex/pidex/internal/pokeapi"
	"github.com/pidex/pidex/internal/store"
)

// API is the PokéAPI surface the seeder needs.
type API interface {
	Pokemon(ctx context.Context, id int) (*model.Pokemon, error)
	Species(ctx context.Context, id int) (*model.Species, int, error)
	EvolutionChain(ctx context.Context, id int) ([]model.EvolutionEdge, error)
	SpritePNG(ctx context.Context, id int) ([]byte, error)
}

// Writer is the store surface the seeder needs.
type Writer interface {
	UpsertPokemon(ctx context.Context, p *model.Pokemon) error
	ReplaceEvolutions(ctx context.Context, chainID int, edges []model.EvolutionEdge) error
	RecordSeedRun(ctx context.Context, run store.SeedRun) error
}

// SpriteSink stores fetched sprite PNGs.
type SpriteSink interface {
	Has(id int) bool
	Put(id int, data []byte) error
}

// Progress is reported after every dex entry.
type Progress struct {
	CurrentID int
	Done      int
	Failed    int
	Total     int
}

// Failure records one dex entry that could not be seeded.
type Failure struct {
	ID  int
	Err error
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	OK       int
	Failures []Failure
}

// Options tunes a run.
type Options struct {
	Sprites  bool // also fetch sprite PNGs to disk
	Progress func(Progress)
}

// Seeder orchestrates fetch → upsert for a dex id range.
type Seeder struct {
	api     API
	writer  Writer
	sprites SpriteSink
	log     *slog.Logger
}

// New creates a Seeder. sprites may be nil when Options.Sprites is false.
func New(api API, writer Writer, sprites SpriteSink, log *slog.Logger) *Seeder {
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{api: api, writer: writer, sprites: sprites, log: log}
}

// Run seeds dex ids from..to inclusive. The returned Result covers
// whatever completed, even when err is a cancellation.
func (s *Seeder) Run(ctx context.Context, from, to int, opts Options) (Result, error) {
	if from < 1 || to < from {
		return Result{}, fmt.Errorf("invalid dex range %d..%d", from, to)
	}

	result := Result{RunID: uuid.NewString()}
	started := time.Now()
	total := to - from + 1
	seenChains := make(map[int]bool)

	var runErr error
	for id := from; id <= to; id++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if err := s.seedOne(ctx, id, seenChains, opts.Sprites); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				runErr = err
				break
			}
			result.Failures = append(result.Failures, Failure{ID: id, Err: err})
			s.log.Warn("seed entry failed", "id", id, "error", err)
		} else {
			result.OK++
		}

		if opts.Progress != nil {
			opts.Progress(Progress{
				CurrentID: id,
				Done:      result.OK,
				Failed:    len(result.Failures),
				Total:     total,
			})
		}
	}

	run := store.SeedRun{
		ID:         result.RunID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		FromID:     from,
		ToID:       to,
		OKCount:    result.OK,
		FailCount:  len(result.Failures),
	}
	if runErr != nil {
		run.Notes = "aborted: " + runErr.Error()
	}
	// record with a fresh context so a cancelled run is still bookkept
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writer.RecordSeedRun(recordCtx, run); err != nil {
		s.log.Error("recording seed run", "error", err)
	}

	s.log.Info("seed run finished",
		"run_id", result.RunID, "ok", result.OK, "failed", len(result.Failures))
	return result, runErr
}

func (s *Seeder) seedOne(ctx context.Context, id int, seenChains map[int]bool, sprites bool) error {
	p, err := s.api.Pokemon(ctx, id)
	if err != nil {
		return err
	}

	sp, generation, err := s.api.Species(ctx, p.SpeciesID)
	if err != nil {
		return fmt.Errorf("species for %d: %w", id, err)
	}
	p.Species = *sp
	p.Generation = generation

	if err := s.writer.UpsertPokemon(ctx, p); err != nil {
		return err
	}

	if chainID := sp.EvolutionChainID; chainID > 0 && !seenChains[chainID] {
		edges, err := s.api.EvolutionChain(ctx, chainID)
		if err != nil {
			// the entry itself is stored; a missing chain only degrades
			// the evolution tab
			s.log.Warn("evolution chain fetch failed", "chain_id", chainID, "error", err)
		} else if err := s.writer.ReplaceEvolutions(ctx, chainID, edges); err != nil {
			return err
		}
		seenChains[chainID] = true
	}

	if sprites && s.sprites != nil && !s.sprites.Has(id) {
		data, err := s.api.SpritePNG(ctx, id)
		if err != nil {
			if errors.Is(err, pokeapi.ErrNotFound) {
				return nil // spriteless entries exist
			}
			return fmt.Errorf("sprite for %d: %w", id, err)
		}
		if err := s.sprites.Put(id, data); err != nil {
			return err
		}
	}
	return nil
}
