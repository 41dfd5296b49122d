package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pidex/pidex/internal/model"
	"github.com/pidex/pidex/internal/pokeapi"
	"github.com/pidex/pidex/internal/store"
)

type fakeAPI struct {
	failPokemon map[int]error
	chainCalls  int
	spriteCalls int
}

func (f *fakeAPI) Pokemon(ctx context.Context, id int) (*model.Pokemon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failPokemon[id]; ok {
		return nil, err
	}
	return &model.Pokemon{ID: id, Name: fmt.Sprintf("mon-%d", id), SpeciesID: id}, nil
}

func (f *fakeAPI) Species(ctx context.Context, id int) (*model.Species, int, error) {
	// two species per chain so chain dedup is observable
	return &model.Species{ID: id, Name: fmt.Sprintf("mon-%d", id), EvolutionChainID: (id + 1) / 2}, 1, nil
}

func (f *fakeAPI) EvolutionChain(ctx context.Context, id int) ([]model.EvolutionEdge, error) {
	f.chainCalls++
	return []model.EvolutionEdge{{ChainID: id, FromSpeciesID: id*2 - 1, ToSpeciesID: id * 2}}, nil
}

func (f *fakeAPI) SpritePNG(ctx context.Context, id int) ([]byte, error) {
	f.spriteCalls++
	if id == 3 {
		return nil, pokeapi.ErrNotFound
	}
	return []byte("png"), nil
}

type fakeWriter struct {
	upserts []int
	chains  []int
	runs    []store.SeedRun
}

func (f *fakeWriter) UpsertPokemon(ctx context.Context, p *model.Pokemon) error {
	f.upserts = append(f.upserts, p.ID)
	return nil
}

func (f *fakeWriter) ReplaceEvolutions(ctx context.Context, chainID int, edges []model.EvolutionEdge) error {
	f.chains = append(f.chains, chainID)
	return nil
}

func (f *fakeWriter) RecordSeedRun(ctx context.Context, run store.SeedRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeSprites struct {
	stored map[int][]byte
}

func newFakeSprites() *fakeSprites { return &fakeSprites{stored: make(map[int][]byte)} }

func (f *fakeSprites) Has(id int) bool { _, ok := f.stored[id]; return ok }

func (f *fakeSprites) Put(id int, data []byte) error {
	f.stored[id] = data
	return nil
}

func TestRunSeedsRange(t *testing.T) {
	api := &fakeAPI{}
	w := &fakeWriter{}

	s := New(api, w, nil, nil)
	result, err := s.Run(context.Background(), 1, 4, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.OK != 4 || len(result.Failures) != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(w.upserts) != 4 {
		t.Errorf("upserts = %v", w.upserts)
	}
	if result.RunID == "" {
		t.Error("run id missing")
	}
	if len(w.runs) != 1 || w.runs[0].OKCount != 4 {
		t.Errorf("recorded runs = %+v", w.runs)
	}
}

func TestRunCollectsFailuresAndContinues(t *testing.T) {
	api := &fakeAPI{failPokemon: map[int]error{2: pokeapi.ErrNotFound}}
	w := &fakeWriter{}

	var progress []Progress
	s := New(api, w, nil, nil)
	result, err := s.Run(context.Background(), 1, 3, Options{
		Progress: func(p Progress) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.OK != 2 {
		t.Errorf("ok = %d", result.OK)
	}
	if len(result.Failures) != 1 || result.Failures[0].ID != 2 {
		t.Errorf("failures = %+v", result.Failures)
	}
	if !errors.Is(result.Failures[0].Err, pokeapi.ErrNotFound) {
		t.Errorf("failure err = %v", result.Failures[0].Err)
	}

	// progress is monotone and covers every entry
	if len(progress) != 3 {
		t.Fatalf("progress reports = %d", len(progress))
	}
	for i := 1; i < len(progress); i++ {
		if progress[i].Done < progress[i-1].Done || progress[i].CurrentID <= progress[i-1].CurrentID {
			t.Errorf("progress not monotone: %+v", progress)
		}
	}
	if last := progress[len(progress)-1]; last.Done != 2 || last.Failed != 1 || last.Total != 3 {
		t.Errorf("final progress = %+v", last)
	}
}

func TestRunDedupesEvolutionChains(t *testing.T) {
	api := &fakeAPI{}
	w := &fakeWriter{}

	s := New(api, w, nil, nil)
	// ids 1..4 map to chains 1,1,2,2
	if _, err := s.Run(context.Background(), 1, 4, Options{}); err != nil {
		t.Fatal(err)
	}
	if api.chainCalls != 2 {
		t.Errorf("chain fetches = %d, want 2", api.chainCalls)
	}
	if len(w.chains) != 2 {
		t.Errorf("chain writes = %v", w.chains)
	}
}

func TestRunFetchesSprites(t *testing.T) {
	api := &fakeAPI{}
	w := &fakeWriter{}
	sprites := newFakeSprites()
	sprites.stored[1] = []byte("already") // skip existing

	s := New(api, w, sprites, nil)
	result, err := s.Run(context.Background(), 1, 3, Options{Sprites: true})
	if err != nil {
		t.Fatal(err)
	}
	// id 1 already on disk, id 3 has no sprite upstream (tolerated)
	if api.spriteCalls != 2 {
		t.Errorf("sprite fetches = %d, want 2", api.spriteCalls)
	}
	if !sprites.Has(2) {
		t.Error("sprite 2 should be stored")
	}
	if sprites.Has(3) {
		t.Error("missing upstream sprite should not be stored")
	}
	if result.OK != 3 {
		t.Errorf("a spriteless entry should still count as seeded, ok=%d", result.OK)
	}
}

func TestRunCancellation(t *testing.T) {
	api := &fakeAPI{}
	w := &fakeWriter{}

	ctx, cancel := context.WithCancel(context.Background())
	var cancelled bool
	s := New(api, w, nil, nil)
	result, err := s.Run(ctx, 1, 100, Options{
		Progress: func(p Progress) {
			if p.Done >= 3 && !cancelled {
				cancelled = true
				cancel()
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.OK < 3 || result.OK > 4 {
		t.Errorf("partial ok = %d", result.OK)
	}

	// the aborted run is still recorded
	if len(w.runs) != 1 || w.runs[0].Notes == "" {
		t.Errorf("aborted run record = %+v", w.runs)
	}
}

func TestRunRejectsBadRange(t *testing.T) {
	s := New(&fakeAPI{}, &fakeWriter{}, nil, nil)
	if _, err := s.Run(context.Background(), 0, 5, Options{}); err == nil {
		t.Error("from=0 should be rejected")
	}
	if _, err := s.Run(context.Background(), 5, 4, Options{}); err == nil {
		t.Error("inverted range should be rejected")
	}
}
