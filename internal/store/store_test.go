package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	d, err := db.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return New(d)
}

func bulbasaur() *model.Pokemon {
	return &model.Pokemon{
		ID: 1, Name: "bulbasaur", Height: 7, Weight: 69,
		BaseExperience: 64, Order: 1, Generation: 1, IsDefault: true,
		SpeciesID: 1,
		Species: model.Species{
			ID: 1, Name: "bulbasaur", Color: "green", Habitat: "grassland",
			CaptureRate: 45, FlavorText: "A strange seed was planted on its back at birth.",
			Genus: "Seed Pokémon", EvolutionChainID: 1,
		},
		Types: []model.TypeSlot{{Slot: 1, Name: "grass"}, {Slot: 2, Name: "poison"}},
		Stats: []model.Stat{
			{Name: model.StatHP, Base: 45}, {Name: model.StatAttack, Base: 49},
			{Name: model.StatDefense, Base: 49}, {Name: model.StatSpecialAttack, Base: 65},
			{Name: model.StatSpecialDefense, Base: 65}, {Name: model.StatSpeed, Base: 45},
		},
		Abilities: []model.AbilitySlot{
			{Slot: 1, Name: "overgrow"}, {Slot: 3, Name: "chlorophyll", IsHidden: true},
		},
	}
}

func ivysaur() *model.Pokemon {
	return &model.Pokemon{
		ID: 2, Name: "ivysaur", Generation: 1, IsDefault: true, SpeciesID: 2,
		Species: model.Species{ID: 2, Name: "ivysaur", EvolutionChainID: 1},
		Types:   []model.TypeSlot{{Slot: 1, Name: "grass"}, {Slot: 2, Name: "poison"}},
		Stats:   []model.Stat{{Name: model.StatHP, Base: 60}},
	}
}

func charmander() *model.Pokemon {
	return &model.Pokemon{
		ID: 4, Name: "charmander", Generation: 1, IsDefault: true, SpeciesID: 4,
		Species: model.Species{ID: 4, Name: "charmander", EvolutionChainID: 2},
		Types:   []model.TypeSlot{{Slot: 1, Name: "fire"}},
		Stats:   []model.Stat{{Name: model.StatHP, Base: 39}},
	}
}

func seedFixture(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []*model.Pokemon{bulbasaur(), ivysaur(), charmander()} {
		if err := s.UpsertPokemon(ctx, p); err != nil {
			t.Fatalf("UpsertPokemon(%s): %v", p.Name, err)
		}
	}
}

func TestGet(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)
	ctx := context.Background()

	p, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "bulbasaur" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Species.Genus != "Seed Pokémon" {
		t.Errorf("genus = %q", p.Species.Genus)
	}
	if len(p.Types) != 2 || p.Types[0].Name != "grass" || p.Types[1].Name != "poison" {
		t.Errorf("types = %+v", p.Types)
	}
	if got := p.Stat(model.StatSpecialAttack); got != 65 {
		t.Errorf("special-attack = %d", got)
	}
	if p.StatTotal() != 318 {
		t.Errorf("stat total = %d", p.StatTotal())
	}
	if len(p.Abilities) != 2 || !p.Abilities[1].IsHidden {
		t.Errorf("abilities = %+v", p.Abilities)
	}
}

func TestGetNotFound(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)

	_, err := s.Get(context.Background(), 151)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := bulbasaur()
	if err := s.UpsertPokemon(ctx, p); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	p.Weight = 70
	p.Types = []model.TypeSlot{{Slot: 1, Name: "grass"}}
	if err := s.UpsertPokemon(ctx, p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Weight != 70 {
		t.Errorf("weight = %d after re-upsert", got.Weight)
	}
	if len(got.Types) != 1 {
		t.Errorf("types = %+v, want replaced single slot", got.Types)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d after double upsert", n)
	}
}

func TestListFilters(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"all", Filter{}, []int{1, 2, 4}},
		{"prefix", Filter{NamePrefix: "bulb"}, []int{1}},
		{"type", Filter{TypeName: "grass"}, []int{1, 2}},
		{"type fire", Filter{TypeName: "fire"}, []int{4}},
		{"generation", Filter{Generation: 1}, []int{1, 2, 4}},
		{"limit offset", Filter{Limit: 1, Offset: 1}, []int{2}},
		{"no match", Filter{NamePrefix: "mew"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i, sum := range got {
				if sum.ID != tt.want[i] {
					t.Errorf("result[%d].ID = %d, want %d", i, sum.ID, tt.want[i])
				}
			}
		})
	}
}

func TestListAttachesTypes(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)

	got, err := s.List(context.Background(), Filter{NamePrefix: "bulb"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results", len(got))
	}
	if len(got[0].Types) != 2 || got[0].Types[0] != "grass" {
		t.Errorf("types = %v", got[0].Types)
	}
}

func TestSearchPrefixBeforeSubstring(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)

	// "saur" is a substring of both, prefix of neither; "char" prefixes charmander
	got, err := s.Search(context.Background(), "saur", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results for saur", len(got))
	}

	got, err = s.Search(context.Background(), "char", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "charmander" {
		t.Errorf("char results = %+v", got)
	}

	got, err = s.Search(context.Background(), "", 10)
	if err != nil || got != nil {
		t.Errorf("empty query should return nothing, got %v, %v", got, err)
	}
}

func TestEvolutionChainOrdering(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)
	ctx := context.Background()

	// venusaur species so the join resolves
	if err := s.UpsertPokemon(ctx, &model.Pokemon{
		ID: 3, Name: "venusaur", Generation: 1, SpeciesID: 3,
		Species: model.Species{ID: 3, Name: "venusaur", EvolutionChainID: 1},
	}); err != nil {
		t.Fatal(err)
	}

	edges := []model.EvolutionEdge{
		{FromSpeciesID: 2, ToSpeciesID: 3, MinLevel: 32, Trigger: "level-up"},
		{FromSpeciesID: 1, ToSpeciesID: 2, MinLevel: 16, Trigger: "level-up"},
	}
	if err := s.ReplaceEvolutions(ctx, 1, edges); err != nil {
		t.Fatalf("ReplaceEvolutions: %v", err)
	}

	got, err := s.EvolutionChain(ctx, 1)
	if err != nil {
		t.Fatalf("EvolutionChain: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d edges", len(got))
	}
	if got[0].FromName != "bulbasaur" || got[0].MinLevel != 16 {
		t.Errorf("first edge = %+v, want bulbasaur at 16", got[0])
	}
	if got[1].ToName != "venusaur" {
		t.Errorf("second edge = %+v", got[1])
	}

	// replacing again does not duplicate
	if err := s.ReplaceEvolutions(ctx, 1, edges); err != nil {
		t.Fatal(err)
	}
	got, _ = s.EvolutionChain(ctx, 1)
	if len(got) != 2 {
		t.Errorf("chain has %d edges after second replace", len(got))
	}
}

func TestCounts(t *testing.T) {
	s := testStore(t)
	seedFixture(t, s)
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}

	byGen, err := s.CountByGeneration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(byGen) != 1 || byGen[0].Key != "1" || byGen[0].Count != 3 {
		t.Errorf("byGen = %+v", byGen)
	}

	byType, err := s.CountByType(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// grass and poison have 2 each, fire 1; largest first with name tiebreak
	if len(byType) != 3 || byType[0].Key != "grass" || byType[0].Count != 2 {
		t.Errorf("byType = %+v", byType)
	}

	names, err := s.TypeNames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "fire" {
		t.Errorf("type names = %v", names)
	}
}

func TestRandomAndNeighbors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Random(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Random on empty db: %v", err)
	}

	seedFixture(t, s)

	id, err := s.Random(ctx)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if id != 1 && id != 2 && id != 4 {
		t.Errorf("Random returned unknown id %d", id)
	}

	prev, next, err := s.Neighbors(ctx, 2)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if prev != 1 || next != 4 {
		t.Errorf("neighbors of 2 = (%d, %d)", prev, next)
	}

	prev, next, err = s.Neighbors(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 0 || next != 2 {
		t.Errorf("neighbors of 1 = (%d, %d)", prev, next)
	}
}

func TestSeedRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.LastSeedRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastSeedRun on empty db: %v", err)
	}

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	run := SeedRun{
		ID: "run-1", StartedAt: started, FinishedAt: started.Add(30 * time.Second),
		FromID: 1, ToID: 151, OKCount: 150, FailCount: 1, Notes: "dex hole at 999",
	}
	if err := s.RecordSeedRun(ctx, run); err != nil {
		t.Fatalf("RecordSeedRun: %v", err)
	}

	got, err := s.LastSeedRun(ctx)
	if err != nil {
		t.Fatalf("LastSeedRun: %v", err)
	}
	if got.ID != "run-1" || got.OKCount != 150 || got.FailCount != 1 {
		t.Errorf("round trip = %+v", got)
	}
}
