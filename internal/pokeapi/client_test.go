package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/model"
)

const pokemonJSON = `{
	"id": 1, "name": "bulbasaur", "height": 7, "weight": 69,
	"base_experience": 64, "order": 1, "is_default": true,
	"species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"},
	"types": [
		{"slot": 1, "type": {"name": "grass"}},
		{"slot": 2, "type": {"name": "poison"}}
	],
	"stats": [
		{"base_stat": 45, "effort": 0, "stat": {"name": "hp"}},
		{"base_stat": 65, "effort": 1, "stat": {"name": "special-attack"}}
	],
	"abilities": [
		{"slot": 1, "is_hidden": false, "ability": {"name": "overgrow"}},
		{"slot": 3, "is_hidden": true, "ability": {"name": "chlorophyll"}}
	]
}`

const speciesJSON = `{
	"id": 1, "name": "bulbasaur",
	"color": {"name": "green"}, "habitat": {"name": "grassland"},
	"is_legendary": false, "is_mythical": false, "capture_rate": 45,
	"generation": {"name": "generation-i"},
	"evolution_chain": {"url": "https://pokeapi.co/api/v2/evolution-chain/1/"},
	"flavor_text_entries": [
		{"flavor_text": "Ein seltsamer\nSame wurde...", "language": {"name": "de"}},
		{"flavor_text": "A strange seed was\nplanted on its\fback at birth.", "language": {"name": "en"}}
	],
	"genera": [{"genus": "Seed Pokémon", "language": {"name": "en"}}]
}`

const chainJSON = `{
	"id": 1,
	"chain": {
		"species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"},
		"evolution_details": [],
		"evolves_to": [{
			"species": {"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon-species/2/"},
			"evolution_details": [{"min_level": 16, "trigger": {"name": "level-up"}, "item": null}],
			"evolves_to": [{
				"species": {"name": "venusaur", "url": "https://pokeapi.co/api/v2/pokemon-species/3/"},
				"evolution_details": [{"min_level": 32, "trigger": {"name": "level-up"}, "item": null}],
				"evolves_to": []
			}]
		}]
	}
}`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.PokeAPIConfig{
		BaseURL:           srv.URL,
		SpriteBaseURL:     srv.URL + "/sprites",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}
	c := New(cfg, srv.Client(), clockwork.NewRealClock())
	c.backoff = 0 // no waiting between retry attempts in tests
	return c
}

func TestPokemon(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pokemon/1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(pokemonJSON))
	}))

	p, err := c.Pokemon(context.Background(), 1)
	if err != nil {
		t.Fatalf("Pokemon: %v", err)
	}
	if p.Name != "bulbasaur" || p.SpeciesID != 1 {
		t.Errorf("pokemon = %+v", p)
	}
	if len(p.Types) != 2 || p.Types[1].Name != "poison" {
		t.Errorf("types = %+v", p.Types)
	}
	if p.Stat(model.StatSpecialAttack) != 65 {
		t.Errorf("special-attack = %d", p.Stat(model.StatSpecialAttack))
	}
	if len(p.Abilities) != 2 || !p.Abilities[1].IsHidden {
		t.Errorf("abilities = %+v", p.Abilities)
	}
}

func TestSpecies(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speciesJSON))
	}))

	sp, generation, err := c.Species(context.Background(), 1)
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	if generation != 1 {
		t.Errorf("generation = %d", generation)
	}
	if sp.EvolutionChainID != 1 {
		t.Errorf("chain id = %d", sp.EvolutionChainID)
	}
	if sp.FlavorText != "A strange seed was planted on its back at birth." {
		t.Errorf("flavor text = %q", sp.FlavorText)
	}
	if sp.Genus != "Seed Pokémon" {
		t.Errorf("genus = %q", sp.Genus)
	}
	if sp.Habitat != "grassland" {
		t.Errorf("habitat = %q", sp.Habitat)
	}
}

func TestEvolutionChainFlattening(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chainJSON))
	}))

	edges, err := c.EvolutionChain(context.Background(), 1)
	if err != nil {
		t.Fatalf("EvolutionChain: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges", len(edges))
	}
	if edges[0].FromName != "bulbasaur" || edges[0].ToName != "ivysaur" || edges[0].MinLevel != 16 {
		t.Errorf("edge 0 = %+v", edges[0])
	}
	if edges[1].FromSpeciesID != 2 || edges[1].ToSpeciesID != 3 || edges[1].MinLevel != 32 {
		t.Errorf("edge 1 = %+v", edges[1])
	}
}

func TestNotFoundNoRetry(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))

	_, err := c.Pokemon(context.Background(), 10262)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(pokemonJSON))
	}))

	p, err := c.Pokemon(context.Background(), 1)
	if err != nil {
		t.Fatalf("Pokemon after retries: %v", err)
	}
	if p.Name != "bulbasaur" {
		t.Errorf("name = %q", p.Name)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Pokemon(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != maxAttempts {
		t.Errorf("expected %d calls, got %d", maxAttempts, calls)
	}
}

func TestSpritePNG(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sprites/25.png" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("\x89PNG fake"))
	}))

	data, err := c.SpritePNG(context.Background(), 25)
	if err != nil {
		t.Fatalf("SpritePNG: %v", err)
	}
	if string(data) != "\x89PNG fake" {
		t.Errorf("sprite bytes = %q", data)
	}
}

func TestLimiterEnforcesGap(t *testing.T) {
	fc := clockwork.NewFakeClock()
	lim := newLimiter(4, fc) // 250ms gap

	ctx := context.Background()

	// first request passes immediately
	if err := lim.wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// second request must block until the clock advances past the gap
	done := make(chan error, 1)
	go func() { done <- lim.wait(ctx) }()

	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	select {
	case <-done:
		t.Fatal("second wait returned before the gap elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(250 * time.Millisecond)
	if err := <-done; err != nil {
		t.Fatalf("second wait: %v", err)
	}
}

func TestLimiterRespectsCancellation(t *testing.T) {
	fc := clockwork.NewFakeClock()
	lim := newLimiter(1, fc)

	ctx, cancel := context.WithCancel(context.Background())
	if err := lim.wait(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- lim.wait(ctx) }()
	if err := fc.BlockUntilContext(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"https://pokeapi.co/api/v2/pokemon-species/1/", 1},
		{"https://pokeapi.co/api/v2/evolution-chain/67", 67},
		{"", 0},
		{"https://pokeapi.co/api/v2/pokemon-species/abc/", 0},
	}
	for _, tt := range tests {
		if got := idFromURL(tt.url); got != tt.want {
			t.Errorf("idFromURL(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestGenerationNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"generation-i", 1},
		{"generation-iv", 4},
		{"generation-ix", 9},
		{"bogus", 0},
	}
	for _, tt := range tests {
		if got := generationNumber(tt.name); got != tt.want {
			t.Errorf("generationNumber(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
