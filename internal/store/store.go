// Package store is the query layer over the SQLite database: read paths
// for the UI, write paths for the seeder.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pidex/pidex/internal/db"
	"github.com/pidex/pidex/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store executes queries against an opened database.
type Store struct {
	db *db.DB
}

// New creates a Store over the given database.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	NamePrefix string
	TypeName   string
	Generation int
	Limit      int
	Offset     int
}

// List returns summaries ordered by dex id, honoring the filter.
func (s *Store) List(ctx context.Context, f Filter) ([]model.Summary, error) {
	var (
		conds []string
		args  []any
	)
	if f.NamePrefix != "" {
		conds = append(conds, "p.name LIKE ?")
		args = append(args, f.NamePrefix+"%")
	}
	if f.TypeName != "" {
		conds = append(conds, "p.id IN (SELECT pt.pokemon_id FROM pokemon_types pt JOIN types t ON t.id = pt.type_id WHERE t.name = ?)")
		args = append(args, f.TypeName)
	}
	if f.Generation > 0 {
		conds = append(conds, "p.generation = ?")
		args = append(args, f.Generation)
	}

	query := "SELECT p.id, p.name, p.generation FROM pokemon p"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pokemon: %w", err)
	}
	defer rows.Close()

	var summaries []model.Summary
	for rows.Next() {
		var sum model.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Generation); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}

	if err := s.attachTypes(ctx, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// attachTypes fills Types for a page of summaries with one query.
func (s *Store) attachTypes(ctx context.Context, summaries []model.Summary) error {
	if len(summaries) == 0 {
		return nil
	}

	placeholders := make([]string, len(summaries))
	args := make([]any, len(summaries))
	index := make(map[int]int, len(summaries))
	for i, sum := range summaries {
		placeholders[i] = "?"
		args[i] = sum.ID
		index[sum.ID] = i
	}

	query := fmt.Sprintf(
		"SELECT pt.pokemon_id, t.name FROM pokemon_types pt JOIN types t ON t.id = pt.type_id WHERE pt.pokemon_id IN (%s) ORDER BY pt.pokemon_id, pt.slot",
		strings.Join(placeholders, ","))

	rows, err := s.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("loading types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scanning type: %w", err)
		}
		if i, ok := index[id]; ok {
			summaries[i].Types = append(summaries[i].Types, name)
		}
	}
	return rows.Err()
}

// Get loads the full detail record for one dex id.
func (s *Store) Get(ctx context.Context, id int) (*model.Pokemon, error) {
	p := &model.Pokemon{}
	err := s.db.SQL().QueryRowContext(ctx, `
		SELECT p.id, p.name, p.height, p.weight, p.base_experience, p.order_num,
		       p.generation, p.is_default, p.species_id,
		       sp.id, sp.name, sp.color, sp.habitat, sp.is_legendary, sp.is_mythical,
		       sp.capture_rate, sp.flavor_text, sp.genus, sp.evolution_chain_id
		FROM pokemon p
		JOIN species sp ON sp.id = p.species_id
		WHERE p.id = ?`, id).Scan(
		&p.ID, &p.Name, &p.Height, &p.Weight, &p.BaseExperience, &p.Order,
		&p.Generation, &p.IsDefault, &p.SpeciesID,
		&p.Species.ID, &p.Species.Name, &p.Species.Color, &p.Species.Habitat,
		&p.Species.IsLegendary, &p.Species.IsMythical, &p.Species.CaptureRate,
		&p.Species.FlavorText, &p.Species.Genus, &p.Species.EvolutionChainID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pokemon %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("loading pokemon %d: %w", id, err)
	}

	if err := s.loadTypeSlots(ctx, p); err != nil {
		return nil, err
	}
	if err := s.loadStats(ctx, p); err != nil {
		return nil, err
	}
	if err := s.loadAbilities(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) loadTypeSlots(ctx context.Context, p *model.Pokemon) error {
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT pt.slot, t.name FROM pokemon_types pt
		JOIN types t ON t.id = pt.type_id
		WHERE pt.pokemon_id = ? ORDER BY pt.slot`, p.ID)
	if err != nil {
		return fmt.Errorf("loading type slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts model.TypeSlot
		if err := rows.Scan(&ts.Slot, &ts.Name); err != nil {
			return fmt.Errorf("scanning type slot: %w", err)
		}
		p.Types = append(p.Types, ts)
	}
	return rows.Err()
}

func (s *Store) loadStats(ctx context.Context, p *model.Pokemon) error {
	rows, err := s.db.SQL().QueryContext(ctx,
		"SELECT name, base_value, effort FROM stats WHERE pokemon_id = ?", p.ID)
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}
	defer rows.Close()

	byName := make(map[model.StatName]model.Stat)
	for rows.Next() {
		var st model.Stat
		if err := rows.Scan(&st.Name, &st.Base, &st.Effort); err != nil {
			return fmt.Errorf("scanning stat: %w", err)
		}
		byName[st.Name] = st
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// canonical display order
	for _, name := range model.StatNames {
		if st, ok := byName[name]; ok {
			p.Stats = append(p.Stats, st)
		}
	}
	return nil
}

func (s *Store) loadAbilities(ctx context.Context, p *model.Pokemon) error {
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT pa.slot, a.name, pa.is_hidden FROM pokemon_abilities pa
		JOIN abilities a ON a.id = pa.ability_id
		WHERE pa.pokemon_id = ? ORDER BY pa.slot`, p.ID)
	if err != nil {
		return fmt.Errorf("loading abilities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ab model.AbilitySlot
		if err := rows.Scan(&ab.Slot, &ab.Name, &ab.IsHidden); err != nil {
			return fmt.Errorf("scanning ability: %w", err)
		}
		p.Abilities = append(p.Abilities, ab)
	}
	return rows.Err()
}

// Search returns name matches: prefix matches first, then substring
// matches, both in id order, capped at limit.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]model.Summary, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	q := strings.ToLower(query)
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT id, name, generation FROM pokemon
		WHERE name LIKE ? OR name LIKE ?
		ORDER BY (name NOT LIKE ?), id
		LIMIT ?`,
		q+"%", "%"+q+"%", q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer rows.Close()

	var results []model.Summary
	for rows.Next() {
		var sum model.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Generation); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	if err := s.attachTypes(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// EvolutionChain returns the edges of one chain ordered by evolution stage
// (minimum level, then species id).
func (s *Store) EvolutionChain(ctx context.Context, chainID int) ([]model.EvolutionEdge, error) {
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT e.chain_id, e.from_species_id, sf.name, e.to_species_id, st.name,
		       e.min_level, e.trigger_kind, e.item
		FROM evolutions e
		JOIN species sf ON sf.id = e.from_species_id
		JOIN species st ON st.id = e.to_species_id
		WHERE e.chain_id = ?
		ORDER BY e.min_level, e.from_species_id`, chainID)
	if err != nil {
		return nil, fmt.Errorf("loading evolution chain %d: %w", chainID, err)
	}
	defer rows.Close()

	var edges []model.EvolutionEdge
	for rows.Next() {
		var e model.EvolutionEdge
		if err := rows.Scan(&e.ChainID, &e.FromSpeciesID, &e.FromName,
			&e.ToSpeciesID, &e.ToName, &e.MinLevel, &e.Trigger, &e.Item); err != nil {
			return nil, fmt.Errorf("scanning evolution edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Count returns the number of Pokémon in the dex.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.SQL().QueryRowContext(ctx, "SELECT COUNT(*) FROM pokemon").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pokemon: %w", err)
	}
	return n, nil
}

// CountByGeneration returns generation → count, ordered by generation.
func (s *Store) CountByGeneration(ctx context.Context) ([]GroupCount, error) {
	return s.groupCount(ctx,
		"SELECT CAST(generation AS TEXT), COUNT(*) FROM pokemon GROUP BY generation ORDER BY generation")
}

// CountByType returns type name → count, largest first.
func (s *Store) CountByType(ctx context.Context) ([]GroupCount, error) {
	return s.groupCount(ctx, `
		SELECT t.name, COUNT(*) FROM pokemon_types pt
		JOIN types t ON t.id = pt.type_id
		GROUP BY t.name ORDER BY COUNT(*) DESC, t.name`)
}

// GroupCount is one row of an aggregate report.
type GroupCount struct {
	Key   string
	Count int
}

func (s *Store) groupCount(ctx context.Context, query string) ([]GroupCount, error) {
	rows, err := s.db.SQL().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregating: %w", err)
	}
	defer rows.Close()

	var counts []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, fmt.Errorf("scanning aggregate row: %w", err)
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}

// TypeNames returns all known type names alphabetically. The empty string
// is not included; the UI prepends it as the "all types" filter choice.
func (s *Store) TypeNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.SQL().QueryContext(ctx, "SELECT name FROM types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning type name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Random returns a random dex id, or ErrNotFound on an empty database.
func (s *Store) Random(ctx context.Context) (int, error) {
	var id int
	err := s.db.SQL().QueryRowContext(ctx,
		"SELECT id FROM pokemon ORDER BY RANDOM() LIMIT 1").Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("picking random pokemon: %w", err)
	}
	return id, nil
}

// Neighbors returns the dex ids immediately before and after id, 0 when
// none exists. Used by the detail screen's Up/Down paging.
func (s *Store) Neighbors(ctx context.Context, id int) (prev, next int, err error) {
	row := s.db.SQL().QueryRowContext(ctx,
		"SELECT COALESCE((SELECT MAX(id) FROM pokemon WHERE id < ?), 0), COALESCE((SELECT MIN(id) FROM pokemon WHERE id > ?), 0)",
		id, id)
	if err := row.Scan(&prev, &next); err != nil {
		return 0, 0, fmt.Errorf("finding neighbors of %d: %w", id, err)
	}
	return prev, next, nil
}
