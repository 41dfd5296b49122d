package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pidex/pidex/internal/model"
)

// UpsertPokemon writes one Pokémon, its species, and all joined rows in a
// single transaction. Re-seeding the same id replaces the joined rows.
func (s *Store) UpsertPokemon(ctx context.Context, p *model.Pokemon) error {
	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSpecies(ctx, tx, &p.Species); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pokemon (id, name, height, weight, base_experience, order_num, generation, is_default, species_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, height = excluded.height, weight = excluded.weight,
			base_experience = excluded.base_experience, order_num = excluded.order_num,
			generation = excluded.generation, is_default = excluded.is_default,
			species_id = excluded.species_id`,
		p.ID, p.Name, p.Height, p.Weight, p.BaseExperience, p.Order,
		p.Generation, p.IsDefault, p.Species.ID)
	if err != nil {
		return fmt.Errorf("upserting pokemon %d: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pokemon_types WHERE pokemon_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing types for %d: %w", p.ID, err)
	}
	for _, ts := range p.Types {
		typeID, err := upsertNamed(ctx, tx, "types", ts.Name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pokemon_types (pokemon_id, type_id, slot) VALUES (?, ?, ?)",
			p.ID, typeID, ts.Slot); err != nil {
			return fmt.Errorf("inserting type slot %d for %d: %w", ts.Slot, p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM stats WHERE pokemon_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing stats for %d: %w", p.ID, err)
	}
	for _, st := range p.Stats {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO stats (pokemon_id, name, base_value, effort) VALUES (?, ?, ?, ?)",
			p.ID, st.Name, st.Base, st.Effort); err != nil {
			return fmt.Errorf("inserting stat %s for %d: %w", st.Name, p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pokemon_abilities WHERE pokemon_id = ?", p.ID); err != nil {
		return fmt.Errorf("clearing abilities for %d: %w", p.ID, err)
	}
	for _, ab := range p.Abilities {
		abilityID, err := upsertNamed(ctx, tx, "abilities", ab.Name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pokemon_abilities (pokemon_id, ability_id, slot, is_hidden) VALUES (?, ?, ?, ?)",
			p.ID, abilityID, ab.Slot, ab.IsHidden); err != nil {
			return fmt.Errorf("inserting ability slot %d for %d: %w", ab.Slot, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert of %d: %w", p.ID, err)
	}
	return nil
}

func upsertSpecies(ctx context.Context, tx *sql.Tx, sp *model.Species) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO species (id, name, color, habitat, is_legendary, is_mythical, capture_rate, flavor_text, genus, evolution_chain_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, color = excluded.color, habitat = excluded.habitat,
			is_legendary = excluded.is_legendary, is_mythical = excluded.is_mythical,
			capture_rate = excluded.capture_rate, flavor_text = excluded.flavor_text,
			genus = excluded.genus, evolution_chain_id = excluded.evolution_chain_id`,
		sp.ID, sp.Name, sp.Color, sp.Habitat, sp.IsLegendary, sp.IsMythical,
		sp.CaptureRate, sp.FlavorText, sp.Genus, sp.EvolutionChainID)
	if err != nil {
		return fmt.Errorf("upserting species %d: %w", sp.ID, err)
	}
	return nil
}

// upsertNamed inserts a (id, name UNIQUE) row if missing and returns its id.
func upsertNamed(ctx context.Context, tx *sql.Tx, table, name string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up %s %q: %w", table, name, err)
	}

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", table), name)
	if err != nil {
		return 0, fmt.Errorf("inserting %s %q: %w", table, name, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new %s id: %w", table, err)
	}
	return int(newID), nil
}

// ReplaceEvolutions rewrites all edges of one chain.
func (s *Store) ReplaceEvolutions(ctx context.Context, chainID int, edges []model.EvolutionEdge) error {
	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning evolution replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM evolutions WHERE chain_id = ?", chainID); err != nil {
		return fmt.Errorf("clearing chain %d: %w", chainID, err)
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO evolutions (chain_id, from_species_id, to_species_id, min_level, trigger_kind, item)
			VALUES (?, ?, ?, ?, ?, ?)`,
			chainID, e.FromSpeciesID, e.ToSpeciesID, e.MinLevel, e.Trigger, e.Item); err != nil {
			return fmt.Errorf("inserting edge %d→%d: %w", e.FromSpeciesID, e.ToSpeciesID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chain %d: %w", chainID, err)
	}
	return nil
}

// SeedRun records the outcome of one seeding pass.
type SeedRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	FromID     int
	ToID       int
	OKCount    int
	FailCount  int
	Notes      string
}

// RecordSeedRun persists a completed (possibly partial) seed run.
func (s *Store) RecordSeedRun(ctx context.Context, run SeedRun) error {
	_, err := s.db.SQL().ExecContext(ctx, `
		INSERT INTO seed_runs (id, started_at, finished_at, from_id, to_id, ok_count, fail_count, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.FromID, run.ToID,
		run.OKCount, run.FailCount, run.Notes)
	if err != nil {
		return fmt.Errorf("recording seed run: %w", err)
	}
	return nil
}

// LastSeedRun returns the most recent seed run, or ErrNotFound.
func (s *Store) LastSeedRun(ctx context.Context) (*SeedRun, error) {
	run := &SeedRun{}
	err := s.db.SQL().QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, from_id, to_id, ok_count, fail_count, notes
		FROM seed_runs ORDER BY started_at DESC LIMIT 1`).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.FromID, &run.ToID,
		&run.OKCount, &run.FailCount, &run.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading last seed run: %w", err)
	}
	return run, nil
}
