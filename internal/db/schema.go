package db

// migrations holds one DDL script per schema version; index i produces
// user_version i+1.
var migrations = []string{schemaV1}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS species (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    habitat TEXT NOT NULL DEFAULT '',
    is_legendary INTEGER NOT NULL DEFAULT 0,
    is_mythical INTEGER NOT NULL DEFAULT 0,
    capture_rate INTEGER NOT NULL DEFAULT 0,
    flavor_text TEXT NOT NULL DEFAULT '',
    genus TEXT NOT NULL DEFAULT '',
    evolution_chain_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pokemon (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    height INTEGER NOT NULL DEFAULT 0,
    weight INTEGER NOT NULL DEFAULT 0,
    base_experience INTEGER NOT NULL DEFAULT 0,
    order_num INTEGER NOT NULL DEFAULT 0,
    generation INTEGER NOT NULL DEFAULT 0,
    is_default INTEGER NOT NULL DEFAULT 1,
    species_id INTEGER NOT NULL REFERENCES species(id)
);

CREATE TABLE IF NOT EXISTS types (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS pokemon_types (
    pokemon_id INTEGER NOT NULL REFERENCES pokemon(id) ON DELETE CASCADE,
    type_id INTEGER NOT NULL REFERENCES types(id),
    slot INTEGER NOT NULL,
    PRIMARY KEY (pokemon_id, slot)
);

CREATE TABLE IF NOT EXISTS stats (
    pokemon_id INTEGER NOT NULL REFERENCES pokemon(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    base_value INTEGER NOT NULL,
    effort INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (pokemon_id, name)
);

CREATE TABLE IF NOT EXISTS abilities (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS pokemon_abilities (
    pokemon_id INTEGER NOT NULL REFERENCES pokemon(id) ON DELETE CASCADE,
    ability_id INTEGER NOT NULL REFERENCES abilities(id),
    slot INTEGER NOT NULL,
    is_hidden INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (pokemon_id, slot)
);

CREATE TABLE IF NOT EXISTS evolutions (
    chain_id INTEGER NOT NULL,
    from_species_id INTEGER NOT NULL,
    to_species_id INTEGER NOT NULL,
    min_level INTEGER NOT NULL DEFAULT 0,
    trigger_kind TEXT NOT NULL DEFAULT '',
    item TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (chain_id, from_species_id, to_species_id)
);

CREATE TABLE IF NOT EXISTS seed_runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    from_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    ok_count INTEGER NOT NULL DEFAULT 0,
    fail_count INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_pokemon_name ON pokemon(name);
CREATE INDEX IF NOT EXISTS idx_pokemon_generation ON pokemon(generation);
CREATE INDEX IF NOT EXISTS idx_pokemon_types_type ON pokemon_types(type_id);
CREATE INDEX IF NOT EXISTS idx_species_chain ON species(evolution_chain_id);
`
