// Package model holds the domain types shared by the store, the seeder,
// and the UI. Field layout mirrors the relational schema in internal/db.
package model

// StatName identifies one of the six canonical base stats.
type StatName string

const (
	StatHP             StatName = "hp"
	StatAttack         StatName = "attack"
	StatDefense        StatName = "defense"
	StatSpecialAttack  StatName = "special-attack"
	StatSpecialDefense StatName = "special-defense"
	StatSpeed          StatName = "speed"
)

// StatNames lists the canonical stats in display order.
var StatNames = []StatName{
	StatHP, StatAttack, StatDefense,
	StatSpecialAttack, StatSpecialDefense, StatSpeed,
}

// MaxBaseStat is the scale ceiling used when rendering stat bars.
const MaxBaseStat = 255

// Summary is the list-screen projection of a Pokémon.
type Summary struct {
	ID         int
	Name       string
	Generation int
	Types      []string
}

// Pokemon is the full detail record, assembled from joins.
type Pokemon struct {
	ID             int
	Name           string
	Height         int // decimeters, as published by the API
	Weight         int // hectograms
	BaseExperience int
	Order          int
	Generation     int
	IsDefault      bool
	SpeciesID      int

	Species   Species
	Types     []TypeSlot
	Stats     []Stat
	Abilities []AbilitySlot
}

// Species carries the flavor data shared by all forms of a Pokémon.
type Species struct {
	ID               int
	Name             string
	Color            string
	Habitat          string
	IsLegendary      bool
	IsMythical       bool
	CaptureRate      int
	FlavorText       string
	Genus            string
	EvolutionChainID int
}

// TypeSlot is a typed slot (a Pokémon has one or two).
type TypeSlot struct {
	Slot int
	Name string
}

// Stat is one base stat value.
type Stat struct {
	Name   StatName
	Base   int
	Effort int
}

// AbilitySlot is an ability in a numbered slot, possibly hidden.
type AbilitySlot struct {
	Slot     int
	Name     string
	IsHidden bool
}

// EvolutionEdge is one step in an evolution chain.
type EvolutionEdge struct {
	ChainID       int
	FromSpeciesID int
	FromName      string
	ToSpeciesID   int
	ToName        string
	MinLevel      int // 0 when the trigger is not level-up
	Trigger       string
	Item          string
}

// TypeNames returns the type names in slot order.
func (p *Pokemon) TypeNames() []string {
	names := make([]string, len(p.Types))
	for i, t := range p.Types {
		names[i] = t.Name
	}
	return names
}

// Stat returns the base value for the named stat, 0 if absent.
func (p *Pokemon) Stat(name StatName) int {
	for _, s := range p.Stats {
		if s.Name == name {
			return s.Base
		}
	}
	return 0
}

// StatTotal sums all base stats.
func (p *Pokemon) StatTotal() int {
	total := 0
	for _, s := range p.Stats {
		total += s.Base
	}
	return total
}
