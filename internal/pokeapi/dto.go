package pokeapi

import (
	"strconv"
	"strings"

	"github.com/pidex/pidex/internal/model"
)

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonDTO struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Height         int      `json:"height"`
	Weight         int      `json:"weight"`
	BaseExperience int      `json:"base_experience"`
	Order          int      `json:"order"`
	IsDefault      bool     `json:"is_default"`
	Species        namedRef `json:"species"`
	Types          []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int      `json:"base_stat"`
		Effort   int      `json:"effort"`
		Stat     namedRef `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Slot     int      `json:"slot"`
		IsHidden bool     `json:"is_hidden"`
		Ability  namedRef `json:"ability"`
	} `json:"abilities"`
}

func (d *pokemonDTO) toModel() *model.Pokemon {
	p := &model.Pokemon{
		ID:             d.ID,
		Name:           d.Name,
		Height:         d.Height,
		Weight:         d.Weight,
		BaseExperience: d.BaseExperience,
		Order:          d.Order,
		IsDefault:      d.IsDefault,
		SpeciesID:      idFromURL(d.Species.URL),
	}
	for _, t := range d.Types {
		p.Types = append(p.Types, model.TypeSlot{Slot: t.Slot, Name: t.Type.Name})
	}
	for _, s := range d.Stats {
		p.Stats = append(p.Stats, model.Stat{
			Name:   model.StatName(s.Stat.Name),
			Base:   s.BaseStat,
			Effort: s.Effort,
		})
	}
	for _, a := range d.Abilities {
		p.Abilities = append(p.Abilities, model.AbilitySlot{
			Slot:     a.Slot,
			Name:     a.Ability.Name,
			IsHidden: a.IsHidden,
		})
	}
	return p
}

type speciesDTO struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Color          namedRef  `json:"color"`
	Habitat        *namedRef `json:"habitat"`
	IsLegendary    bool      `json:"is_legendary"`
	IsMythical     bool      `json:"is_mythical"`
	CaptureRate    int       `json:"capture_rate"`
	Generation     namedRef  `json:"generation"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
	FlavorTextEntries []struct {
		FlavorText string   `json:"flavor_text"`
		Language   namedRef `json:"language"`
	} `json:"flavor_text_entries"`
	Genera []struct {
		Genus    string   `json:"genus"`
		Language namedRef `json:"language"`
	} `json:"genera"`
}

func (d *speciesDTO) toModel() (*model.Species, int) {
	sp := &model.Species{
		ID:               d.ID,
		Name:             d.Name,
		Color:            d.Color.Name,
		IsLegendary:      d.IsLegendary,
		IsMythical:       d.IsMythical,
		CaptureRate:      d.CaptureRate,
		EvolutionChainID: idFromURL(d.EvolutionChain.URL),
	}
	if d.Habitat != nil {
		sp.Habitat = d.Habitat.Name
	}
	for _, e := range d.FlavorTextEntries {
		if e.Language.Name == "en" {
			sp.FlavorText = cleanFlavorText(e.FlavorText)
			break
		}
	}
	for _, g := range d.Genera {
		if g.Language.Name == "en" {
			sp.Genus = g.Genus
			break
		}
	}
	return sp, generationNumber(d.Generation.Name)
}

type chainDTO struct {
	ID    int       `json:"id"`
	Chain chainLink `json:"chain"`
}

type chainLink struct {
	Species   namedRef    `json:"species"`
	EvolvesTo []chainLink `json:"evolves_to"`
	Details   []struct {
		MinLevel *int      `json:"min_level"`
		Trigger  namedRef  `json:"trigger"`
		Item     *namedRef `json:"item"`
	} `json:"evolution_details"`
}

// toEdges flattens the recursive chain into from→to edges. Branching
// chains (Eevee) produce one edge per branch.
func (d *chainDTO) toEdges() []model.EvolutionEdge {
	var edges []model.EvolutionEdge
	var walk func(from chainLink)
	walk = func(from chainLink) {
		for _, to := range from.EvolvesTo {
			edge := model.EvolutionEdge{
				ChainID:       d.ID,
				FromSpeciesID: idFromURL(from.Species.URL),
				FromName:      from.Species.Name,
				ToSpeciesID:   idFromURL(to.Species.URL),
				ToName:        to.Species.Name,
			}
			if len(to.Details) > 0 {
				det := to.Details[0]
				if det.MinLevel != nil {
					edge.MinLevel = *det.MinLevel
				}
				edge.Trigger = det.Trigger.Name
				if det.Item != nil {
					edge.Item = det.Item.Name
				}
			}
			edges = append(edges, edge)
			walk(to)
		}
	}
	walk(d.Chain)
	return edges
}

// idFromURL extracts the trailing numeric id from an API resource URL
// such as https://pokeapi.co/api/v2/pokemon-species/1/.
func idFromURL(url string) int {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}

var romanGenerations = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10,
}

// generationNumber converts "generation-iv" to 4.
func generationNumber(name string) int {
	suffix := strings.TrimPrefix(name, "generation-")
	return romanGenerations[suffix]
}

// cleanFlavorText strips the control characters PokéAPI carries over from
// game ROM text (form feeds, soft hyphens, hard newlines).
func cleanFlavorText(text string) string {
	replacer := strings.NewReplacer("\f", " ", "\n", " ", "­ ", "", "­", "")
	cleaned := replacer.Replace(text)
	return strings.Join(strings.Fields(cleaned), " ")
}
