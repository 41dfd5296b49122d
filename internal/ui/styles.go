package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).BorderStyle(lipgloss.NormalBorder()).BorderTop(true)
	legendaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// typeColors maps Pokémon types to badge colors (256-color palette).
var typeColors = map[string]string{
	"normal": "250", "fire": "202", "water": "33", "electric": "226",
	"grass": "76", "ice": "51", "fighting": "124", "poison": "129",
	"ground": "137", "flying": "111", "psychic": "205", "bug": "106",
	"rock": "101", "ghost": "92", "dragon": "57", "dark": "239",
	"steel": "103", "fairy": "218",
}

// typeBadge renders a colored type label.
func typeBadge(name string) string {
	color, ok := typeColors[name]
	if !ok {
		color = "250"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(name)
}

// statBar renders a fixed-width bar scaled to the stat ceiling.
func statBar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	color := "76" // green
	switch {
	case value < 50:
		color = "196"
	case value < 90:
		color = "214"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(bar)
}
