package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPNG decodes a sprite PNG and renders it as half-block terminal
// art, width cells wide. Each cell covers two vertical pixels ("▀" with
// the top pixel as foreground and the bottom as background), so a square
// sprite comes out width/2 lines tall.
func RenderPNG(data []byte, width int) (string, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding sprite: %w", err)
	}
	return renderImage(img, width), nil
}

func renderImage(img image.Image, width int) string {
	if width < 2 {
		width = 2
	}
	height := width // pixel rows; text rows = height/2

	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return Placeholder(width)
	}

	sample := func(cx, py int) (r, g, b uint32, opaque bool) {
		sx := bounds.Min.X + cx*srcW/width
		sy := bounds.Min.Y + py*srcH/height
		r16, g16, b16, a16 := img.At(sx, sy).RGBA()
		if a16 < 0x8000 {
			return 0, 0, 0, false
		}
		return r16 >> 8, g16 >> 8, b16 >> 8, true
	}

	var sb strings.Builder
	for row := 0; row < height/2; row++ {
		for col := 0; col < width; col++ {
			tr, tg, tb, topOK := sample(col, row*2)
			br, bg, bb, botOK := sample(col, row*2+1)

			switch {
			case !topOK && !botOK:
				sb.WriteByte(' ')
			case topOK && !botOK:
				sb.WriteString(lipgloss.NewStyle().
					Foreground(hexColor(tr, tg, tb)).Render("▀"))
			case !topOK && botOK:
				sb.WriteString(lipgloss.NewStyle().
					Foreground(hexColor(br, bg, bb)).Render("▄"))
			default:
				sb.WriteString(lipgloss.NewStyle().
					Foreground(hexColor(tr, tg, tb)).
					Background(hexColor(br, bg, bb)).Render("▀"))
			}
		}
		if row < height/2-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(r, g, b uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// Placeholder renders the box shown when a sprite is missing or corrupt.
func Placeholder(width int) string {
	if width < 4 {
		width = 4
	}
	height := width / 2

	var sb strings.Builder
	for row := 0; row < height; row++ {
		switch row {
		case 0:
			sb.WriteString("┌" + strings.Repeat("─", width-2) + "┐")
		case height - 1:
			sb.WriteString("└" + strings.Repeat("─", width-2) + "┘")
		case height / 2:
			label := "no sprite"
			if len(label) > width-2 {
				label = "?"
			}
			pad := width - 2 - len(label)
			sb.WriteString("│" + strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2) + "│")
		default:
			sb.WriteString("│" + strings.Repeat(" ", width-2) + "│")
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
