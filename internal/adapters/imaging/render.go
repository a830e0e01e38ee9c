package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Fallback covers are rendered at quarter size and upscaled by the store,
// which keeps the bitmap font legible at cover dimensions.
const (
	renderWidth  = 320
	renderHeight = 168
)

type palette struct {
	top    color.RGBA
	bottom color.RGBA
}

// themePalettes maps theme keywords to background colors, so a theme keeps
// the same cover style across runs. Ordered: the first matching keyword wins,
// even when a title mentions several.
var themePalettes = []struct {
	keyword string
	pal     palette
}{
	{"副業", palette{color.RGBA{0x1A, 0x1A, 0x2E, 0xFF}, color.RGBA{0xE9, 0x45, 0x60, 0xFF}}},
	{"AI", palette{color.RGBA{0x0F, 0x34, 0x60, 0xFF}, color.RGBA{0x16, 0x21, 0x3E, 0xFF}}},
	{"投資", palette{color.RGBA{0x16, 0x21, 0x3E, 0xFF}, color.RGBA{0x0F, 0x34, 0x60, 0xFF}}},
	{"キャリア", palette{color.RGBA{0x2C, 0x3E, 0x50, 0xFF}, color.RGBA{0x34, 0x98, 0xDB, 0xFF}}},
	{"SNS", palette{color.RGBA{0x8E, 0x44, 0xAD, 0xFF}, color.RGBA{0x29, 0x80, 0xB9, 0xFF}}},
	{"invest", palette{color.RGBA{0x16, 0x21, 0x3E, 0xFF}, color.RGBA{0x0F, 0x34, 0x60, 0xFF}}},
}

var (
	defaultPalette = palette{color.RGBA{0x1E, 0x3A, 0x5F, 0xFF}, color.RGBA{0x0D, 0x1B, 0x2A, 0xFF}}
	accentColor    = color.RGBA{0x00, 0xC8, 0x96, 0xFF}
	textColor      = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// renderCover deterministically synthesizes a cover image from the title
// and theme: a two-tone vertical gradient, an accent bar, a theme label, and
// the wrapped title. Same inputs always produce the same pixels.
func renderCover(title, themeTitle string) image.Image {
	pal := defaultPalette
	for _, entry := range themePalettes {
		if strings.Contains(themeTitle, entry.keyword) || strings.Contains(title, entry.keyword) {
			pal = entry.pal
			break
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, renderWidth, renderHeight))

	// Vertical gradient between the palette colors.
	for y := 0; y < renderHeight; y++ {
		t := float64(y) / float64(renderHeight)
		c := color.RGBA{
			R: lerp(pal.top.R, pal.bottom.R, t),
			G: lerp(pal.top.G, pal.bottom.G, t),
			B: lerp(pal.top.B, pal.bottom.B, t),
			A: 0xFF,
		}
		draw.Draw(img, image.Rect(0, y, renderWidth, y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}

	// Accent bar along the bottom edge.
	draw.Draw(img, image.Rect(15, renderHeight-20, renderWidth-15, renderHeight-18), image.NewUniform(accentColor), image.Point{}, draw.Src)

	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
	}

	// Theme label box in the top-left corner.
	label := themeTitle
	if r := []rune(label); len(r) > 20 {
		label = string(r[:20])
	}
	labelWidth := drawer.MeasureString(label).Ceil()
	draw.Draw(img, image.Rect(15, 15, 15+labelWidth+10, 32), image.NewUniform(accentColor), image.Point{}, draw.Src)
	drawer.Dot = fixed.P(20, 27)
	drawer.DrawString(label)

	// Wrapped title, at most three lines.
	y := 55
	for _, line := range wrapRunes(title, 40) {
		drawer.Dot = fixed.P(20, y)
		drawer.DrawString(line)
		y += 18
		if y > renderHeight-30 {
			break
		}
	}

	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// wrapRunes splits a string into lines of at most width runes. Japanese
// titles have no spaces, so wrapping is positional rather than word-based.
func wrapRunes(s string, width int) []string {
	runes := []rune(s)
	var lines []string
	for len(runes) > 0 {
		n := width
		if n > len(runes) {
			n = len(runes)
		}
		lines = append(lines, string(runes[:n]))
		runes = runes[n:]
	}
	return lines
}
