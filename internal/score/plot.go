package score

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// plot geometry in pixels
const (
	cellSize   = 160
	marginLeft = 90
	marginTop  = 50
	marginBot  = 70
	marginRght = 30
)

var (
	lightBlue = color.RGBA{R: 247, G: 251, B: 255, A: 255}
	darkBlue  = color.RGBA{R: 8, G: 48, B: 107, A: 255}
)

// RenderConfusionMatrix draws cm as a blue heatmap with count annotations and
// writes it to path as PNG
func RenderConfusionMatrix(path string, cm ConfusionMatrix) (err error) {
	img := DrawConfusionMatrix(cm)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DrawConfusionMatrix renders cm into an image
func DrawConfusionMatrix(cm ConfusionMatrix) *image.RGBA {
	width := marginLeft + 2*cellSize + marginRght
	height := marginTop + 2*cellSize + marginBot
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	maxCount := 0
	for _, row := range cm {
		for _, v := range row {
			maxCount = max(maxCount, v)
		}
	}

	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			v := cm[row][col]
			frac := 0.0
			if maxCount > 0 {
				frac = float64(v) / float64(maxCount)
			}
			x0 := marginLeft + col*cellSize
			y0 := marginTop + row*cellSize
			cell := image.Rect(x0, y0, x0+cellSize, y0+cellSize)
			draw.Draw(img, cell, image.NewUniform(blend(lightBlue, darkBlue, frac)), image.Point{}, draw.Src)

			ink := color.Color(color.Black)
			if frac > 0.5 {
				ink = color.White
			}
			drawCentered(img, strconv.Itoa(v), x0+cellSize/2, y0+cellSize/2, ink)
		}
	}

	gridBottom := marginTop + 2*cellSize
	for i := 0; i < 2; i++ {
		center := i*cellSize + cellSize/2
		drawCentered(img, strconv.Itoa(i), marginLeft+center, gridBottom+15, color.Black)
		drawCentered(img, strconv.Itoa(i), marginLeft-15, marginTop+center, color.Black)
	}

	drawCentered(img, "Confusion Matrix", width/2, marginTop/2, color.Black)
	drawCentered(img, "Predicted Label", marginLeft+cellSize, gridBottom+45, color.Black)
	drawVertical(img, "True Label", marginLeft-50, marginTop+cellSize, color.Black)

	return img
}

func blend(from, to color.RGBA, t float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

// drawCentered draws s with its box centered on (cx, cy)
func drawCentered(dst draw.Image, s string, cx, cy int, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(cx-textWidth(s)/2, cy+face.Ascent/2),
	}
	d.DrawString(s)
}

// drawVertical draws s rotated 90 degrees counter-clockwise, centered on (cx, cy)
func drawVertical(dst *image.RGBA, s string, cx, cy int, c color.Color) {
	face := basicfont.Face7x13
	w := textWidth(s)
	h := face.Height

	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	// (x, y) in tmp maps to (y, w-1-x) in the rotated box
	left := cx - h/2
	top := cy - w/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := tmp.RGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			dst.Set(left+y, top+w-1-x, px)
		}
	}
}
