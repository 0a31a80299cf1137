package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Surface is the drawing contract every layer offers to entities.
type Surface interface {
	FillEllipse(x, y, rx, ry float64, c color.Color)
	Line(x1, y1, x2, y2, width float64, c color.Color)
	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)
	// FadeRect alpha-blends c over the whole surface, ignoring transforms.
	FadeRect(c color.Color)
	// Clear replaces every pixel with c, including its alpha.
	Clear(c color.Color)
	DrawImage(img image.Image)
	Width() int
	Height() int
	Image() image.Image
}

// Canvas is an offscreen raster Surface backed by a gg context.
type Canvas struct {
	dc *gg.Context
}

// NewCanvas creates a transparent canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{dc: gg.NewContext(w, h)}
}

func (c *Canvas) FillEllipse(x, y, rx, ry float64, col color.Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	c.dc.SetColor(col)
	c.dc.DrawEllipse(x, y, rx, ry)
	c.dc.Fill()
}

func (c *Canvas) Line(x1, y1, x2, y2, width float64, col color.Color) {
	if width <= 0 {
		return
	}
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

func (c *Canvas) Push()                  { c.dc.Push() }
func (c *Canvas) Pop()                   { c.dc.Pop() }
func (c *Canvas) Translate(x, y float64) { c.dc.Translate(x, y) }
func (c *Canvas) Rotate(angle float64)   { c.dc.Rotate(angle) }

func (c *Canvas) FadeRect(col color.Color) {
	c.dc.Push()
	c.dc.Identity()
	c.dc.SetColor(col)
	c.dc.DrawRectangle(0, 0, float64(c.dc.Width()), float64(c.dc.Height()))
	c.dc.Fill()
	c.dc.Pop()
}

// FadeOut erases every pixel toward transparent by amount and tints what is
// left toward col. Alpha is truncated, so an untouched mark reaches zero.
func (c *Canvas) FadeOut(col color.Color, amount float64) {
	img := c.RGBA()
	if img == nil || !(amount > 0) {
		return
	}
	amount = math.Min(amount, 1)
	cr, cg, cb, _ := col.RGBA()
	tint := [3]float64{float64(cr) / 0xffff, float64(cg) / 0xffff, float64(cb) / 0xffff}
	keep := 1 - amount

	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		a := float64(pix[i+3])
		if a == 0 {
			continue
		}
		na := math.Floor(a * keep)
		if na <= 0 {
			pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0
			continue
		}
		for ch := 0; ch < 3; ch++ {
			u := float64(pix[i+ch]) / a
			u += (tint[ch] - u) * amount
			pix[i+ch] = uint8(math.Min(na, u*na+0.5))
		}
		pix[i+3] = uint8(na)
	}
}

func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *Canvas) DrawImage(img image.Image) {
	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImage(img, 0, 0)
	c.dc.Pop()
}

func (c *Canvas) Width() int  { return c.dc.Width() }
func (c *Canvas) Height() int { return c.dc.Height() }

// Image returns the live backing image. Callers must not hold it across frames.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// RGBA returns the backing pixel buffer.
func (c *Canvas) RGBA() *image.RGBA {
	if img, ok := c.dc.Image().(*image.RGBA); ok {
		return img
	}
	return nil
}

// Transparent is the clear color of every layer except the background.
var Transparent = color.NRGBA{}

// Ink converts a palette color and an opacity in [0,1] to a drawable color.
func Ink(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	switch {
	case !(alpha > 0):
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}
