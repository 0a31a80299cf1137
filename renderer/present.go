package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Presenter uploads the composited frame to a GPU texture and draws it.
type Presenter struct {
	texture     rl.Texture2D
	pixels      []color.RGBA
	w, h        int32
	initialized bool
}

// NewPresenter creates a presenter for a w x h frame.
func NewPresenter(w, h int) *Presenter {
	return &Presenter{w: int32(w), h: int32(h), pixels: make([]color.RGBA, w*h)}
}

// Init creates the texture (must be called after the raylib window is created).
func (p *Presenter) Init() {
	if p.initialized {
		return
	}
	img := rl.GenImageColor(int(p.w), int(p.h), rl.Black)
	p.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	p.initialized = true
}

// Upload copies frame pixels into the texture.
func (p *Presenter) Upload(frame *image.RGBA) {
	if !p.initialized || frame == nil {
		return
	}
	b := frame.Bounds()
	if int32(b.Dx()) != p.w || int32(b.Dy()) != p.h {
		return
	}
	for y := 0; y < int(p.h); y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+int(p.w)*4]
		out := p.pixels[y*int(p.w) : (y+1)*int(p.w)]
		for x := range out {
			out[x] = color.RGBA{R: row[x*4], G: row[x*4+1], B: row[x*4+2], A: 255}
		}
	}
	rl.UpdateTexture(p.texture, p.pixels)
}

// Draw renders the texture at the window origin.
func (p *Presenter) Draw() {
	if !p.initialized {
		return
	}
	rl.DrawTexture(p.texture, 0, 0, rl.White)
}

// Resize recreates the texture for a new frame size.
func (p *Presenter) Resize(w, h int) {
	p.Unload()
	p.w, p.h = int32(w), int32(h)
	p.pixels = make([]color.RGBA, w*h)
	p.Init()
}

// Unload releases GPU resources.
func (p *Presenter) Unload() {
	if p.initialized {
		rl.UnloadTexture(p.texture)
		p.initialized = false
	}
}
