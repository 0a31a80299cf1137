package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrNilLayer is returned when compositing finds a missing buffer.
var ErrNilLayer = errors.New("nil render layer")

// LayerID names one of the five render buffers.
type LayerID int

const (
	LayerBackground LayerID = iota
	LayerTrail
	LayerHistory
	LayerEffects
	LayerActive
	layerCount
)

// CompositeOrder is the fixed back-to-front draw order.
var CompositeOrder = [...]LayerID{LayerBackground, LayerTrail, LayerHistory, LayerEffects, LayerActive}

func (id LayerID) String() string {
	switch id {
	case LayerBackground:
		return "background"
	case LayerTrail:
		return "trail"
	case LayerHistory:
		return "history"
	case LayerEffects:
		return "effects"
	case LayerActive:
		return "active"
	default:
		return fmt.Sprintf("layer(%d)", int(id))
	}
}

// Layers owns the five canvas-sized buffers and their clear/fade/persist policies:
// background is painted on setup only, trail fades every frame, history only
// grows until an hour reset, effects and active are redrawn every frame.
type Layers struct {
	w, h       int
	layers     [layerCount]*Canvas
	background *Background
	fade       colorful.Color
}

// NewLayers allocates all buffers and paints the background.
func NewLayers(w, h int, bg *Background, fade colorful.Color) (*Layers, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("layers: size must be positive, got %dx%d", w, h)
	}
	if bg == nil {
		return nil, errors.New("layers: nil background painter")
	}
	l := &Layers{background: bg, fade: fade}
	l.Resize(w, h)
	return l, nil
}

// Resize reallocates every buffer. Trail and history content is lost.
func (l *Layers) Resize(w, h int) {
	l.w, l.h = w, h
	for i := range l.layers {
		l.layers[i] = NewCanvas(w, h)
	}
	l.background.Paint(l.layers[LayerBackground])
}

// Layer returns the buffer for id.
func (l *Layers) Layer(id LayerID) *Canvas {
	if id < 0 || id >= layerCount {
		return nil
	}
	return l.layers[id]
}

func (l *Layers) Background() *Canvas { return l.layers[LayerBackground] }
func (l *Layers) Trail() *Canvas      { return l.layers[LayerTrail] }
func (l *Layers) History() *Canvas    { return l.layers[LayerHistory] }
func (l *Layers) Effects() *Canvas    { return l.layers[LayerEffects] }
func (l *Layers) Active() *Canvas     { return l.layers[LayerActive] }

// Size returns the canvas dimensions.
func (l *Layers) Size() (int, int) { return l.w, l.h }

// FadeAlpha is the trail fade opacity after turbulence slows it down.
func FadeAlpha(base, turbulence, hold float64) float64 {
	t := math.Max(0, math.Min(1, turbulence))
	return base * (1 - t*hold)
}

// FadeTrail fades existing trail marks by alpha, tinting them toward the fade
// color as they go. Unmarked trail stays transparent so the background shows.
func (l *Layers) FadeTrail(alpha float64) {
	if alpha <= 0 || l.layers[LayerTrail] == nil {
		return
	}
	l.layers[LayerTrail].FadeOut(l.fade, alpha)
}

// ClearEffects empties the effects layer.
func (l *Layers) ClearEffects() { clearLayer(l.layers[LayerEffects]) }

// ClearActive empties the active layer.
func (l *Layers) ClearActive() { clearLayer(l.layers[LayerActive]) }

// ResetHour empties history and trail.
func (l *Layers) ResetHour() {
	clearLayer(l.layers[LayerHistory])
	clearLayer(l.layers[LayerTrail])
}

func clearLayer(c *Canvas) {
	if c != nil {
		c.Clear(Transparent)
	}
}

// Composite draws every layer onto dst in CompositeOrder.
func (l *Layers) Composite(dst Surface) error {
	if dst == nil {
		return fmt.Errorf("composite: %w: destination", ErrNilLayer)
	}
	if c, ok := dst.(*Canvas); ok && c == nil {
		return fmt.Errorf("composite: %w: destination", ErrNilLayer)
	}
	for _, id := range CompositeOrder {
		if l.layers[id] == nil {
			return fmt.Errorf("composite: %w: %s", ErrNilLayer, id)
		}
	}
	dst.Clear(color.Transparent)
	for _, id := range CompositeOrder {
		dst.DrawImage(l.layers[id].Image())
	}
	return nil
}
