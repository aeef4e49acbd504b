// Package compose renders multi-source overlay frames for bubble layouts.
//
// The compositor is a plain synchronous function invoked by the render
// backend once per output instant: given the decoded primary (screen) frame
// and an optional secondary (camera) frame, it produces one composited
// output frame. The side-by-side layout never reaches the compositor — the
// timeline plan expresses it as two affine placements instead.
package compose

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/akemper/kineto/pkg/timeline"
)

const (
	// bubbleFraction sizes the bubble as a share of the smaller output
	// dimension.
	bubbleFraction = 0.25

	// bubblePadding is the gap between the bubble and the canvas edge.
	bubblePadding = 32

	// bubbleBorder is the stroke width around the bubble.
	bubbleBorder = 4

	// cornerFraction sizes the rounded-square corner radius as a share of
	// the bubble diameter.
	cornerFraction = 0.2
)

// ErrNoPrimaryFrame is returned when the anchor frame is missing — no
// output frame can be produced without it.
var ErrNoPrimaryFrame = errors.New("compose: missing primary frame")

// bubbleBorderColor strokes the bubble outline.
var bubbleBorderColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Compose renders one output frame of width×height: black background, the
// primary frame aspect-filled over the whole canvas, and — for bubble
// layouts with a secondary frame present — the secondary frame clipped
// into a bordered corner bubble.
//
// A nil primary fails with [ErrNoPrimaryFrame]. A nil secondary silently
// renders the primary alone, as does a non-bubble layout.
func Compose(primary, secondary image.Image, layout timeline.Layout, pos timeline.BubblePosition, width, height int) (*image.RGBA, error) {
	if primary == nil {
		return nil, ErrNoPrimaryFrame
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	drawAspectFill(dst, dst.Bounds(), primary)

	if secondary == nil || !layout.IsBubble() {
		return dst, nil
	}

	size := int(bubbleFraction * float64(min(width, height)))
	rect := bubbleRect(pos, width, height, size)

	// Scale the secondary frame into an off-screen bubble tile, then punch
	// it through the clip mask onto the canvas.
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	drawAspectFill(tile, tile.Bounds(), secondary)

	round := layout == timeline.LayoutCircleBubble
	mask := newBubbleMask(rect, round, 0)
	draw.DrawMask(dst, rect, tile, image.Point{}, mask, rect.Min, draw.Over)

	border := newBubbleMask(rect, round, bubbleBorder)
	draw.DrawMask(dst, rect, image.NewUniform(bubbleBorderColor), image.Point{}, border, rect.Min, draw.Over)

	return dst, nil
}

// drawAspectFill scales src to cover region entirely, cropping overflow,
// and draws the result clipped to region.
func drawAspectFill(dst *image.RGBA, region image.Rectangle, src image.Image) {
	sb := src.Bounds()
	t := timeline.AspectFill(sb.Dx(), sb.Dy(), region.Dx(), region.Dy())

	target := image.Rect(
		region.Min.X+int(t.TranslateX),
		region.Min.Y+int(t.TranslateY),
		region.Min.X+int(t.TranslateX+float64(sb.Dx())*t.Scale),
		region.Min.Y+int(t.TranslateY+float64(sb.Dy())*t.Scale),
	)

	clipped := dst.SubImage(region).(*image.RGBA)
	xdraw.ApproxBiLinear.Scale(clipped, target, src, sb, xdraw.Src, nil)
}

// bubbleRect anchors a size×size bubble at the configured corner with fixed
// padding.
func bubbleRect(pos timeline.BubblePosition, width, height, size int) image.Rectangle {
	x, y := bubblePadding, bubblePadding
	switch pos {
	case timeline.BubbleTopRight:
		x = width - size - bubblePadding
	case timeline.BubbleBottomLeft:
		y = height - size - bubblePadding
	case timeline.BubbleBottomRight:
		x = width - size - bubblePadding
		y = height - size - bubblePadding
	}
	return image.Rect(x, y, x+size, y+size)
}

// bubbleMask is an alpha mask for a circle or rounded square. With a
// non-zero border width it masks only the outline band instead of the
// filled shape.
type bubbleMask struct {
	rect   image.Rectangle
	round  bool
	border int
}

func newBubbleMask(rect image.Rectangle, round bool, border int) *bubbleMask {
	return &bubbleMask{rect: rect, round: round, border: border}
}

func (m *bubbleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *bubbleMask) Bounds() image.Rectangle { return m.rect }

func (m *bubbleMask) At(x, y int) color.Color {
	d := m.distance(x, y)
	if d > 0 {
		return color.Alpha{}
	}
	if m.border > 0 && d < -float64(m.border) {
		return color.Alpha{}
	}
	return color.Alpha{A: 0xff}
}

// distance returns the signed distance from the shape boundary: negative
// inside, positive outside.
func (m *bubbleMask) distance(x, y int) float64 {
	cx := float64(m.rect.Min.X+m.rect.Max.X) / 2
	cy := float64(m.rect.Min.Y+m.rect.Max.Y) / 2
	half := float64(m.rect.Dx()) / 2
	dx := float64(x) + 0.5 - cx
	dy := float64(y) + 0.5 - cy

	if m.round {
		return math.Hypot(dx, dy) - half
	}

	// Rounded square: a box inset by the corner radius, expanded back out
	// by that radius.
	r := cornerFraction * float64(m.rect.Dx())
	qx := math.Abs(dx) - (half - r)
	qy := math.Abs(dy) - (half - r)
	if qx > 0 && qy > 0 {
		return math.Hypot(qx, qy) - r
	}
	return max(qx, qy) - r
}
