package timeline

// Transform is a uniform-scale-then-translate affine mapping from source
// pixel coordinates to output canvas coordinates. Render backends apply it
// when placing a decoded track on the output canvas.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// AspectFill computes the transform that scales a srcW×srcH track to fully
// cover an outW×outH canvas, centred. The scale factor is the larger of the
// two axis ratios, so the canvas is always covered and overflow is cropped
// — never letterboxed.
func AspectFill(srcW, srcH, outW, outH int) Transform {
	if srcW <= 0 || srcH <= 0 {
		return Transform{Scale: 1}
	}
	sx := float64(outW) / float64(srcW)
	sy := float64(outH) / float64(srcH)
	scale := sx
	if sy > scale {
		scale = sy
	}
	return Transform{
		Scale:      scale,
		TranslateX: (float64(outW) - float64(srcW)*scale) / 2,
		TranslateY: (float64(outH) - float64(srcH)*scale) / 2,
	}
}

// Placement positions one track inside a region of the output canvas:
// the region rectangle plus the affine transform that aspect-fills the
// track into it (expressed in full-canvas coordinates).
type Placement struct {
	// X, Y, Width, Height bound the region this track covers. Render
	// backends clip the drawn track to this rectangle.
	X, Y, Width, Height int

	// Transform maps the track into the region, in full-canvas coordinates.
	Transform Transform
}

// SideBySidePlacements computes the two placements for the side-by-side
// layout: the primary (screen) track aspect-filled into the left half of
// the canvas and the secondary (camera) track into the right half.
func SideBySidePlacements(primaryW, primaryH, secondaryW, secondaryH, outW, outH int) [2]Placement {
	halfW := outW / 2

	left := AspectFill(primaryW, primaryH, halfW, outH)
	right := AspectFill(secondaryW, secondaryH, outW-halfW, outH)
	right.TranslateX += float64(halfW)

	return [2]Placement{
		{X: 0, Y: 0, Width: halfW, Height: outH, Transform: left},
		{X: halfW, Y: 0, Width: outW - halfW, Height: outH, Transform: right},
	}
}
