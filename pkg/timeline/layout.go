package timeline

// Layout selects how a two-source (screen + camera) export is arranged.
// Pure configuration — no owned resources.
type Layout int

const (
	// LayoutSideBySide places both tracks next to each other, each
	// aspect-filling half of the canvas. Expressed as two affine
	// placements; no pixel compositing needed.
	LayoutSideBySide Layout = iota

	// LayoutCircleBubble overlays the camera as a circular bubble in a
	// corner of the screen track.
	LayoutCircleBubble

	// LayoutSquareBubble overlays the camera as a rounded-square bubble in
	// a corner of the screen track.
	LayoutSquareBubble
)

// String returns the human-readable name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutSideBySide:
		return "side-by-side"
	case LayoutCircleBubble:
		return "circle-bubble"
	case LayoutSquareBubble:
		return "square-bubble"
	default:
		return "unknown"
	}
}

// IsBubble reports whether the layout renders the secondary track as an
// overlay bubble and therefore needs the frame compositor.
func (l Layout) IsBubble() bool {
	return l == LayoutCircleBubble || l == LayoutSquareBubble
}

// IsValid reports whether l is a recognised layout.
func (l Layout) IsValid() bool {
	switch l {
	case LayoutSideBySide, LayoutCircleBubble, LayoutSquareBubble:
		return true
	}
	return false
}

// BubblePosition selects the corner a bubble overlay is anchored to.
type BubblePosition int

const (
	BubbleTopLeft BubblePosition = iota
	BubbleTopRight
	BubbleBottomLeft
	BubbleBottomRight
)

// String returns the human-readable name of the bubble position.
func (p BubblePosition) String() string {
	switch p {
	case BubbleTopLeft:
		return "top-left"
	case BubbleTopRight:
		return "top-right"
	case BubbleBottomLeft:
		return "bottom-left"
	case BubbleBottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// IsValid reports whether p is a recognised bubble position.
func (p BubblePosition) IsValid() bool {
	return p >= BubbleTopLeft && p <= BubbleBottomRight
}

// AspectRatio selects one of the fixed output resolutions.
type AspectRatio int

const (
	// AspectWide is 16:9 landscape, 1920×1080.
	AspectWide AspectRatio = iota

	// AspectVertical is 9:16 portrait, 1080×1920.
	AspectVertical

	// AspectSquare is 1:1, 1080×1080.
	AspectSquare
)

// String returns the human-readable name of the aspect ratio.
func (a AspectRatio) String() string {
	switch a {
	case AspectWide:
		return "16:9"
	case AspectVertical:
		return "9:16"
	case AspectSquare:
		return "1:1"
	default:
		return "unknown"
	}
}

// IsValid reports whether a is a recognised aspect ratio.
func (a AspectRatio) IsValid() bool {
	return a >= AspectWide && a <= AspectSquare
}

// Resolution returns the output pixel dimensions for the aspect ratio.
func (a AspectRatio) Resolution() (width, height int) {
	switch a {
	case AspectVertical:
		return 1080, 1920
	case AspectSquare:
		return 1080, 1080
	default:
		return 1920, 1080
	}
}
