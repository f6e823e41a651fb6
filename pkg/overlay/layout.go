package overlay

import "strings"

// Segment is one logical line group of the info panel text block.
type Segment struct {
	Text     string
	FontSize float64 // nominal size before auto-fit scaling
	Bold     bool
	Title    bool // the prominent first segment; tighter wrap limit
	FlagRoom bool // reserve inline space for a leading flag image
}

// SearchConfig bounds the auto-fit scale search.
type SearchConfig struct {
	MaxScale   float64
	MinScale   float64
	Step       float64
	LineHeight float64
	SegmentGap float64 // unscaled gap added between segments
}

// DefaultSearchConfig mirrors the layout defaults: grow up to 2.5x, never
// shrink below 0.5x, converge in 0.01 steps.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxScale:   2.5,
		MinScale:   0.5,
		Step:       0.01,
		LineHeight: 1.25,
		SegmentGap: 10,
	}
}

// Wrap limits: any segment beyond these counts as a forced shrink even when
// the total height would fit.
const (
	maxLinesBody  = 3
	maxLinesTitle = 2
)

// flagRoomFactor is the inline width reserved for the flag image, as a
// multiple of the segment's scaled font size.
const flagRoomFactor = 1.4

// SegmentLayout is the resolved form of one input segment.
type SegmentLayout struct {
	Lines    []string
	FontSize float64 // scaled
	Bold     bool
	Title    bool
	FlagRoom bool
}

// LayoutResult is the outcome of one auto-fit search.
type LayoutResult struct {
	Segments []SegmentLayout
	Scale    float64
	Width    float64 // widest measured line
	Height   float64
	Overflow bool // scale floor hit; block may exceed the box
}

// Layout packs segments into a maxW x maxH box by scanning scale factors
// downward from cfg.MaxScale in cfg.Step decrements. The first scale where
// the block fits and no segment breaks its wrap limit wins; reaching
// cfg.MinScale accepts the layout as best effort with Overflow set. The scan
// is deliberately linear: the search space is small and behavior at the fit
// boundary matters more than speed.
func (fs *FontSet) Layout(segments []Segment, maxW, maxH float64, cfg SearchConfig) LayoutResult {
	if len(segments) == 0 {
		return LayoutResult{Scale: 1.0}
	}

	scale := cfg.MaxScale
	for {
		atFloor := scale <= cfg.MinScale
		if atFloor {
			scale = cfg.MinScale
		}

		result, ok := fs.tryScale(segments, maxW, maxH, scale, cfg)
		if ok || atFloor {
			result.Overflow = atFloor && !ok
			return result
		}

		scale -= cfg.Step
	}
}

// tryScale lays the block out at one trial scale and reports whether it is
// acceptable.
func (fs *FontSet) tryScale(segments []Segment, maxW, maxH, scale float64, cfg SearchConfig) (LayoutResult, bool) {
	result := LayoutResult{
		Segments: make([]SegmentLayout, 0, len(segments)),
		Scale:    scale,
	}

	fits := true
	for i, seg := range segments {
		size := seg.FontSize * scale
		wrapW := maxW
		if seg.FlagRoom {
			wrapW -= size * flagRoomFactor
		}

		lines := fs.wrap(seg.Text, size, seg.Bold, wrapW)

		limit := maxLinesBody
		if seg.Title {
			limit = maxLinesTitle
		}
		if len(lines) > limit {
			fits = false
		}

		for _, line := range lines {
			w := fs.Measure(line, size, seg.Bold)
			if seg.FlagRoom {
				w += size * flagRoomFactor
			}
			if w > result.Width {
				result.Width = w
			}
		}

		result.Height += float64(len(lines)) * size * cfg.LineHeight
		if i > 0 {
			result.Height += cfg.SegmentGap
		}

		result.Segments = append(result.Segments, SegmentLayout{
			Lines:    lines,
			FontSize: size,
			Bold:     seg.Bold,
			Title:    seg.Title,
			FlagRoom: seg.FlagRoom,
		})
	}

	if result.Height > maxH {
		fits = false
	}
	return result, fits
}

// wrap greedily packs words into lines no wider than maxW. A single word
// wider than maxW becomes its own overflowing line; words are never split.
func (fs *FontSet) wrap(text string, size float64, bold bool, maxW float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		test := current + " " + word
		if fs.Measure(test, size, bold) > maxW {
			lines = append(lines, current)
			current = word
		} else {
			current = test
		}
	}
	return append(lines, current)
}
