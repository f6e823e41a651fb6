package overlay

// geometry holds the resolved pixel boxes for one composite pass. All values
// derive from the rendered size, so preview and export land on the same
// proportions.
type geometry struct {
	w, h float64
	rs   float64 // relative scale against refWidth

	boxX, boxY, boxW, boxH float64
	pad                    float64
	corner                 float64

	mapX, mapY, mapW, mapH float64

	textX, textY, textW, textH float64

	weatherX, weatherW float64

	badgeX, badgeY, badgeW, badgeH float64
}

// weatherColFactor sizes the weather column relative to the info box height.
const weatherColFactor = 0.9

func computeGeometry(w, h int, s Settings, badgeTextW float64, hasWeather bool) geometry {
	g := geometry{w: float64(w), h: float64(h)}
	g.rs = g.w / refWidth

	ls := s.Layout
	margin := ls.Margin * g.rs
	g.pad = ls.Padding * g.rs
	g.boxH = g.h * ls.InfoBoxHeightRatio

	switch s.Variant {
	case VariantCard:
		g.boxX = margin
		g.boxW = g.w - 2*margin
		g.boxY = g.h - g.boxH - margin
		g.corner = 18 * g.rs
	default: // VariantBar
		g.boxX = 0
		g.boxW = g.w
		g.boxY = g.h - g.boxH
		g.corner = 0
	}

	inner := g.boxH - 2*g.pad
	g.mapX = g.boxX + g.pad
	g.mapY = g.boxY + g.pad
	g.mapH = inner
	g.mapW = inner * ls.MapWidthMultiplier

	if hasWeather {
		g.weatherW = g.boxH * weatherColFactor
	}
	g.weatherX = g.boxX + g.boxW - g.pad - g.weatherW

	g.textX = g.mapX + g.mapW + g.pad
	g.textY = g.boxY + g.pad
	g.textH = inner
	g.textW = g.weatherX - g.textX
	if hasWeather {
		g.textW -= g.pad
	}

	// Badge chip: right-aligned, sitting just above the panel.
	g.badgeH = 44 * g.rs
	g.badgeW = badgeTextW + g.badgeH + 2*g.pad
	g.badgeX = g.boxX + g.boxW - g.pad - g.badgeW
	if s.Variant == VariantCard {
		g.badgeY = g.boxY - margin/2 - g.badgeH
	} else {
		g.badgeY = g.boxY - g.badgeH - g.pad/2
	}

	return g
}
