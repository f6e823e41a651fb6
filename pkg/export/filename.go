package export

import (
	"fmt"

	"github.com/geostamp/geostamp/pkg/geo"
)

// Filename derives the export file name from the capture timestamp:
// YYYYMMDD_HHMMByGPSMapCamera.<ext>.
func Filename(dt geo.DateTimeData, format Format) string {
	date, clock := dt.FormatCompact()

	ext := "jpg"
	switch format {
	case FormatPNG:
		ext = "png"
	case FormatWebP:
		ext = "webp"
	}

	return fmt.Sprintf("%s_%sByGPSMapCamera.%s", date, clock, ext)
}
