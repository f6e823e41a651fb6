package config

import "strings"

// AppVersion is the version of the service.
var AppVersion string // Or get it from version.txt during build

// AppName is the name of the service.
const AppName = "geostamp"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// DefaultWatermark is drawn in the badge when the caller supplies no text.
const DefaultWatermark = "GPS Map Camera"

// DefaultOpacity is the panel background alpha percentage used when the
// caller does not set one.
const DefaultOpacity = 70

// PreviewWidth is the display width previews are downsampled to before
// compositing.
const PreviewWidth = 1280

// Mini-map zoom levels per layout variant.
const (
	MapZoomBar  = 15
	MapZoomCard = 13
)

// HTTPTimeoutSeconds bounds every remote asset fetch.
const HTTPTimeoutSeconds = 15

// AssetCacheSize is the number of decoded remote assets kept in memory.
const AssetCacheSize = 64

// AssetFetchPerSecond rate limits outbound asset requests.
const AssetFetchPerSecond = 8
