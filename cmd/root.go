package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geostamp/geostamp/asset"
	"github.com/geostamp/geostamp/config"
	"github.com/geostamp/geostamp/pkg/export"
	"github.com/geostamp/geostamp/pkg/geo"
	"github.com/geostamp/geostamp/pkg/overlay"
	"github.com/geostamp/geostamp/pkg/staticmap"
	"github.com/geostamp/geostamp/pkg/weather"
)

var cfgFile string

// rootCmd renders a geotagged photo when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "geostamp",
	Short: "Stamp photos with a geotag overlay (mini-map, address, timestamp)",
	Long: `geostamp overlays a geotag info panel onto a photo: a mini-map centered
on the tagged coordinates, the resolved address, the capture timestamp, a
watermark badge and optionally the weather at the location.

The photo is cropped to 4:3 (landscape) or 3:4 (portrait) and the overlay is
drawn at export resolution. With --budget the output is re-encoded
iteratively until it fits the byte budget.

Examples:
  # Stamp a photo with resolved location data
  geostamp --image photo.jpg --lat -7.59711 --lng 110.949835 \
    --district Ngaglik --province "Jawa Tengah" --country Indonesia \
    --country-code ID --time 2024-03-15T14:30:00 --offset +07:00 -o out.jpg

  # Keep the export under 500 KB
  geostamp --image photo.jpg --lat -7.59711 --lng 110.949835 \
    --country Indonesia --time 2024-03-15T14:30:00 --offset +07:00 \
    --budget 512000

  # Start the HTTP render service
  geostamp serve --port 8080`,
	RunE: runRender,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.geostamp.yaml)")
	rootCmd.PersistentFlags().String("map-key", "", "static map API key (falls back to keyless tile rendering)")
	rootCmd.PersistentFlags().String("map-style", "roadmap", "map style (roadmap|satellite)")

	// Input
	rootCmd.Flags().StringP("image", "i", "", "photo to stamp (required)")
	rootCmd.Flags().Float64("lat", 0, "latitude in signed decimal degrees")
	rootCmd.Flags().Float64("lng", 0, "longitude in signed decimal degrees")
	rootCmd.Flags().String("district", "", "district name")
	rootCmd.Flags().String("city", "", "city name")
	rootCmd.Flags().String("province", "", "province name")
	rootCmd.Flags().String("country", "", "country name")
	rootCmd.Flags().String("country-code", "", "ISO-3166 alpha-2 country code")
	rootCmd.Flags().String("address", "", "full formatted address")
	rootCmd.Flags().String("time", "", "capture time, RFC3339 or 2006-01-02T15:04:05")
	rootCmd.Flags().String("tz", "", "timezone label, informational")
	rootCmd.Flags().String("offset", "+00:00", "UTC offset as +HH:MM")

	// Style
	rootCmd.Flags().Bool("12h", false, "12-hour clock")
	rootCmd.Flags().Bool("show-address", false, "include the address line")
	rootCmd.Flags().Bool("show-latlong", false, "include the coordinates line")
	rootCmd.Flags().Int("opacity", config.DefaultOpacity, "panel opacity, 0-100")
	rootCmd.Flags().String("watermark", "", "watermark badge text")
	rootCmd.Flags().String("variant", "bar", "overlay variant (bar|card)")
	rootCmd.Flags().Bool("smart-crop", false, "center the crop window on the detected subject")

	// Weather (optional; omit --temp-c to drop the weather block)
	rootCmd.Flags().Int("temp-c", 0, "temperature in Celsius")
	rootCmd.Flags().Int("temp-f", 0, "temperature in Fahrenheit")
	rootCmd.Flags().String("weather-icon", "", "weather icon code")
	rootCmd.Flags().String("weather-desc", "", "weather description")

	// Output
	rootCmd.Flags().StringP("out", "o", "", "output file (default: timestamp-derived name)")
	rootCmd.Flags().StringP("format", "f", "jpeg", "output format (jpeg|png|webp)")
	rootCmd.Flags().Float64("quality", 0.9, "encode quality, 0-1")
	rootCmd.Flags().Int("budget", 0, "maximum output size in bytes (0 = unconstrained)")

	for _, name := range []string{
		"map-key", "map-style", "image", "lat", "lng", "district", "city",
		"province", "country", "country-code", "address", "time", "tz",
		"offset", "12h", "show-address", "show-latlong", "opacity",
		"watermark", "variant", "smart-crop", "temp-c", "temp-f",
		"weather-icon", "weather-desc", "out", "format", "quality", "budget",
	} {
		if f := rootCmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(name, f)
		} else {
			viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".geostamp")
	}

	viper.SetEnvPrefix("GEOSTAMP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newCompositor wires the map source and asset loader from configuration.
func newCompositor() (*overlay.Compositor, error) {
	loader := asset.NewLoader(nil)

	var maps staticmap.Source
	if key := viper.GetString("map-key"); key != "" {
		maps = &staticmap.GoogleProvider{APIKey: key, Loader: loader}
	} else {
		maps = staticmap.TileRenderer{}
	}

	return overlay.New(maps, loader)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func runRender(cmd *cobra.Command, args []string) error {
	imagePath := viper.GetString("image")
	if imagePath == "" {
		return cmd.Help()
	}

	timeStr := viper.GetString("time")
	if timeStr == "" {
		return fmt.Errorf("--time is required")
	}

	offset := viper.GetString("offset")
	secs, err := geo.ParseUTCOffset(offset)
	if err != nil {
		return err
	}
	captured, err := parseTime(timeStr)
	if err != nil {
		return err
	}
	if captured.Location() == time.UTC && timeStr[len(timeStr)-1] != 'Z' {
		// Naive timestamps are taken as local to the given offset.
		captured = time.Date(captured.Year(), captured.Month(), captured.Day(),
			captured.Hour(), captured.Minute(), captured.Second(), 0,
			time.FixedZone("GMT"+offset, secs))
	}

	loc := geo.LocationData{
		Lat:         viper.GetFloat64("lat"),
		Lng:         viper.GetFloat64("lng"),
		District:    viper.GetString("district"),
		City:        viper.GetString("city"),
		Province:    viper.GetString("province"),
		Country:     viper.GetString("country"),
		CountryCode: viper.GetString("country-code"),
		Address:     viper.GetString("address"),
	}
	if loc.IsZero() {
		return fmt.Errorf("a resolved location is required (--lat/--lng or --address)")
	}

	dt := geo.DateTimeData{
		Time:       captured,
		Timezone:   viper.GetString("tz"),
		UTCOffset:  offset,
		TwelveHour: viper.GetBool("12h"),
	}

	style := overlay.Settings{
		ShowLatLong: viper.GetBool("show-latlong"),
		ShowAddress: viper.GetBool("show-address"),
		Opacity:     viper.GetInt("opacity"),
		Use24Hour:   !viper.GetBool("12h"),
		Watermark:   viper.GetString("watermark"),
		MapStyle:    staticmap.Style(viper.GetString("map-style")),
		SmartCrop:   viper.GetBool("smart-crop"),
	}
	if viper.GetString("variant") == "card" {
		style.Variant = overlay.VariantCard
	}

	var wx *weather.Data
	if cmd.Flags().Changed("temp-c") {
		tc := viper.GetInt("temp-c")
		tf := viper.GetInt("temp-f")
		if !cmd.Flags().Changed("temp-f") {
			tf = tc*9/5 + 32
		}
		wx = &weather.Data{
			TempC:       tc,
			TempF:       tf,
			Description: viper.GetString("weather-desc"),
			Icon:        viper.GetString("weather-icon"),
		}
	}

	return render(cmd, imagePath, loc, dt, style, wx)
}

func render(cmd *cobra.Command, imagePath string, loc geo.LocationData, dt geo.DateTimeData, style overlay.Settings, wx *weather.Data) error {
	compositor, err := newCompositor()
	if err != nil {
		return err
	}

	photo, err := openPhoto(imagePath)
	if err != nil {
		return err
	}

	format := export.Format(viper.GetString("format"))
	switch format {
	case export.FormatJPEG, export.FormatPNG, export.FormatWebP:
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	ctx := context.Background()

	var data []byte
	if budget := viper.GetInt("budget"); budget > 0 {
		res, err := export.EncodeUnderBudget(ctx, renderAtScale(ctx, compositor, photo, loc, dt, style, wx), format, budget)
		if err != nil {
			return err
		}
		if res.Oversized {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not reach %d bytes; wrote %d bytes at floor quality/scale\n", budget, len(res.Data))
		}
		data = res.Data
	} else {
		img, err := compositor.Composite(ctx, photo, loc, dt, style, wx)
		if err != nil {
			return err
		}
		data, err = export.Encode(img, format, viper.GetFloat64("quality"))
		if err != nil {
			return err
		}
	}

	out := viper.GetString("out")
	if out == "" {
		out = export.Filename(dt, format)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
