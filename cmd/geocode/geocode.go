package geocode

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/geocode"
)

// Command creates the geocode command for enriching photos with location names.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Reverse-geocode photos with coordinates",
		Long:  "Group photos by spatial index cell and reverse-geocode each distinct cell center once, storing the formatted address, country code and timezone-corrected capture time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeocode(cmd.Context(), settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the geocode command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVar(&settings.Geocoding.Recalculate, "recalculate", false, "Re-geocode photos that already have a location")
	cmd.Flags().StringVar(&settings.Geocoding.APIKey, "api-key", viper.GetString("geocoding.apikey"), "Geocoding provider API key")
	cmd.Flags().IntVar(&settings.Geocoding.Resolution, "resolution", viper.GetInt("geocoding.resolution"), "Spatial index resolution used to group photos (3, 6, 9, 12 or 15)")
	cmd.Flags().IntVar(&settings.Geocoding.BatchSize, "batch-size", viper.GetInt("geocoding.batchsize"), "Photos per bulk catalog update")
}

func runGeocode(ctx context.Context, settings *conf.Settings) error {
	provider, err := geocode.NewGoogleProvider(&settings.Geocoding)
	if err != nil {
		return err
	}

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer ds.Close()

	service, err := geocode.New(ds, provider, &settings.Geocoding, func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return err
	}

	stats, err := service.GeocodePhotos(ctx, settings.Geocoding.Recalculate)
	if err != nil {
		return err
	}

	fmt.Println("============================================================")
	fmt.Printf("Photos needing geocoding: %d\n", stats.TotalPhotos)
	fmt.Printf("Geocoded: %d\n", stats.ProcessedPhotos)
	fmt.Printf("Skipped: %d\n", stats.SkippedPhotos)
	fmt.Printf("API calls: %d\n", stats.APICalls)
	if stats.Errors > 0 {
		fmt.Printf("Errors: %d\n", stats.Errors)
		for _, detail := range stats.ErrorDetails {
			fmt.Println(" ", detail)
		}
	}
	return nil
}
