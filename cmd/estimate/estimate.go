package estimate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
)

const (
	// Google charges $5 per 1000 requests for both the Geocoding and the
	// Time Zone API; the monthly free tier covers 20,000 requests total.
	costPerThousand = 5.0
	freeTierCalls   = 20000
)

// resolutionInfo describes one stored spatial index resolution for the
// estimate report.
type resolutionInfo struct {
	resolution  int
	area        string
	description string
}

var resolutions = []resolutionInfo{
	{3, "~12,000 km²", "Country level"},
	{6, "~290 km²", "Region level"},
	{9, "~11 km²", "City/neighborhood level"},
	{12, "~0.3 km²", "Street level"},
	{15, "~0.9 m²", "Building level"},
}

// Command creates the estimate command for projecting geocoding API cost.
func Command(settings *conf.Settings) *cobra.Command {
	var showDistribution bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate geocoding API calls and cost per resolution",
		Long:  "Count distinct spatial index cells among photos needing geocoding at every stored resolution and project the API call count and cost for each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(settings, showDistribution)
		},
	}

	cmd.Flags().BoolVar(&showDistribution, "show-distribution", false, "Show the most populated cells per resolution")

	return cmd
}

func runEstimate(settings *conf.Settings, showDistribution bool) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer ds.Close()

	totalPhotos, err := ds.CountPhotosNeedingGeocoding()
	if err != nil {
		return err
	}
	if totalPhotos == 0 {
		fmt.Println("No photos need geocoding")
		return nil
	}

	fmt.Printf("\nTotal photos needing geocoding: %d\n", totalPhotos)
	fmt.Println("======================================================================")

	for _, info := range resolutions {
		uniqueCells, err := ds.CountDistinctCells(info.resolution)
		if err != nil {
			return err
		}

		// One Geocoding call per cell; timezone lookup is local but the
		// projection keeps the original two-API model for comparability.
		apiCalls := uniqueCells * 2
		cost := float64(apiCalls) / 1000 * costPerThousand

		fmt.Printf("\nResolution %d (%s) - %s\n", info.resolution, info.area, info.description)
		fmt.Printf("  Unique locations: %d\n", uniqueCells)
		fmt.Printf("  API calls: %d (Geocoding + Timezone)\n", apiCalls)
		if apiCalls <= freeTierCalls {
			fmt.Printf("  Cost: $%.2f (within free tier)\n", cost)
		} else {
			fmt.Printf("  Cost: $%.2f (exceeds free tier)\n", cost)
		}

		if showDistribution && uniqueCells > 0 {
			if err := printDistribution(ds, info.resolution); err != nil {
				return err
			}
		}
	}

	fmt.Println("\n======================================================================")
	fmt.Println("\nRecommendation:")
	fmt.Println("  - Resolution 12 gives street-level precision")
	fmt.Printf("  - Free tier: %d API calls/month\n", freeTierCalls)
	fmt.Println("  - Choose the finest resolution that fits your free tier quota")
	return nil
}

func printDistribution(ds datastore.Interface, resolution int) error {
	distribution, err := ds.CellDistribution(resolution, 10)
	if err != nil {
		return err
	}
	if len(distribution) == 0 {
		return nil
	}

	fmt.Printf("  Top %d locations (resolution %d):\n", len(distribution), resolution)
	for _, item := range distribution {
		fmt.Printf("    %s: %d photos\n", item.Cell, item.PhotoCount)
	}
	return nil
}
