package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/validate"
)

// Command creates the validate command for cross-checking the catalog
// against an exiftool CSV export.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [csv_file]",
		Short: "Validate catalog records against a CSV export",
		Long:  "Compare catalog records with an exiftool-style CSV export and report missing records, GPS mismatches and timestamp mismatches.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(settings, args[0])
		},
	}
}

func runValidate(settings *conf.Settings, csvPath string) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer ds.Close()

	fmt.Printf("Validating photos from: %s\n", csvPath)
	fmt.Println("============================================================")

	stats, err := validate.CompareCSV(ds, csvPath, func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return err
	}

	fmt.Println("============================================================")
	fmt.Printf("Total rows processed: %d\n", stats.TotalRows)
	fmt.Printf("Matched: %d\n", stats.Matched)
	if stats.Missing > 0 {
		fmt.Printf("Missing from DB: %d\n", stats.Missing)
	}
	if stats.GPSMismatch > 0 {
		fmt.Printf("GPS mismatches: %d\n", stats.GPSMismatch)
	}
	if stats.TimestampMismatch > 0 {
		fmt.Printf("Timestamp mismatches: %d\n", stats.TimestampMismatch)
	}

	if stats.Issues() == 0 {
		fmt.Println("All photos validated successfully, no issues found")
	} else {
		fmt.Printf("Found %d issues (see warnings above)\n", stats.Issues())
	}
	return nil
}
