package process

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/ingest"
)

// Command creates the process command for ingesting a directory of photos.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [directory]",
		Short: "Ingest all photos in a directory",
		Long:  "Recursively scan a directory for image files and ingest them into the catalog: metadata, spatial index cells and perceptual fingerprints.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input.Path = args[0]
			return runProcess(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the process command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVarP(&settings.Input.ForceReprocess, "force", "f", false, "Reprocess photos already fully processed")
}

func runProcess(settings *conf.Settings) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer ds.Close()

	service := ingest.New(ds, func(msg string) {
		fmt.Println(msg)
	})

	stats, err := service.ProcessDirectory(settings.Input.Path, settings.Input.ForceReprocess)
	if err != nil {
		return err
	}

	fmt.Println("============================================================")
	fmt.Printf("Total files found: %d\n", stats.TotalFiles)
	fmt.Printf("Created: %d\n", stats.Created)
	fmt.Printf("Updated: %d\n", stats.Updated)
	fmt.Printf("Skipped: %d\n", stats.Skipped)
	if stats.Errors > 0 {
		fmt.Printf("Errors: %d\n", stats.Errors)
		for _, detail := range stats.ErrorDetails {
			fmt.Println(" ", detail)
		}
	}
	return nil
}
