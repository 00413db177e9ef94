package file

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tphakala/photoindex-go/internal/conf"
	"github.com/tphakala/photoindex-go/internal/datastore"
	"github.com/tphakala/photoindex-go/internal/ingest"
)

// Command creates the file command for ingesting a single photo.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [photo]",
		Short: "Ingest a single photo",
		Long:  "Ingest one image file into the catalog, keyed relative to its containing directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input.Path = args[0]
			return runFile(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the file command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVarP(&settings.Input.ForceReprocess, "force", "f", false, "Reprocess the photo even when already fully processed")
}

func runFile(settings *conf.Settings) error {
	if !ingest.IsImageFile(settings.Input.Path) {
		return fmt.Errorf("not a recognized image file: %s", settings.Input.Path)
	}

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer ds.Close()

	service := ingest.New(ds, nil)

	absPath, err := filepath.Abs(settings.Input.Path)
	if err != nil {
		return err
	}

	result, err := service.ProcessSinglePhoto(absPath, filepath.Dir(absPath), settings.Input.ForceReprocess)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", result.Photo.SourcePath, result.Action)
	return nil
}
