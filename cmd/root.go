package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/photoindex-go/cmd/estimate"
	"github.com/tphakala/photoindex-go/cmd/file"
	"github.com/tphakala/photoindex-go/cmd/geocode"
	"github.com/tphakala/photoindex-go/cmd/process"
	"github.com/tphakala/photoindex-go/cmd/validate"
	"github.com/tphakala/photoindex-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photoindex",
		Short: "PhotoIndex CLI",
		Long:  "Batch photo catalog: metadata extraction, spatial indexing, perceptual fingerprinting and geocoding enrichment.",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		process.Command(settings),
		file.Command(settings),
		geocode.Command(settings),
		validate.Command(settings),
		estimate.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Parse the command line flags
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}

		// Re-validate after flags overrode file-based settings
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "database", viper.GetString("output.sqlite.path"), "Path to SQLite catalog database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
