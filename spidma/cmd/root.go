// Package cmd provides the command-line interface of spidma.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// appFs is the file system used for images and for the environment file.
var appFs = afero.NewOsFs()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spidma",
	Short: "spidma simulates a processor driving a burst serial peripheral.",
	Long: `spidma simulates a processor, a shared storage, and a serial ` +
		`peripheral with a block mover. It runs built-in scenarios and ` +
		`custom transfers, optionally from a storage image.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		return loadEnv(envFile)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env",
		"File with SPIDMA_ variables to load before reading the environment.")
}

// loadEnv loads the environment file if it exists.
func loadEnv(path string) error {
	if _, err := appFs.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Fatalf("Error: %v", err)
	}

	atexit.Exit(0)
}
