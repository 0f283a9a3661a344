package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/travelgc/internal/cli"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const appName = "travelgc"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "TRAVEL GC student trip presentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the slide deck and the registration form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	var deckPath string
	slides := &cobra.Command{
		Use:   "slides",
		Short: "Print the deck outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSlidesCommand(cmd.OutOrStdout(), deckPath)
		},
	}
	slides.Flags().StringVar(&deckPath, "deck", os.Getenv("DECK_PATH"), "Deck YAML file (embedded deck when empty)")
	cmd.AddCommand(slides)

	var secretLength int
	genSecret := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random value suitable for SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerateSecretCommand(cmd.OutOrStdout(), secretLength)
		},
	}
	genSecret.Flags().IntVar(&secretLength, "length", 48, "Secret length")
	cmd.AddCommand(genSecret)

	purge := &cobra.Command{
		Use:   "purge-sessions <db-path>",
		Short: "Delete expired sessions from a file-backed session store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunPurgeSessionsCommand(cmd.Context(), cmd.OutOrStdout(), args[0], time.Now())
		},
	}
	cmd.AddCommand(purge)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
