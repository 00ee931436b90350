package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "stroopctl",
		Short: "CLI tool for the Stroop game API",
		Long: `stroopctl is a CLI tool for interacting with the Stroop game JSON API.

It covers users, rooms, game turns, chat, the leaderboard and live room
event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load user ID from file if not provided via flag/env
			if err := cfg.LoadUser(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.UserID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: STROOP_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserID, "user", cfg.UserID, "User ID to act as (env: STROOP_USER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserFile, "user-file", cfg.UserFile, "User ID file path (env: STROOP_USER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// output returns a formatter writing to the command's stdout
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
