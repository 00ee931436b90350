package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/stroopgame/internal/api/response"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}

	cmd.AddCommand(newUserAuthCmd("login", "Log in, creating the user if needed", "/users/login"))
	cmd.AddCommand(newUserAuthCmd("register", "Register a new user", "/users/register"))
	cmd.AddCommand(newUserMeCmd())
	cmd.AddCommand(newUserStatsCmd())

	return cmd
}

// newUserAuthCmd builds login and register, which both save the user ID for
// later commands
func newUserAuthCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": args[0]}
			var result response.User

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			if err := cfg.SaveUser(result.ID); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUserMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.User

			if err := client.Get("/users/me", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUserStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [user-id]",
		Short: "Show lifetime stats (defaults to the current user)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := cfg.UserID
			if len(args) == 1 {
				userID = args[0]
			}
			if userID == "" {
				return fmt.Errorf("not logged in: run 'user login' or pass a user ID")
			}

			var result response.UserStats

			if err := client.Get("/users/"+url.PathEscape(userID)+"/stats", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var take int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the lifetime leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.LeaderboardEntry

			if err := client.Get(fmt.Sprintf("/leaderboard?take=%d", take), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&take, "take", 10, "Number of entries")

	return cmd
}
