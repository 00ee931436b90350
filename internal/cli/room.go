package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/stroopgame/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomActionCmd("join", "Join a room", "/join"))
	cmd.AddCommand(newRoomShowCmd())
	cmd.AddCommand(newRoomPlayersCmd())
	cmd.AddCommand(newRoomActionCmd("reset", "Reset a room for a new game (owner only)", "/reset"))

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Post("/rooms", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

// newRoomActionCmd builds the POST commands that return the updated room
func newRoomActionCmd(use, short, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Room(args[0]).Post(suffix, nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Room(args[0]).Get("", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players <code>",
		Short: "List room players in seat order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.RoomPlayer

			if err := client.Room(args[0]).Get("/players", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
