package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/stroopgame/internal/api/request"
	"github.com/mcoot/stroopgame/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameRoundCmd())
	cmd.AddCommand(newGameNextCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameGetCmd("scoreboard", "Show the scoreboard", "/game/scoreboard", func() any { return &response.Scoreboard{} }))
	cmd.AddCommand(newGameGetCmd("winner", "Show the winner of the last game", "/game/winner", func() any { return &response.Winner{} }))
	cmd.AddCommand(newGameGetCmd("current", "Show whose turn it is", "/game/current-player", func() any { return &response.Player{} }))

	return cmd
}

func newGameStartCmd() *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "start <code>",
		Short: "Start a game in the room (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.StartGameRequest{RoundsPerPlayer: rounds}
			var result response.StartGame

			if err := client.Room(args[0]).Post("/game", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", 0, "Rounds per player (server default when 0)")

	return cmd
}

func newGameRoundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "round <code>",
		Short: "Show the round in play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Round

			if err := client.Room(args[0]).Get("/game/round", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <code>",
		Short: "Ask for a fresh round (current player only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Round

			if err := client.Room(args[0]).Post("/game/round", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	var roundID string
	var seconds float64

	cmd := &cobra.Command{
		Use:   "answer <code> <option>",
		Short: "Answer the round in play",
		Long: `Answer the round in play. The option is either an option ID or its
display number (1 or 2). Without --round the current round is used.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, option := args[0], args[1]

			// Resolve display numbers against the current round
			order, numErr := strconv.Atoi(option)
			if roundID == "" || numErr == nil {
				var current response.Round
				if err := client.Room(code).Get("/game/round", &current); err != nil {
					return err
				}
				if current.Round == nil {
					return fmt.Errorf("no round in play")
				}
				if roundID == "" {
					roundID = string(current.Round.RoundID)
				}
				if numErr == nil {
					if order < 1 || order > len(current.Round.Options) {
						return fmt.Errorf("option must be between 1 and %d", len(current.Round.Options))
					}
					option = string(current.Round.Options[order-1].OptionID)
				}
			}

			req := request.AnswerRequest{
				RoundID:             roundID,
				OptionID:            option,
				ResponseTimeSeconds: seconds,
			}
			var result response.AnswerResult

			if err := client.Room(code).Post("/game/answers", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&roundID, "round", "", "Round ID (defaults to the round in play)")
	cmd.Flags().Float64Var(&seconds, "time", 1, "Response time in seconds")

	return cmd
}

// newGameGetCmd builds the read-only game commands. newResult returns a
// pointer to the response type.
func newGameGetCmd(use, short, suffix string, newResult func() any) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := newResult()

			if err := client.Room(args[0]).Get(suffix, result); err != nil {
				return err
			}

			output(cmd).Print(deref(result))
			return nil
		},
	}
}

func deref(v any) any {
	switch p := v.(type) {
	case *response.Scoreboard:
		return *p
	case *response.Winner:
		return *p
	case *response.Player:
		return *p
	}
	return v
}
