package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/stroopgame/internal/api/request"
	"github.com/mcoot/stroopgame/internal/api/response"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Room chat commands",
	}

	cmd.AddCommand(newChatSendCmd())
	cmd.AddCommand(newChatListCmd())

	return cmd
}

func newChatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <code> <message...>",
		Short: "Send a chat message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.ChatRequest{Text: strings.Join(args[1:], " ")}
			var result response.ChatMessage

			if err := client.Room(args[0]).Post("/messages", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newChatListCmd() *cobra.Command {
	var take int

	cmd := &cobra.Command{
		Use:   "list <code>",
		Short: "Show recent chat messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.ChatMessage

			if err := client.Room(args[0]).Get(fmt.Sprintf("/messages?take=%d", take), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&take, "take", 50, "Number of messages")

	return cmd
}
