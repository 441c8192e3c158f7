package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeettech-root/QuickShare-P2P/internal/transfer"
	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <text>",
	Short: "Send feedback to the relay operators",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return transfer.WrapError("send feedback", ErrSignaling, "feedback text is empty")
		}

		cfg, err := LoadConfig(flags)
		if err != nil {
			return err
		}

		conn, err := Connect(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}

		err = conn.Client.SendFeedback(text)
		conn.Close()
		if err != nil {
			return transfer.NewError("send feedback", err)
		}

		ui.PrintSuccess("Feedback sent, thank you!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
}
