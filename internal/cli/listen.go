package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
)

var flagAutoAccept bool

var listenCmd = &cobra.Command{
	Use:     "listen",
	Aliases: []string{"l"},
	Short:   "Wait for a peer to call you",
	Long: `Connect to the relay, print your identity and invite link, and wait
for a call. Incoming calls are accepted with /accept unless --yes is set.

Examples:
  quickshare listen
  quickshare listen --yes --dir ~/Downloads`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(flags)
		if err != nil {
			return err
		}

		conn, err := Connect(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer conn.Close()

		fmt.Println(ui.IdentityInfo{ID: conn.Identity, Invite: conn.InviteLink()}.View())

		return runChat(cmd.Context(), conn, chatOptions{
			Title:      "Listening",
			AutoAccept: flagAutoAccept,
		}, slog.Default())
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().BoolVarP(&flagAutoAccept, "yes", "y", false, "Accept incoming calls without asking")
}
