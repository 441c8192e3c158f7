package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jeettech-root/QuickShare-P2P/internal/files"
	"github.com/jeettech-root/QuickShare-P2P/internal/invite"
	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

var flagCallFiles []string

var callCmd = &cobra.Command{
	Use:     "call <id|invite-link>",
	Aliases: []string{"c"},
	Short:   "Call a peer by identity or invite link",
	Long: `Call a peer and open an interactive chat once connected. Files given
with --file are sent as soon as the call connects.

Examples:
  quickshare call brave-red-fox-jumps
  quickshare call "https://quickshare.onrender.com/?call=brave-red-fox-jumps"
  quickshare call brave-red-fox-jumps --file report.pdf --file notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := invite.Parse(args[0])
		if err != nil {
			return err
		}

		var queued []files.FileInfo
		if len(flagCallFiles) > 0 {
			queued, err = files.ValidateFiles(flagCallFiles)
			if err != nil {
				return err
			}
			displayFileTable(queued)
		}

		cfg, err := LoadConfig(flags)
		if err != nil {
			return err
		}

		conn, err := Connect(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer conn.Close()

		return runChat(cmd.Context(), conn, chatOptions{
			Title:  "Calling " + target,
			Target: target,
			Files:  queued,
		}, slog.Default())
	},
}

func displayFileTable(fileInfos []files.FileInfo) {
	items := make([]ui.FileTableItem, len(fileInfos))
	for i, f := range fileInfos {
		items[i] = ui.FileTableItem{Index: i + 1, Name: f.Name, Size: f.Size, Type: f.Type}
	}
	fmt.Println()
	ui.RenderFileTable(items)
	ui.PrintInfo(fmt.Sprintf("%d file(s), %s in total", len(fileInfos), utils.FormatSize(files.GetTotalSize(fileInfos))))
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringArrayVarP(&flagCallFiles, "file", "f", nil, "File to send once connected (repeatable)")
}
