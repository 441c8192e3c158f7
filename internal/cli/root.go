package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
	"github.com/jeettech-root/QuickShare-P2P/internal/version"
)

// flags shared by every command that talks to the relay
var flags config.Options

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quickshare",
	Short: "Peer-to-peer chat and file sharing over WebRTC",
	Long: `QuickShare connects two devices directly over a WebRTC data channel.
A small relay hands out memorable identities and forwards the connection
handshake; chat messages and files never pass through it.

Browser peers and other CLI peers can call each other.`,
	Version: version.Version,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.Domain, "domain", "d", "", "Relay domain")
	pf.StringVar(&flags.RelayURL, "relay-url", "", "Relay websocket URL (overrides --domain)")
	pf.StringVarP(&flags.STUNServer, "stun", "s", "", "Custom STUN server")
	pf.StringVarP(&flags.TURNServer, "turn", "t", "", "Custom TURN server")
	pf.StringVarP(&flags.TURNUser, "turn-user", "u", "", "TURN username")
	pf.StringVarP(&flags.TURNPass, "turn-pass", "p", "", "TURN password")
	pf.BoolVarP(&flags.ForceRelay, "relay", "r", false, "Force relay mode")
	pf.StringVarP(&flags.DisplayName, "name", "n", "", "Name shown to the peers you call")
	pf.StringVarP(&flags.OutputDir, "dir", "o", "", "Directory for received files")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}
