package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/jeettech-root/QuickShare-P2P/internal/invite"
	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
	"github.com/jeettech-root/QuickShare-P2P/internal/signaling"
	"github.com/jeettech-root/QuickShare-P2P/internal/transfer"
	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

var ErrSignaling = errors.New("signaling error")

// Connection is a live relay session with an assigned identity.
type Connection struct {
	Client   *signaling.Client
	Handler  *signaling.Handler
	Config   *config.Config
	Identity string
}

func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, transfer.NewError("load config", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}

// Connect dials the relay and waits for the identity it assigns.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Connection, error) {
	sp := ui.Connecting("Connecting to relay...")
	defer sp.Stop()

	client := signaling.NewClient(cfg.RelayURL, protocol.ClientTypeCLI, logger)
	if err := client.Connect(ctx); err != nil {
		return nil, transfer.NewError("connect to relay", err)
	}

	handler := signaling.NewHandler(client)
	go handler.Start()
	sp.SetMessage("Waiting for an identity...")

	conn := &Connection{Client: client, Handler: handler, Config: cfg}

	select {
	case id, ok := <-handler.Identity:
		if !ok {
			client.Close()
			return nil, transfer.WrapError("connect to relay", ErrSignaling, "connection closed before an identity was assigned")
		}
		conn.Identity = id
		sp.Success("Connected to relay")

	case errMsg := <-handler.Error:
		client.Close()
		return nil, transfer.WrapError("connect to relay", ErrSignaling, errMsg)

	case <-time.After(time.Duration(utils.SignalTimeout) * time.Second):
		client.Close()
		return nil, transfer.WrapError("connect to relay", ErrSignaling, "timed out waiting for an identity")

	case <-ctx.Done():
		client.Close()
		return nil, ctx.Err()
	}

	return conn, nil
}

// InviteLink is the shareable link for this connection's identity.
func (c *Connection) InviteLink() string {
	link, err := invite.Build(c.Config.InviteBase, c.Identity)
	if err != nil {
		return ""
	}
	return link
}

func (c *Connection) Close() {
	c.Client.Close()
}
