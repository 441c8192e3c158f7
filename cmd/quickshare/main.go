package main

import (
	"log/slog"

	"github.com/jeettech-root/QuickShare-P2P/internal/cli"
	"github.com/jeettech-root/QuickShare-P2P/internal/logging"
)

func main() {
	// quiet by default so logs do not fight the terminal UI
	logging.Init(slog.LevelError)
	cli.Execute()
}
