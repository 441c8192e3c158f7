package transfer

import (
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

const (
	// ChunkSize is the fixed payload size of a file chunk frame.
	ChunkSize = utils.DefaultChunkSize

	// DefaultFileName names a reassembled file when no metadata preceded it.
	DefaultFileName = "download"
)
