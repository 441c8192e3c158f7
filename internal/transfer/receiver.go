package transfer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

// ReceivedFile is a reassembled inbound file.
type ReceivedFile struct {
	Name string
	Type string
	Data []byte
}

// Save writes the file into dir under a name that does not collide with an
// existing file. Only the base of the peer-supplied name is used.
func (f ReceivedFile) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", NewFileError("create directory", dir, err)
	}

	path := utils.GetUniqueFilename(dir, utils.SafeFilename(f.Name, DefaultFileName))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", NewFileError("save", f.Name, fmt.Errorf("%w: %v", ErrSaveFailed, err))
	}
	return path, nil
}

// Delivery is what a single inbound frame produced.
type Delivery struct {
	Chat *ChatMessage
	File *ReceivedFile

	// Progress is valid when ProgressChanged is set.
	Progress        int
	ProgressChanged bool
}

// Receiver reassembles inbound frames. Metadata sits in a single pending
// slot and chunks are matched to it purely by arrival order.
type Receiver struct {
	chat *ChatLog

	pending  *protocol.FileMetadata
	buf      bytes.Buffer
	progress int
}

func NewReceiver(chat *ChatLog) *Receiver {
	if chat == nil {
		chat = NewChatLog()
	}
	return &Receiver{chat: chat}
}

func (r *Receiver) Accept(f protocol.Frame) Delivery {
	switch f.Kind {
	case protocol.KindChat:
		msg := r.chat.Append(Remote, f.Text)
		return Delivery{Chat: &msg}

	case protocol.KindFileMeta:
		meta := f.Meta
		r.pending = &meta
		if r.buf.Len() == 0 && r.progress != 0 {
			r.progress = 0
			return Delivery{Progress: 0, ProgressChanged: true}
		}

	case protocol.KindFileChunk:
		r.buf.Write(f.Data)
		return r.chunkProgress()

	case protocol.KindFileEnd:
		return r.finish()
	}

	// keepalive and anything unrecognised touch nothing
	return Delivery{}
}

// chunkProgress is only known when the metadata carried a size.
func (r *Receiver) chunkProgress() Delivery {
	if r.pending == nil || r.pending.Size == 0 {
		return Delivery{}
	}

	p := int(uint64(r.buf.Len()) * 100 / r.pending.Size)
	p = min(p, 99)
	if p <= r.progress {
		return Delivery{}
	}
	r.progress = p
	return Delivery{Progress: p, ProgressChanged: true}
}

func (r *Receiver) finish() Delivery {
	file := &ReceivedFile{
		Name: DefaultFileName,
		Data: bytes.Clone(r.buf.Bytes()),
	}
	if file.Data == nil {
		file.Data = []byte{}
	}
	if r.pending != nil {
		if r.pending.Name != "" {
			file.Name = r.pending.Name
		}
		file.Type = r.pending.Type
	}

	r.buf.Reset()
	r.pending = nil
	r.progress = 100

	return Delivery{File: file, Progress: 100, ProgressChanged: true}
}

// Pending returns the metadata waiting for its terminator, if any.
func (r *Receiver) Pending() (protocol.FileMetadata, bool) {
	if r.pending == nil {
		return protocol.FileMetadata{}, false
	}
	return *r.pending, true
}

// Buffered reports how many chunk bytes await a terminator.
func (r *Receiver) Buffered() int {
	return r.buf.Len()
}
