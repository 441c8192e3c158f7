package transfer

import (
	"context"

	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
)

// Channel is the outbound half of a peer link.
type Channel interface {
	Send(p protocol.Payload) error
}

// FlowController is implemented by channels that expose their send buffer.
// FileSender waits for a window before every frame when it is available.
type FlowController interface {
	WaitForWindow(ctx context.Context) error
}

// ProgressFunc receives a whole percentage in [0, 100].
type ProgressFunc func(percent int)

// OutgoingFile is a file fully read into memory, ready to be framed.
type OutgoingFile struct {
	Name string
	Type string
	Data []byte
}

// FileSender frames one file at a time onto a Channel.
type FileSender struct {
	channel   Channel
	codec     protocol.Codec
	chunkSize int
}

func NewFileSender(ch Channel, codec protocol.Codec, chunkSize int) *FileSender {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	return &FileSender{
		channel:   ch,
		codec:     codec,
		chunkSize: chunkSize,
	}
}

// Send emits one metadata frame, the file's chunks in offset order and one
// terminator. Progress is reported after each chunk is handed to the channel;
// an empty file reports 100 after the terminator.
func (s *FileSender) Send(ctx context.Context, file OutgoingFile, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(int) {}
	}

	total := len(file.Data)
	if err := s.sendFrame(ctx, protocol.Meta(file.Name, file.Type, uint64(total))); err != nil {
		return NewFileError("send metadata", file.Name, err)
	}

	for offset := 0; offset < total; offset += s.chunkSize {
		end := min(offset+s.chunkSize, total)
		if err := s.sendFrame(ctx, protocol.Chunk(file.Data[offset:end])); err != nil {
			return NewFileError("send chunk", file.Name, err)
		}
		onProgress(end * 100 / total)
	}

	if err := s.sendFrame(ctx, protocol.FileEnd()); err != nil {
		return NewFileError("send terminator", file.Name, err)
	}
	if total == 0 {
		onProgress(100)
	}
	return nil
}

func (s *FileSender) sendFrame(ctx context.Context, f protocol.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.codec.Encode(f)
	if err != nil {
		return err
	}

	if fc, ok := s.channel.(FlowController); ok {
		if err := fc.WaitForWindow(ctx); err != nil {
			return err
		}
	}
	return s.channel.Send(p)
}

// SendChat encodes a single chat frame onto ch.
func SendChat(ch Channel, codec protocol.Codec, text string) error {
	p, err := codec.Encode(protocol.Chat(text))
	if err != nil {
		return NewError("encode chat", err)
	}
	if err := ch.Send(p); err != nil {
		return NewError("send chat", err)
	}
	return nil
}
