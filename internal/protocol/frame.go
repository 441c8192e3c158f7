// Package protocol defines the frames exchanged over a peer data channel and
// the codecs that put them on the wire.
package protocol

import "fmt"

// Kind discriminates the frame variants multiplexed over one data channel.
type Kind uint8

const (
	KindKeepalive Kind = iota + 1
	KindChat
	KindFileMeta
	KindFileChunk
	KindFileEnd
)

func (k Kind) String() string {
	switch k {
	case KindKeepalive:
		return "keepalive"
	case KindChat:
		return "chat"
	case KindFileMeta:
		return "file-meta"
	case KindFileChunk:
		return "file-chunk"
	case KindFileEnd:
		return "file-end"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is one application-level message. Only the field matching Kind is set.
type Frame struct {
	Kind Kind
	Text string
	Meta FileMetadata
	Data []byte
}

// Payload is a single data channel message as handed to or received from the
// transport.
type Payload struct {
	Data     []byte
	IsString bool
}

func Keepalive() Frame {
	return Frame{Kind: KindKeepalive}
}

func Chat(text string) Frame {
	return Frame{Kind: KindChat, Text: text}
}

func Meta(name, mimeType string, size uint64) Frame {
	return Frame{Kind: KindFileMeta, Meta: FileMetadata{Name: name, Type: mimeType, Size: size}}
}

func Chunk(data []byte) Frame {
	return Frame{Kind: KindFileChunk, Data: data}
}

func FileEnd() Frame {
	return Frame{Kind: KindFileEnd}
}
