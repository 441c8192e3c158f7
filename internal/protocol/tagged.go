package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// TaggedCodec encodes every frame as a msgpack Message with an explicit type
// discriminant. Payload bytes are length-prefixed by msgpack, so no chat text
// or chunk content can be mistaken for a control frame.
type TaggedCodec struct{}

func (TaggedCodec) Name() string { return "tagged" }

func (TaggedCodec) Encode(f Frame) (Payload, error) {
	var (
		msg Message
		err error
	)

	switch f.Kind {
	case KindKeepalive:
		msg, err = NewMessage(MessageTypeKeepalive, nil)
	case KindChat:
		msg, err = NewMessage(MessageTypeChat, ChatPayload{Text: f.Text})
	case KindFileMeta:
		msg, err = NewMessage(MessageTypeFileMetadata, f.Meta)
	case KindFileChunk:
		msg, err = NewMessage(MessageTypeChunk, ChunkPayload{Bytes: f.Data})
	case KindFileEnd:
		msg, err = NewMessage(MessageTypeFileEnd, nil)
	default:
		return Payload{}, fmt.Errorf("encode %s: %w", f.Kind, ErrUnknownFrame)
	}
	if err != nil {
		return Payload{}, fmt.Errorf("encode %s: %w", f.Kind, err)
	}

	data, err := msgpack.Marshal(msg)
	if err != nil {
		return Payload{}, fmt.Errorf("marshal %s: %w", f.Kind, err)
	}
	return Payload{Data: data}, nil
}

func (TaggedCodec) Decode(p Payload) (Frame, error) {
	var msg Message
	if err := msgpack.Unmarshal(p.Data, &msg); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch msg.Type {
	case MessageTypeKeepalive:
		return Keepalive(), nil

	case MessageTypeChat:
		var chat ChatPayload
		if err := msg.DecodePayload(&chat); err != nil {
			return Frame{}, fmt.Errorf("%w: chat: %v", ErrMalformedFrame, err)
		}
		return Chat(chat.Text), nil

	case MessageTypeFileMetadata:
		var meta FileMetadata
		if err := msg.DecodePayload(&meta); err != nil {
			return Frame{}, fmt.Errorf("%w: metadata: %v", ErrMalformedFrame, err)
		}
		return Frame{Kind: KindFileMeta, Meta: meta}, nil

	case MessageTypeChunk:
		var chunk ChunkPayload
		if err := msg.DecodePayload(&chunk); err != nil {
			return Frame{}, fmt.Errorf("%w: chunk: %v", ErrMalformedFrame, err)
		}
		return Chunk(chunk.Bytes), nil

	case MessageTypeFileEnd:
		return FileEnd(), nil

	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownFrame, msg.Type)
	}
}
