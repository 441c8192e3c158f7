package protocol

import "github.com/vmihailenco/msgpack/v5"

// Tagged wire types. Each data channel message carries exactly one Message.
const (
	MessageTypeKeepalive    = "keepalive"
	MessageTypeChat         = "chat"
	MessageTypeFileMetadata = "file_metadata"
	MessageTypeChunk        = "chunk"
	MessageTypeFileEnd      = "file_end"
)

// FileMetadata announces the file whose chunks follow.
type FileMetadata struct {
	Name string `msgpack:"name" json:"name"`
	Type string `msgpack:"type" json:"type"`

	// Size is only carried by the tagged codec; browser peers never send it.
	Size uint64 `msgpack:"size" json:"-"`
}

// Message represents all tagged data channel messages
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// ChatPayload is a single chat line
type ChatPayload struct {
	Text string `msgpack:"text"`
}

// ChunkPayload represents a file chunk
type ChunkPayload struct {
	Bytes []byte `msgpack:"bytes"`
}

// DecodePayload decodes the message payload into the provided struct
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a new Message with the given type and payload.
// A nil payload produces a bare message.
func NewMessage(t string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}

	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:    t,
		Payload: b,
	}, nil
}
