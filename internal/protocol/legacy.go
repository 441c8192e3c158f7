package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Markers of the browser wire format. Frames carry no tag, so the kind is
// inferred from the payload text.
const (
	legacyKeepalive  = "ping"
	legacyChatPrefix = `{"text":`
	legacyFileEnd    = "file-end"
	legacyMetaMarker = `{"meta":`
)

// LegacyCodec speaks the browser client's format. Classification order is
// significant: keepalive, chat prefix, terminator, metadata substring, and
// only then an opaque chunk. A chunk whose bytes collide with one of the
// markers is misclassified; use TaggedCodec between peers that support it.
type LegacyCodec struct{}

type legacyChat struct {
	Text string `json:"text"`
}

// legacyInbound accepts any JSON value for text; browsers send whatever
// the other page put there.
type legacyInbound struct {
	Text json.RawMessage `json:"text"`
}

type legacyMeta struct {
	Meta *FileMetadata `json:"meta"`
}

func (LegacyCodec) Name() string { return "legacy" }

func (LegacyCodec) Encode(f Frame) (Payload, error) {
	switch f.Kind {
	case KindKeepalive:
		return Payload{Data: []byte(legacyKeepalive), IsString: true}, nil
	case KindChat:
		return encodeLegacyJSON(legacyChat{Text: f.Text})
	case KindFileMeta:
		meta := f.Meta
		return encodeLegacyJSON(legacyMeta{Meta: &meta})
	case KindFileChunk:
		return Payload{Data: f.Data}, nil
	case KindFileEnd:
		return Payload{Data: []byte(legacyFileEnd), IsString: true}, nil
	default:
		return Payload{}, fmt.Errorf("encode %s: %w", f.Kind, ErrUnknownFrame)
	}
}

// Decode classifies any payload, binary or text, the way the browser does.
func (LegacyCodec) Decode(p Payload) (Frame, error) {
	s := string(p.Data)

	if s == legacyKeepalive {
		return Keepalive(), nil
	}

	if strings.HasPrefix(s, legacyChatPrefix) {
		var chat legacyInbound
		if err := json.Unmarshal(p.Data, &chat); err != nil {
			return Frame{}, fmt.Errorf("%w: chat: %v", ErrMalformedFrame, err)
		}
		return Chat(legacyText(chat.Text)), nil
	}

	if s == legacyFileEnd {
		return FileEnd(), nil
	}

	if strings.Contains(s, legacyMetaMarker) {
		var parsed legacyMeta
		if err := json.Unmarshal(p.Data, &parsed); err != nil {
			return Frame{}, fmt.Errorf("%w: metadata: %v", ErrMalformedFrame, err)
		}
		if parsed.Meta != nil {
			return Frame{Kind: KindFileMeta, Meta: *parsed.Meta}, nil
		}
		// no meta object: falls through to a chunk
	}

	return Chunk(p.Data), nil
}

// legacyText renders a non-string text value as its compact JSON form.
func legacyText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// encodeLegacyJSON mirrors JSON.stringify: no HTML escaping, no trailing newline.
func encodeLegacyJSON(v any) (Payload, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Payload{}, err
	}
	return Payload{Data: bytes.TrimRight(buf.Bytes(), "\n"), IsString: true}, nil
}
