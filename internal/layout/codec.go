package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned by Decode for a blank payload.
var ErrEmptyDocument = errors.New("layout: empty document")

// Decode parses a layout service envelope. Attributes the model does not
// name are kept and written back by Encode.
func Decode(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode layout document: %w", err)
	}
	return &doc, nil
}

// Encode serializes the document back into the envelope shape.
func Encode(doc *Document) ([]byte, error) {
	b, err := marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode layout document: %w", err)
	}
	return b, nil
}

// Marshal encodes v the way Encode does: no HTML escaping, since rich-text
// fields carry markup.
func Marshal(v any) ([]byte, error) {
	return marshal(v)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// mustMarshal is for values built in this package from strings, bools and
// plain maps, which always encode.
func mustMarshal(v any) json.RawMessage {
	b, err := marshal(v)
	if err != nil {
		panic(fmt.Sprintf("layout: encode %T: %v", v, err))
	}
	return b
}
