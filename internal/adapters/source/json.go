package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/internal/domain/normalize"
)

// DecodeJSON decodes a JSON array whose elements are either named event
// objects or positional rows.
func DecodeJSON(payload []byte) ([]model.Event, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedPayload, err)
	}

	events := make([]model.Event, 0, len(items))
	for i, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '{':
			var obj map[string]any
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("%w: json item %d: %v", ErrMalformedPayload, i, err)
			}
			events = append(events, normalize.Named(obj))
		case '[':
			var cells []normalize.Cell
			if err := json.Unmarshal(raw, &cells); err != nil {
				return nil, fmt.Errorf("%w: json item %d: %v", ErrMalformedPayload, i, err)
			}
			events = append(events, normalize.Row(cells))
		default:
			return nil, fmt.Errorf("%w: json item %d is neither object nor array", ErrMalformedPayload, i)
		}
	}
	return events, nil
}
