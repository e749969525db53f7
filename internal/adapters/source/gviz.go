package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/internal/domain/normalize"
)

// GvizURL returns the visualization endpoint of a spreadsheet.
func GvizURL(sheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/gviz/tq?tqx=out:json"
}

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Rows []struct {
			C []*struct {
				V any `json:"v"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// Unwrap strips the JavaScript callback around a gviz payload, keeping the
// text between the first '{' and the last '}'.
func Unwrap(payload []byte) ([]byte, error) {
	start := bytes.IndexByte(payload, '{')
	end := bytes.LastIndexByte(payload, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: gviz: no JSON object in payload", ErrMalformedPayload)
	}
	return payload[start : end+1], nil
}

// DecodeGviz decodes a gviz response; rows are positional per schema v1.
func DecodeGviz(payload []byte) ([]model.Event, error) {
	body, err := Unwrap(payload)
	if err != nil {
		return nil, err
	}
	var resp gvizResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: gviz: %v", ErrMalformedPayload, err)
	}
	if strings.EqualFold(resp.Status, "error") {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, strings.TrimSpace(e.Reason+" "+e.DetailedMessage))
		}
		return nil, fmt.Errorf("%w: gviz status error: %s", ErrMalformedPayload, strings.Join(msgs, "; "))
	}
	if resp.Table == nil {
		return nil, fmt.Errorf("%w: gviz: missing table", ErrMalformedPayload)
	}

	events := make([]model.Event, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		cells := make([]normalize.Cell, len(r.C))
		for i, c := range r.C {
			if c != nil {
				cells[i] = c.V
			}
		}
		events = append(events, normalize.Row(cells))
	}
	return events, nil
}
