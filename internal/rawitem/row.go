package rawitem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Cell is one labeled value of a spreadsheet row. Value holds the textual
// form of the original JSON value: strings verbatim, numbers and booleans as
// their literal text, null as "".
type Cell struct {
	Name  string
	Value string

	raw json.RawMessage
}

// Row is an ordered set of cells. Column order is preserved through JSON
// decoding and encoding.
type Row []Cell

// NewRow builds a row from alternating name/value pairs.
func NewRow(pairs ...string) Row {
	row := make(Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		row = append(row, Cell{Name: pairs[i], Value: pairs[i+1]})
	}
	return row
}

// Get returns the value of the first column named name.
func (r Row) Get(name string) (string, bool) {
	for _, cell := range r {
		if cell.Name == name {
			return cell.Value, true
		}
	}
	return "", false
}

// Names lists the column names in order.
func (r Row) Names() []string {
	out := make([]string, len(r))
	for i, cell := range r {
		out[i] = cell.Name
	}
	return out
}

// MarshalJSON writes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cell.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(cell.raw) > 0 {
			buf.Write(cell.raw)
			continue
		}
		value, err := json.Marshal(cell.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode row: expected object, got %v", tok)
	}
	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode row key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode row: unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode row column %q: %w", key, err)
		}
		row = append(row, Cell{Name: key, Value: cellText(raw), raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	*r = row
	return nil
}

func cellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return strings.TrimSpace(string(trimmed))
	}
	return compact.String()
}
