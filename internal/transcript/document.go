package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Field is one key/value pair of a Document.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Document is a JSON object that keeps its keys in order. Persisted
// transcript files are read positionally by some consumers, so key order is
// part of the file format.
type Document struct {
	Fields []Field
}

// Get returns the raw value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Set replaces the value under key, appending the key if it is new.
func (d *Document) Set(key string, value interface{}) error {
	raw, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	for i := range d.Fields {
		if d.Fields[i].Key == key {
			d.Fields[i].Value = raw
			return nil
		}
	}
	d.Fields = append(d.Fields, Field{Key: key, Value: raw})
	return nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Duplicate keys keep
// their first position and last value, like most JSON decoders.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("transcript document must be a JSON object")
	}

	d.Fields = d.Fields[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if err := d.setRaw(key, value); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after transcript object")
	}
	return nil
}

// MarshalJSON encodes the fields in order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalValue(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record decodes the transcript view of the document.
func (d *Document) Record() (Record, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode transcript record: %w", err)
	}
	return rec, nil
}

// FromRecord builds a document holding text, language and segments in that
// order.
func FromRecord(rec Record) (*Document, error) {
	if rec.Segments == nil {
		rec.Segments = []Segment{}
	}
	doc := &Document{}
	if err := doc.Set("text", rec.Text); err != nil {
		return nil, err
	}
	if err := doc.Set("language", rec.Language); err != nil {
		return nil, err
	}
	if err := doc.Set("segments", rec.Segments); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) setRaw(key string, value json.RawMessage) error {
	for i := range d.Fields {
		if d.Fields[i].Key == key {
			d.Fields[i].Value = value
			return nil
		}
	}
	d.Fields = append(d.Fields, Field{Key: key, Value: value})
	return nil
}

// marshalValue encodes v without HTML escaping so transcripts keep their
// text readable on disk.
func marshalValue(v interface{}) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
