package responseformat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Output formats accepted by Write
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
	FormatText    = "text"
)

// TextWriter is implemented by values with a human-readable rendering
type TextWriter interface {
	WriteText(w io.Writer) error
}

// Formatter handles encoding and writing results in JSON, MessagePack or text
type Formatter struct {
	// Indent pretty-prints JSON output
	Indent bool
}

// NewFormatter creates a new result formatter
func NewFormatter() *Formatter {
	return &Formatter{Indent: true}
}

// Write encodes data to w in the named format. JSON is the default format.
func (f *Formatter) Write(w io.Writer, format string, data any) error {
	switch format {
	case "", FormatJSON:
		return f.writeJSON(w, data)
	case FormatMsgPack:
		return f.writeMsgPack(w, data)
	case FormatText:
		return f.writeText(w, data)
	default:
		return fmt.Errorf("unknown output format %q (want json, msgpack or text)", format)
	}
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}

func (f *Formatter) writeText(w io.Writer, data any) error {
	if tw, ok := data.(TextWriter); ok {
		return tw.WriteText(w)
	}
	_, err := fmt.Fprintf(w, "%+v\n", data)
	return err
}
