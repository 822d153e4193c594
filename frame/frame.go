package frame

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// infoBodyLength bounds the body preview in Frame.Info.
const infoBodyLength = 20

// Frame is a single STOMP frame: a command, headers and an opaque body.
//
// Headers exist in two alternative representations. The plain map holds a
// deduplicated, unordered view. Raw headers, when set, hold the exact
// ordered name/value pairs as they appear on the wire, duplicates
// included, and are authoritative until Unraw is called: while raw
// headers are present, Headers folds them with the first occurrence of a
// name winning, and SetHeaders only updates the dormant map.
//
// The frame's version selects the text codec and header escaping applied
// to the command and header text during Render. The body is carried
// verbatim and never encoded.
//
// A Frame is not safe for concurrent mutation; rendering is pure and may
// run concurrently once the fields stop changing.
type Frame struct {
	command    string
	headers    map[string]string
	rawHeaders []HeaderPair
	body       []byte
	version    Version
}

// New returns a frame with the given command, no headers, an empty body,
// no raw headers and the default protocol version.
func New(command string) *Frame {
	return &Frame{
		command: command,
		headers: make(map[string]string, 8),
		version: DefaultVersion,
	}
}

func (f *Frame) Command() string { return f.command }

func (f *Frame) SetCommand(command string) { f.command = command }

func (f *Frame) Body() []byte { return f.body }

func (f *Frame) SetBody(body []byte) { f.body = body }

func (f *Frame) Version() Version { return f.version }

// SetVersion resolves value to a supported protocol version; the empty
// string selects the default. On error the frame's version is unchanged.
func (f *Frame) SetVersion(value string) error {
	v, err := ParseVersion(value)
	if err != nil {
		return err
	}
	f.version = v
	return nil
}

// SetVersionValue installs an already-resolved protocol version, as
// returned by ParseVersion or Versions; unlike SetVersion there is no
// string form to reject. The zero value selects the default.
func (f *Frame) SetVersionValue(v Version) {
	if v == "" {
		v = DefaultVersion
	}
	f.version = v
}

// Headers returns the effective header mapping. With raw headers present
// this is a fresh fold of the ordered pairs, first occurrence of a name
// winning. Otherwise it is the live map itself and mutations through it
// are visible to the frame.
func (f *Frame) Headers() map[string]string {
	if f.rawHeaders == nil {
		if f.headers == nil {
			f.headers = make(map[string]string, 8)
		}
		return f.headers
	}
	return foldRawHeaders(f.rawHeaders)
}

func foldRawHeaders(pairs []HeaderPair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, ok := m[p.Name]; !ok {
			m[p.Name] = p.Value
		}
	}
	return m
}

// SetHeaders replaces the plain header map with a copy of headers. While
// raw headers are present this store is dormant: the change has no
// observable effect until the raw headers are cleared.
func (f *Frame) SetHeaders(headers map[string]string) {
	m := make(map[string]string, len(headers))
	for k, v := range headers {
		m[k] = v
	}
	f.headers = m
}

// RawHeaders returns the ordered wire headers, or nil when absent.
func (f *Frame) RawHeaders() []HeaderPair { return f.rawHeaders }

// SetRawHeaders installs an ordered header sequence that takes
// precedence over the plain map. nil clears it, exposing the map again.
func (f *Frame) SetRawHeaders(pairs []HeaderPair) { f.rawHeaders = pairs }

// Header looks up name in the effective header view.
func (f *Frame) Header(name string) (string, bool) {
	value, ok := f.Headers()[name]
	return value, ok
}

// SetHeader sets a single header. Raw headers, if present, are collapsed
// first: under first-occurrence-wins an appended pair could never
// override an existing name.
func (f *Frame) SetHeader(name, value string) {
	f.Unraw()
	if f.headers == nil {
		f.headers = make(map[string]string, 8)
	}
	f.headers[name] = value
}

// Unraw collapses the dual header representation: the deduplicated view
// of the raw headers becomes the live map and the raw headers are
// cleared. Idempotent, no-op without raw headers.
func (f *Frame) Unraw() {
	if f.rawHeaders == nil {
		return
	}
	f.headers = foldRawHeaders(f.rawHeaders)
	f.rawHeaders = nil
}

// Render produces the frame's wire representation: the command, one
// name:value line per header, a blank line, the body and a NUL
// terminator. Raw headers are emitted in their stored order; the plain
// map is emitted sorted by name for deterministic output. Command and
// header text go through the version's codec and escaping rules, the
// body does not.
func (f *Frame) Render() ([]byte, error) {
	pairs := f.rawHeaders
	if pairs == nil {
		pairs = make([]HeaderPair, 0, len(f.headers))
		for name, value := range f.headers {
			pairs = append(pairs, HeaderPair{Name: name, Value: value})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	}
	esc := EscaperFor(f.version, f.command)
	var block strings.Builder
	for _, p := range pairs {
		block.WriteString(esc(p.Name))
		block.WriteByte(':')
		block.WriteString(esc(p.Value))
		block.WriteByte(LineDelimiter)
	}
	codec := CodecFor(f.version)
	command, err := codec.Encode(f.command)
	if err != nil {
		return nil, err
	}
	headers, err := codec.Encode(block.String())
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(command)+len(headers)+len(f.body)+3)
	out = append(out, command...)
	out = append(out, LineDelimiter)
	out = append(out, headers...)
	out = append(out, LineDelimiter)
	out = append(out, f.body...)
	out = append(out, FrameDelimiter)
	return out, nil
}

// Equal reports whether both frames render to identical wire bytes.
// Internal representation does not matter: a frame carrying raw headers
// equals one carrying the folded map if the bytes agree. A frame that
// cannot render equals nothing. Frame is intentionally not usable as a
// map key; equality tracks mutable state.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	a, err := f.Render()
	if err != nil {
		return false
	}
	b, err := other.Render()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Empty reports whether the unit is a bare keep-alive; frames always
// carry content.
func (f *Frame) Empty() bool { return false }

// Info returns a compact diagnostic summary: command, effective headers
// when non-empty, a bounded body preview and the version.
func (f *Frame) Info() string {
	var parts []string
	if headers := f.Headers(); len(headers) != 0 {
		parts = append(parts, fmt.Sprintf("headers=%v", headers))
	}
	if len(f.body) != 0 {
		preview := f.body
		suffix := ""
		if len(preview) > infoBodyLength {
			preview = preview[:infoBodyLength]
			suffix = "..."
		}
		parts = append(parts, fmt.Sprintf("body=%q%s", preview, suffix))
	}
	parts = append(parts, fmt.Sprintf("version=%s", f.version))
	return fmt.Sprintf("%s frame [%s]", f.command, strings.Join(parts, ", "))
}

// Field is one entry of the structured frame projection.
type Field struct {
	Name  string
	Value interface{}
}

// Fields projects the frame onto its non-default fields, command first.
// The headers entry reflects the plain map store, not the folded view,
// mirroring a direct field dump. Not used by rendering.
func (f *Frame) Fields() []Field {
	fields := []Field{{Name: "command", Value: f.command}}
	if len(f.headers) != 0 {
		fields = append(fields, Field{Name: "headers", Value: f.headers})
	}
	if len(f.body) != 0 {
		fields = append(fields, Field{Name: "body", Value: f.body})
	}
	if f.rawHeaders != nil {
		fields = append(fields, Field{Name: "rawHeaders", Value: f.rawHeaders})
	}
	if f.version != DefaultVersion {
		fields = append(fields, Field{Name: "version", Value: f.version})
	}
	return fields
}

// String is the debug representation; the wire form comes from Render.
func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString("Frame(")
	for i, field := range f.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", field.Name, field.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// Clone returns a deep copy sharing no mutable state with the original.
func (f *Frame) Clone() *Frame {
	res := New(f.command)
	res.version = f.version
	for k, v := range f.headers {
		res.headers[k] = v
	}
	if f.rawHeaders != nil {
		res.rawHeaders = append([]HeaderPair(nil), f.rawHeaders...)
	}
	if f.body != nil {
		res.body = append([]byte(nil), f.body...)
	}
	return res
}
