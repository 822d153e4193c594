package frame

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

// Reader parses wire bytes into frames and heart-beats. Version controls
// the text codec and header unescaping; it may be changed between frames,
// typically once a CONNECTED reply settles the negotiated revision.
type Reader struct {
	reader  *bufio.Reader
	Version Version
}

func NewReader(reader io.Reader) *Reader {
	return &Reader{
		reader:  bufio.NewReader(reader),
		Version: DefaultVersion,
	}
}

// Read returns the next unit from the stream: a HeartBeat for a bare
// line delimiter, otherwise a *Frame whose raw headers preserve wire
// order and duplicate names. The body runs to the NUL terminator, or to
// content-length bytes when that header is present (such bodies may
// contain NUL).
func (r *Reader) Read() (Unit, error) {
	cmd, err := r.reader.ReadSlice(LineDelimiter)
	if err != nil {
		return nil, err
	}
	if len(cmd) == 1 {
		return HeartBeat{}, nil
	}
	codec := CodecFor(r.Version)
	command, err := codec.Decode(r.trimLine(cmd))
	if err != nil {
		return nil, err
	}
	fr := New(command)
	fr.version = r.Version
	unescape := UnescaperFor(r.Version, command)
	var raw []HeaderPair
	for {
		line, err := r.reader.ReadSlice(LineDelimiter)
		if err != nil {
			return nil, err
		}
		trimmed := r.trimLine(line)
		if len(trimmed) == 0 {
			// blank line, end of headers
			break
		}
		p := bytes.IndexByte(trimmed, ':')
		if p < 0 {
			return nil, ParsingError
		}
		name, err := decodeHeaderText(codec, unescape, trimmed[:p])
		if err != nil {
			return nil, err
		}
		value, err := decodeHeaderText(codec, unescape, trimmed[p+1:])
		if err != nil {
			return nil, err
		}
		raw = append(raw, HeaderPair{Name: name, Value: value})
	}
	if raw != nil {
		fr.SetRawHeaders(raw)
	}
	body, err := r.readBody(fr)
	if err != nil {
		return nil, err
	}
	fr.SetBody(body)
	return fr, nil
}

// trimLine strips the trailing line delimiter, plus an optional carriage
// return in STOMP 1.2 where CRLF line ends are allowed.
func (r *Reader) trimLine(line []byte) []byte {
	line = line[:len(line)-1]
	if r.Version == V12 && len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line
}

func decodeHeaderText(codec Codec, unescape UnescapeFunc, data []byte) (string, error) {
	text, err := codec.Decode(data)
	if err != nil {
		return "", err
	}
	return unescape(text)
}

func (r *Reader) readBody(fr *Frame) ([]byte, error) {
	if v, ok := fr.Header(HdrContentLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, ParsingError
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(r.reader, body); err != nil {
			return nil, err
		}
		term, err := r.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if term != FrameDelimiter {
			return nil, ParsingError
		}
		return body, nil
	}
	tmp, err := r.reader.ReadBytes(FrameDelimiter)
	if err != nil {
		return nil, err
	}
	return tmp[:len(tmp)-1], nil
}
