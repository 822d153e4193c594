package frame

import (
	"fmt"
	"unicode/utf8"
)

// Wire-level delimiters, identical across protocol versions.
const (
	LineDelimiter  byte = '\n'
	FrameDelimiter byte = 0x00
)

// Version identifies a STOMP protocol revision. It selects the text codec
// applied to command and header text and the header escaping rules.
type Version string

const (
	V10 Version = "1.0"
	V11 Version = "1.1"
	V12 Version = "1.2"

	DefaultVersion = V10
)

var supportedVersions = []Version{V10, V11, V12}

// UnsupportedVersionError reports a version value outside the supported set.
type UnsupportedVersionError struct {
	Value string
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported STOMP version %q", e.Value)
}

// EncodingError reports command or header text that the version's codec
// cannot represent. The caller can switch the frame to a version with a
// wider charset, or drop the offending text, and render again.
type EncodingError struct {
	Version Version
	Text    string
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %q for STOMP %s", e.Text, e.Version)
}

// ParseVersion resolves value to a supported Version. The empty string
// resolves to DefaultVersion.
func ParseVersion(value string) (Version, error) {
	if value == "" {
		return DefaultVersion, nil
	}
	for _, v := range supportedVersions {
		if value == string(v) {
			return v, nil
		}
	}
	return "", UnsupportedVersionError{Value: value}
}

// Versions lists the supported revisions in ascending order.
func Versions() []Version {
	return append([]Version(nil), supportedVersions...)
}

// Codec encodes command and header text for the wire. Frame bodies never
// pass through a Codec.
type Codec interface {
	Encode(text string) ([]byte, error)
	Decode(data []byte) (string, error)
}

// STOMP 1.0 frames are limited to 7-bit ASCII.
type asciiCodec struct{}

func (asciiCodec) Encode(text string) ([]byte, error) {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return nil, EncodingError{Version: V10, Text: text}
		}
	}
	return []byte(text), nil
}

func (asciiCodec) Decode(data []byte) (string, error) {
	for _, c := range data {
		if c >= utf8.RuneSelf {
			return "", EncodingError{Version: V10, Text: string(data)}
		}
	}
	return string(data), nil
}

type utf8Codec struct {
	version Version
}

func (c utf8Codec) Encode(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, EncodingError{Version: c.version, Text: text}
	}
	return []byte(text), nil
}

func (c utf8Codec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", EncodingError{Version: c.version, Text: string(data)}
	}
	return string(data), nil
}

// CodecFor returns the text codec of a protocol version.
func CodecFor(version Version) Codec {
	if version == V10 {
		return asciiCodec{}
	}
	return utf8Codec{version: version}
}
