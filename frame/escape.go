package frame

import (
	"errors"
	"strings"
)

var ParsingError = errors.New("malformed STOMP frame")

// Header escaping exists since STOMP 1.1 (1.2 adds carriage returns).
// It never applies to CONNECT and CONNECTED frames, whose headers travel
// unescaped in every revision.

type EscapeFunc func(text string) string

type UnescapeFunc func(text string) (string, error)

func escapeExempt(command string) bool {
	return command == CmdConnect || command == CmdConnected
}

func identity(text string) string { return text }

// EscaperFor returns the function applied to header names and values of
// a frame with the given version and command before rendering.
func EscaperFor(version Version, command string) EscapeFunc {
	if version == V10 || escapeExempt(command) {
		return identity
	}
	escapeCR := version != V11
	return func(text string) string { return escapeHeader(text, escapeCR) }
}

// UnescaperFor returns the exact inverse of EscaperFor(version, command).
// Undefined escape sequences are a parse error.
func UnescaperFor(version Version, command string) UnescapeFunc {
	if version == V10 || escapeExempt(command) {
		return func(text string) (string, error) { return text, nil }
	}
	escapeCR := version != V11
	return func(text string) (string, error) { return unescapeHeader(text, escapeCR) }
}

func escapeHeader(text string, escapeCR bool) string {
	if !strings.ContainsAny(text, "\\\r\n:") {
		return text
	}
	dest := make([]byte, 0, len(text)+8)
	for _, c := range []byte(text) {
		switch c {
		case '\\':
			dest = append(dest, '\\', '\\')
		case '\r':
			if escapeCR {
				dest = append(dest, '\\', 'r')
			} else {
				dest = append(dest, c)
			}
		case '\n':
			dest = append(dest, '\\', 'n')
		case ':':
			dest = append(dest, '\\', 'c')
		default:
			dest = append(dest, c)
		}
	}
	return string(dest)
}

func unescapeHeader(text string, escapeCR bool) (string, error) {
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}
	dest := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			dest = append(dest, c)
			continue
		}
		i++
		if i == len(text) {
			return "", ParsingError
		}
		switch text[i] {
		case '\\':
			dest = append(dest, '\\')
		case 'r':
			if !escapeCR {
				return "", ParsingError
			}
			dest = append(dest, '\r')
		case 'n':
			dest = append(dest, '\n')
		case 'c':
			dest = append(dest, ':')
		default:
			return "", ParsingError
		}
	}
	return string(dest), nil
}
