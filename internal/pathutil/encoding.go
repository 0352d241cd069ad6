package pathutil

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// UTF16LEToUTF8 decodes a little-endian UTF-16 byte slice (as found in
// archive internal-path tables and some NIF string blocks) into a UTF-8
// Go string. Grounded on golang.org/x/text/encoding/unicode, the same
// package the retrieval pack's CLI and network tooling already pull in
// for wire-level text conversion.
func UTF16LEToUTF8(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode utf-16le: %w", err)
	}
	return string(out), nil
}

// UTF8ToUTF16LE encodes a Go string to little-endian UTF-16 bytes, used
// when writing string tables back into a rewired plugin or archive
// header that expects the game's native encoding.
func UTF8ToUTF16LE(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode utf-16le: %w", err)
	}
	return out, nil
}
