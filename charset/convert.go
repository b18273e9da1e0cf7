package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/transform"
)

// Decode converts data from the ECI's character set to UTF-8.
func Decode(data []byte, eci *ECI) (string, error) {
	if eci == nil || eci == UTF8 {
		return string(data), nil
	}
	out, _, err := transform.Bytes(eci.enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("charset: decode %s: %w", eci.Name, err)
	}
	if eci == UTF16BE {
		return strings.TrimPrefix(string(out), "\uFEFF"), nil
	}
	return string(out), nil
}

// Encode converts UTF-8 text into the ECI's character set. Characters the
// set cannot represent are an error.
func Encode(text string, eci *ECI) ([]byte, error) {
	if eci == nil || eci == UTF8 {
		return []byte(text), nil
	}
	out, _, err := transform.Bytes(eci.enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("charset: encode %s: %w", eci.Name, err)
	}
	if eci == ASCII {
		for _, b := range out {
			if b >= 0x80 {
				return nil, fmt.Errorf("charset: %q is not representable in %s", text, eci.Name)
			}
		}
	}
	return out, nil
}

// CanEncode reports whether every character of text exists in eci.
func CanEncode(text string, eci *ECI) bool {
	_, err := Encode(text, eci)
	return err == nil
}
