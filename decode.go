package htmlpdf

import "encoding/base64"

// decodeBase64HTML decodes a base64-encoded HTML submission using the
// standard RFC 4648 alphabet. Decoding happens before any fetch or render
// work, so malformed input fails fast with a *DecodeError.
func decodeBase64HTML(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return string(raw), nil
}
