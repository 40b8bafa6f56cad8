package sth

import "strings"

const logIDPad = "="

// NormalizeLogID pads a base64 log identifier to a multiple of four
// characters. The alphabet is not checked.
func NormalizeLogID(raw string) string {
	if r := len(raw) % 4; r != 0 {
		return raw + strings.Repeat(logIDPad, 4-r)
	}

	return raw
}
