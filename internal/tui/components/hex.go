package components

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHex converts hex strings to bytes. Supports both:
// - Space-separated: "56 45 52"
// - Continuous: "564552", optionally with 0x prefixes
func ParseHex(hexStr string) ([]byte, error) {
	cleanHex := strings.NewReplacer(" ", "", "0x", "", "0X", "").Replace(strings.TrimSpace(hexStr))
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	out := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		b, err := strconv.ParseUint(cleanHex[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", cleanHex[i:i+2], err)
		}
		out = append(out, byte(b))
	}
	return out, nil
}
