package serial

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultSettings is the settings string used when none is supplied
const DefaultSettings = "baud=9600,databits=8,parity=N,stopbits=1"

// ParseSettings converts a settings string such as
// "baud=115200,databits=8,parity=N,stopbits=1" into port options.
// Keys may appear in any order, separated by commas or whitespace.
// Omitted keys keep their defaults.
func ParseSettings(settings string) ([]Option, error) {
	var opts []Option

	fields := strings.FieldsFunc(settings, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || value == "" {
			return nil, fmt.Errorf("%w: malformed setting %q", ErrInvalidConfig, field)
		}

		switch strings.ToLower(key) {
		case "baud", "baudrate":
			rate, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: baud %q", ErrInvalidBaudRate, value)
			}
			opts = append(opts, WithBaudRate(rate))
		case "databits", "data":
			bits, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: databits %q", ErrInvalidConfig, value)
			}
			opts = append(opts, WithDataBits(bits))
		case "parity":
			parity, err := ParseParity(value)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithParity(parity))
		case "stopbits", "stop":
			bits, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: stopbits %q", ErrInvalidConfig, value)
			}
			opts = append(opts, WithStopBits(bits))
		default:
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidConfig, key)
		}
	}

	return opts, nil
}

// ParseConfig applies a settings string over DefaultConfig
func ParseConfig(settings string) (Config, error) {
	config := DefaultConfig()
	opts, err := ParseSettings(settings)
	if err != nil {
		return config, err
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return config, err
		}
	}
	return config, nil
}

// ParseParity accepts N, O, E, M or S (any case) or the full word
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(s) {
	case "n", "none":
		return ParityNone, nil
	case "o", "odd":
		return ParityOdd, nil
	case "e", "even":
		return ParityEven, nil
	case "m", "mark":
		return ParityMark, nil
	case "s", "space":
		return ParitySpace, nil
	default:
		return ParityNone, fmt.Errorf("%w: parity %q", ErrInvalidConfig, s)
	}
}

// FormatSettings renders c in the settings string format
func FormatSettings(c Config) string {
	return fmt.Sprintf("baud=%d,databits=%d,parity=%s,stopbits=%d",
		c.BaudRate, c.DataBits, c.Parity, c.StopBits)
}
