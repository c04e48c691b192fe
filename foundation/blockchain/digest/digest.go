// Package digest provides the canonical serialization and hashing used to
// link blocks together. The encoding is a key sorted JSON document using
// ", " and ": " as separators, ASCII only string escapes and shortest round
// trip floats, so every node can recompute the same digest from the same
// logical content.
package digest

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Number represents a JSON number whose source type is unknown. Integral
// values are rendered as integers and everything else as floats.
type Number float64

// =============================================================================

// Hash returns the hex encoded SHA-256 of the canonical form of the value.
func Hash(value any) (string, error) {
	data, err := Marshal(value)
	if err != nil {
		return "", err
	}

	return Sum(data), nil
}

// Sum returns the hex encoded SHA-256 of the data.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return common.Bytes2Hex(hash[:])
}

// Marshal returns the canonical encoding of the value. Supported values are
// map[string]any, []any, string, bool, nil, the integer types, float64
// and Number.
func Marshal(value any) ([]byte, error) {
	var b bytes.Buffer
	if err := encode(&b, value); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// =============================================================================

func encode(b *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")

	case bool:
		b.WriteString(strconv.FormatBool(v))

	case string:
		writeString(b, v)

	case int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(v, 10))

	case float64:
		s, err := formatFloat(v)
		if err != nil {
			return err
		}
		b.WriteString(s)

	case Number:
		s, err := formatNumber(float64(v))
		if err != nil {
			return err
		}
		b.WriteString(s)

	case []any:
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := encode(b, elem); err != nil {
				return err
			}
		}
		b.WriteByte(']')

	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, key)
			b.WriteString(": ")
			if err := encode(b, v[key]); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
		b.WriteByte('}')

	default:
		return fmt.Errorf("unsupported type %T", value)
	}

	return nil
}

// writeString writes the string quoted with every rune outside of printable
// ASCII escaped.
func writeString(b *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"

	escape := func(r rune) {
		b.WriteString(`\u`)
		b.WriteByte(hex[r>>12&0xf])
		b.WriteByte(hex[r>>8&0xf])
		b.WriteByte(hex[r>>4&0xf])
		b.WriteByte(hex[r&0xf])
	}

	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= ' ' && r <= '~':
				b.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				escape(r1)
				escape(r2)
			default:
				escape(r)
			}
		}
	}
	b.WriteByte('"')
}

// formatFloat renders the shortest representation that round trips,
// positional for decimal exponents in [-4, 16) and scientific otherwise.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("unsupported float value %v", f)
	}

	if f == 0 {
		if math.Signbit(f) {
			return "-0.0", nil
		}
		return "0.0", nil
	}

	abs := math.Abs(f)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s, nil
}

func formatNumber(f float64) (string, error) {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatInt(int64(f), 10), nil
	}

	return formatFloat(f)
}
