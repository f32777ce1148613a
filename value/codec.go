package value

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/yamlerr"
)

// Codec implements the leaf parse/emit rules. Base64 alphabet decoding and
// UTF-8 rune counting are delegated to the standard library
// (encoding/base64, unicode/utf8); everything layered on top, lenient
// character skipping, residue/padding validation, codepoint-vs-byte length
// policy, is this component.

// boolTrue/boolFalse are the case-insensitive literal sets.
var boolTrue = map[string]bool{"true": true, "yes": true, "y": true, "on": true, "enable": true, "enabled": true, "1": true}
var boolFalse = map[string]bool{"false": true, "no": true, "n": true, "off": true, "disable": true, "disabled": true, "0": true}

func invalid(path string, format string, args ...any) *yamlerr.Error {
	return yamlerr.New(yamlerr.InvalidValue, path, 0, 0, format, args...)
}

// parseIntLiteral parses the common integer grammar: optional sign,
// optional 0x/0b base prefix, underscores as ignored visual separators.
func parseIntLiteral(raw string) (neg bool, mag uint64, overflow bool, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false, 0, false, false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		i++
	}
	rest := s[i:]
	base := uint64(10)
	switch {
	case len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X'):
		base = 16
		rest = rest[2:]
	case len(rest) > 2 && rest[0] == '0' && (rest[1] == 'b' || rest[1] == 'B'):
		base = 2
		rest = rest[2:]
	}
	if rest == "" {
		return false, 0, false, false
	}
	sawDigit := false
	for _, c := range rest {
		if c == '_' {
			continue
		}
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return false, 0, false, false
		}
		if d >= base {
			return false, 0, false, false
		}
		sawDigit = true
		if mag > (^uint64(0)-d)/base {
			overflow = true
		}
		mag = mag*base + d
	}
	if !sawDigit {
		return false, 0, false, false
	}
	return neg, mag, overflow, true
}

// ParseInt parses a signed integer scalar per s.DataSize and s.Min/s.Max.
func ParseInt(path, raw string, dataSize int, min, max *int64) (int64, *yamlerr.Error) {
	neg, mag, overflow, ok := parseIntLiteral(raw)
	if !ok {
		return 0, invalid(path, "%q is not a valid integer", raw)
	}
	if overflow {
		return 0, invalid(path, "%q overflows 64 bits", raw)
	}
	var iv int64
	if neg {
		if mag > uint64(math.MaxInt64)+1 {
			return 0, invalid(path, "%q overflows a signed 64-bit integer", raw)
		}
		if mag == uint64(math.MaxInt64)+1 {
			iv = math.MinInt64
		} else {
			iv = -int64(mag)
		}
	} else {
		if mag > uint64(math.MaxInt64) {
			return 0, invalid(path, "%q overflows a signed 64-bit integer", raw)
		}
		iv = int64(mag)
	}
	lo, hi := MaxInt(dataSize)
	if iv < lo || iv > hi {
		return 0, invalid(path, "%d does not fit in a %d-byte signed integer", iv, dataSize)
	}
	if min != nil && iv < *min {
		return 0, invalid(path, "%d is below the schema minimum %d", iv, *min)
	}
	if max != nil && iv > *max {
		return 0, invalid(path, "%d is above the schema maximum %d", iv, *max)
	}
	return iv, nil
}

// ParseUint parses an unsigned integer scalar per s.DataSize and s.UMin/s.UMax.
func ParseUint(path, raw string, dataSize int, min, max *uint64) (uint64, *yamlerr.Error) {
	neg, mag, overflow, ok := parseIntLiteral(raw)
	if !ok || neg {
		return 0, invalid(path, "%q is not a valid unsigned integer", raw)
	}
	if overflow {
		return 0, invalid(path, "%q overflows 64 bits", raw)
	}
	if !FitsUint(mag, dataSize) {
		return 0, invalid(path, "%d does not fit in a %d-byte unsigned integer", mag, dataSize)
	}
	if min != nil && mag < *min {
		return 0, invalid(path, "%d is below the schema minimum %d", mag, *min)
	}
	if max != nil && mag > *max {
		return 0, invalid(path, "%d is above the schema maximum %d", mag, *max)
	}
	return mag, nil
}

// ParseBool implements the always-case-insensitive bool grammar.
func ParseBool(path, raw string) (bool, *yamlerr.Error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if boolTrue[s] {
		return true, nil
	}
	if boolFalse[s] {
		return false, nil
	}
	return false, invalid(path, "%q is not a valid boolean", raw)
}

// ParseFloat parses a float/double scalar. Sub-normal underflow is accepted
// silently; overflow to infinity and explicit NaN/Inf literals are rejected
// as not representable (see DESIGN.md Open Question resolution).
func ParseFloat(path, raw string, dataSize int) (float64, *yamlerr.Error) {
	bits := 64
	if dataSize == 4 {
		bits = 32
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), bits)
	if err != nil {
		return 0, invalid(path, "%q is not a valid float", raw)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, invalid(path, "%q is not representable", raw)
	}
	return f, nil
}

func strEqual(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// ParseEnum resolves raw against s.EnumTable under the already-resolved
// case policy (see schema.Flags.EffectiveCaseInsensitive), falling back to
// an integer literal unless the node is Strict.
func ParseEnum(path, raw string, s *schema.Schema, caseInsensitive bool) (int64, *yamlerr.Error) {
	strict := s.Flags.Has(schema.Strict)
	for _, e := range s.EnumTable {
		if strEqual(e.Name, raw, caseInsensitive) {
			return e.Value, nil
		}
	}
	if strict {
		return 0, invalid(path, "%q is not a recognised enum name", raw)
	}
	iv, ierr := ParseInt(path, raw, s.DataSize, nil, nil)
	if ierr != nil {
		return 0, invalid(path, "%q is neither a recognised enum name nor an integer", raw)
	}
	return iv, nil
}

// ParseFlagsEntry resolves one flags-sequence entry the same way as an enum
// name, widened to unsigned and checked against DataSize.
func ParseFlagsEntry(path, raw string, s *schema.Schema, caseInsensitive bool) (uint64, *yamlerr.Error) {
	iv, err := ParseEnum(path, raw, s, caseInsensitive)
	if err != nil {
		return 0, err
	}
	uv := uint64(iv)
	if !FitsUint(uv, s.DataSize) {
		return 0, invalid(path, "%d does not fit in a %d-byte flags word", uv, s.DataSize)
	}
	return uv, nil
}

// FindBitSlice looks up a named bit slice under the already-resolved case
// policy.
func FindBitSlice(s *schema.Schema, name string, caseInsensitive bool) (schema.BitSlice, bool) {
	for _, b := range s.Bits {
		if strEqual(b.Name, name, caseInsensitive) {
			return b, true
		}
	}
	return schema.BitSlice{}, false
}

// ParseBitfieldValue parses an unsigned literal and checks it fits the
// named slice's bit width.
func ParseBitfieldValue(path, raw string, bits int) (uint64, *yamlerr.Error) {
	neg, mag, overflow, ok := parseIntLiteral(raw)
	if !ok || neg || overflow {
		return 0, invalid(path, "%q is not a valid unsigned integer", raw)
	}
	mask := uint64(1)<<uint(bits) - 1
	if bits == 64 {
		mask = ^uint64(0)
	}
	if mag&^mask != 0 {
		return 0, invalid(path, "%d does not fit in %d bits", mag, bits)
	}
	return mag, nil
}

// ParseString validates a string scalar's codepoint length (byte length
// when raw is not valid UTF-8).
func ParseString(path, raw string, min, max int) (string, *yamlerr.Error) {
	n := len(raw)
	if utf8.ValidString(raw) {
		n = utf8.RuneCountInString(raw)
	}
	if n < min {
		return "", yamlerr.New(yamlerr.StringLengthMin, path, 0, 0, "length %d is below the schema minimum %d", n, min)
	}
	if max != schema.Unlimited && n > max {
		return "", yamlerr.New(yamlerr.StringLengthMax, path, 0, 0, "length %d is above the schema maximum %d", n, max)
	}
	return raw, nil
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func isBase64Char(c byte) bool {
	return strings.IndexByte(base64Alphabet, c) >= 0
}

// DecodeBase64Lenient decodes raw leniently: characters outside the
// alphabet and padding are skipped, internal padding and 1-character
// residues are rejected, and trailing padding may be omitted. The decoded
// byte length is then checked against min/max, the same length-bound
// policy ParseString applies to a String leaf.
func DecodeBase64Lenient(path, raw string, min, max int) ([]byte, *yamlerr.Error) {
	filtered := make([]byte, 0, len(raw))
	padSeen := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '=':
			padSeen = true
		case isBase64Char(c):
			if padSeen {
				return nil, yamlerr.New(yamlerr.InvalidBase64, path, 0, 0, "internal padding in %q", raw)
			}
			filtered = append(filtered, c)
		default:
			// lenient: skip any other character
		}
	}
	var out []byte
	if len(filtered) != 0 {
		if len(filtered)%4 == 1 {
			return nil, yamlerr.New(yamlerr.InvalidBase64, path, 0, 0, "%q has an invalid length", raw)
		}
		decoded, err := base64.RawStdEncoding.DecodeString(string(filtered))
		if err != nil {
			return nil, yamlerr.New(yamlerr.InvalidBase64, path, 0, 0, "%q is not valid base64: %v", raw, err)
		}
		out = decoded
	} else {
		out = []byte{}
	}
	if len(out) < min {
		return nil, yamlerr.New(yamlerr.StringLengthMin, path, 0, 0, "length %d is below the schema minimum %d", len(out), min)
	}
	if max != schema.Unlimited && len(out) > max {
		return nil, yamlerr.New(yamlerr.StringLengthMax, path, 0, 0, "length %d is above the schema maximum %d", len(out), max)
	}
	return out, nil
}

// EncodeBase64 renders a blob as padded standard base64.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// EmitInt/EmitUint/EmitBool/EmitFloat render the decimal (default base)
// form of a scalar.
func EmitInt(v int64) string  { return strconv.FormatInt(v, 10) }
func EmitUint(v uint64) string { return strconv.FormatUint(v, 10) }
func EmitBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func EmitFloat(f float64, dataSize int) string {
	bits := 64
	if dataSize == 4 {
		bits = 32
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// EmitEnum renders the first table name matching v, falling back to decimal.
func EmitEnum(s *schema.Schema, v int64) string {
	for _, e := range s.EnumTable {
		if e.Value == v {
			return e.Name
		}
	}
	return strconv.FormatInt(v, 10)
}

// EmitFlags greedily matches table entries against v and renders any
// leftover bits (not present in the table) as a trailing decimal literal,
// so round-tripping a flags value that included an out-of-table numeric
// entry is lossless.
func EmitFlags(s *schema.Schema, v uint64) []string {
	var names []string
	remaining := v
	for _, e := range s.EnumTable {
		ev := uint64(e.Value)
		if ev != 0 && remaining&ev == ev {
			names = append(names, e.Name)
			remaining &^= ev
		}
	}
	if remaining != 0 {
		names = append(names, strconv.FormatUint(remaining, 10))
	}
	return names
}

// BitfieldSlice pairs a declared bit slice with its extracted value.
type BitfieldSlice struct {
	Name  string
	Value uint64
}

// EmitBitfield extracts every non-zero named slice, in schema declaration
// order.
func EmitBitfield(s *schema.Schema, v uint64) []BitfieldSlice {
	var out []BitfieldSlice
	for _, b := range s.Bits {
		val := ExtractBits(v, b.Offset, b.Bits)
		if val != 0 {
			out = append(out, BitfieldSlice{Name: b.Name, Value: val})
		}
	}
	return out
}
