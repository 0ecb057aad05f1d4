package pdr

import (
	"encoding/binary"
	"math/bits"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// ToWire converts host order UTF-16 code units to wire (big-endian) order.
func ToWire(units []uint16) []uint16 {
	out := make([]uint16, len(units))
	for i, u := range units {
		out[i] = bits.ReverseBytes16(u)
	}
	return out
}

// FromWire is the inverse of ToWire.
func FromWire(units []uint16) []uint16 {
	return ToWire(units)
}

// EncodeName returns name as zero-terminated host order code units, cut to
// fit a name buffer.
func EncodeName(name string) [entities.MaxAuxNameLen]uint16 {
	var buf [entities.MaxAuxNameLen]uint16
	units := utf16.Encode([]rune(name))
	if len(units) > entities.MaxAuxNameLen-1 {
		units = units[:entities.MaxAuxNameLen-1]
		if last := units[len(units)-1]; last >= 0xD800 && last < 0xDC00 {
			units = units[:len(units)-1]
		}
	}
	copy(buf[:], units)
	return buf
}

// nameLen returns the number of code units before the terminator.
func nameLen(units []uint16) int {
	for i, u := range units {
		if u == 0 {
			return i
		}
	}
	return len(units)
}

// decodeWireName transcodes a wire order name to UTF-8.
func decodeWireName(wire []uint16) (string, error) {
	host := FromWire(wire)
	host = host[:nameLen(host)]
	raw := make([]byte, 2*len(host))
	for i, u := range host {
		binary.BigEndian.PutUint16(raw[2*i:], u)
	}
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(err, "decode utf-16 name")
	}
	return string(decoded), nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
