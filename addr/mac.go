// Package addr implements the addressing primitives shared by every
// layer of the simulator: link-layer MAC addresses, IPv4 addresses and
// subnet masks, and IPv6 addresses. Types are small, fixed-size value
// types so they can be copied and compared cheaply, in the style the
// rest of this codebase uses for protocol fields.
package addr

import (
	"errors"
	"strconv"
	"strings"
)

// MAC is a 6 octet IEEE 802 hardware address.
type MAC [6]byte

// ErrMalformedMAC is returned by ParseMAC when the input cannot be
// interpreted as a MAC address.
var ErrMalformedMAC = errors.New("addr: malformed MAC address")

// BroadcastMAC returns the all-ones broadcast hardware address.
func BroadcastMAC() MAC {
	return MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// ParseMAC parses a MAC address in colon- or hyphen-separated
// hexadecimal form, e.g. "00:1a:2b:3c:4d:5e" or "00-1a-2b-3c-4d-5e".
func ParseMAC(s string) (MAC, error) {
	var sep byte
	switch {
	case strings.Contains(s, ":"):
		sep = ':'
	case strings.Contains(s, "-"):
		sep = '-'
	default:
		return MAC{}, ErrMalformedMAC
	}
	var mac MAC
	parts := strings.Split(s, string(sep))
	if len(parts) != 6 {
		return MAC{}, ErrMalformedMAC
	}
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return MAC{}, ErrMalformedMAC
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return MAC{}, ErrMalformedMAC
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

// String returns the canonical colon-separated lowercase hex form.
func (m MAC) String() string {
	var buf [17]byte
	return string(appendMAC(buf[:0], m))
}

func appendMAC(dst []byte, m MAC) []byte {
	for i, b := range m {
		if i != 0 {
			dst = append(dst, ':')
		}
		if b < 16 {
			dst = append(dst, '0')
		}
		dst = strconv.AppendUint(dst, uint64(b), 16)
	}
	return dst
}

// Equal reports whether m and o are the same address.
func (m MAC) Equal(o MAC) bool { return m == o }

// IsBroadcast reports whether m is the all-ones broadcast address.
func (m MAC) IsBroadcast() bool { return m == BroadcastMAC() }

// IsMulticast reports whether the I/G bit (LSB of the first octet) is set.
func (m MAC) IsMulticast() bool { return m[0]&0x01 != 0 }

// IsIPv6Multicast reports whether m is a 33:33:xx:xx:xx:xx IPv6
// multicast mapped address.
func (m MAC) IsIPv6Multicast() bool { return m[0] == 0x33 && m[1] == 0x33 }

// IsLocallyAdministered reports whether the U/L bit (second LSB of the
// first octet) is set, i.e. the address was not assigned by the IEEE
// OUI registry.
func (m MAC) IsLocallyAdministered() bool { return m[0]&0x02 != 0 }

// IsZero reports whether m is the all-zero address.
func (m MAC) IsZero() bool { return m == MAC{} }

// macGenerator produces locally-administered MAC addresses with a
// monotonically increasing low 40 bits. It is not safe for concurrent
// use; callers needing concurrency safety should serialize access the
// way every other piece of mutable simulator state does (see
// equipment.World).
type macGenerator struct {
	next uint64
}

// Generate returns the next locally-administered MAC address: leading
// octet 0x02, with the remaining 5 octets derived from a
// monotonically increasing counter.
func (g *macGenerator) Generate() MAC {
	g.next++
	v := g.next
	return MAC{
		0x02,
		byte(v >> 32),
		byte(v >> 24),
		byte(v >> 16),
		byte(v >> 8),
		byte(v),
	}
}

// DefaultGenerator is the package-level MAC generator used by
// equipment constructors that need an address when none is supplied.
var DefaultGenerator macGenerator

// GenerateLocalMAC returns the next address from DefaultGenerator.
func GenerateLocalMAC() MAC { return DefaultGenerator.Generate() }
