package addr

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

// IPv6 is a 128-bit IPv6 address, optionally carrying a scope/zone
// identifier used by link-local addresses (e.g. "fe80::1%eth0").
type IPv6 struct {
	addr [16]byte
	zone string
}

// ErrMalformedIPv6 is returned by ParseIPv6 on unparseable input.
var ErrMalformedIPv6 = errors.New("addr: malformed IPv6 address")

// IPv6FromHextets builds an address from its eight 16-bit groups.
func IPv6FromHextets(h [8]uint16, zone string) IPv6 {
	var a IPv6
	a.zone = zone
	for i, v := range h {
		binary.BigEndian.PutUint16(a.addr[i*2:], v)
	}
	return a
}

// Hextets decomposes the address into its eight 16-bit groups.
func (a IPv6) Hextets() [8]uint16 {
	var h [8]uint16
	for i := range h {
		h[i] = binary.BigEndian.Uint16(a.addr[i*2:])
	}
	return h
}

// Zone returns the scope/zone identifier, or "" if none was set.
func (a IPv6) Zone() string { return a.zone }

// WithZone returns a copy of a with its zone set to zone.
func (a IPv6) WithZone(zone string) IPv6 {
	a.zone = zone
	return a
}

// Bytes returns the 16 raw address octets.
func (a IPv6) Bytes() [16]byte { return a.addr }

// Equal reports whether a and o have the same address bits. Zone is
// ignored, matching how the spec treats the zone as transport
// metadata rather than part of address identity.
func (a IPv6) Equal(o IPv6) bool { return a.addr == o.addr }

// ParseIPv6 parses full, RFC 5952 compressed ("::"), and IPv4-mapped
// ("::ffff:w.x.y.z") forms, with an optional "%zone" suffix.
func ParseIPv6(s string) (IPv6, error) {
	var zone string
	if i := strings.IndexByte(s, '%'); i >= 0 {
		zone = s[i+1:]
		s = s[:i]
		if zone == "" {
			return IPv6{}, ErrMalformedIPv6
		}
	}
	groups, err := parseIPv6Groups(s)
	if err != nil {
		return IPv6{}, err
	}
	return IPv6FromHextets(groups, zone), nil
}

func parseIPv6Groups(s string) (groups [8]uint16, err error) {
	if s == "" {
		return groups, ErrMalformedIPv6
	}
	doubleColon := strings.Index(s, "::")
	var left, right []string
	if doubleColon >= 0 {
		if strings.Index(s[doubleColon+1:], "::") >= 0 {
			return groups, ErrMalformedIPv6 // more than one "::"
		}
		leftStr, rightStr := s[:doubleColon], s[doubleColon+2:]
		if leftStr != "" {
			left = strings.Split(leftStr, ":")
		}
		if rightStr != "" {
			right = strings.Split(rightStr, ":")
		}
	} else {
		left = strings.Split(s, ":")
	}

	// An embedded IPv4 tail ("a:b:c:d:e:f:1.2.3.4") expands to two hextets.
	expand := func(parts []string) ([]uint16, error) {
		out := make([]uint16, 0, len(parts)+1)
		for i, p := range parts {
			if strings.Contains(p, ".") {
				if i != len(parts)-1 {
					return nil, ErrMalformedIPv6
				}
				v4, err := ParseIPv4(p)
				if err != nil {
					return nil, ErrMalformedIPv6
				}
				out = append(out, uint16(v4[0])<<8|uint16(v4[1]), uint16(v4[2])<<8|uint16(v4[3]))
				continue
			}
			if len(p) == 0 || len(p) > 4 {
				return nil, ErrMalformedIPv6
			}
			v, err := strconv.ParseUint(p, 16, 16)
			if err != nil {
				return nil, ErrMalformedIPv6
			}
			out = append(out, uint16(v))
		}
		return out, nil
	}

	leftVals, err := expand(left)
	if err != nil {
		return groups, err
	}
	rightVals, err := expand(right)
	if err != nil {
		return groups, err
	}

	if doubleColon < 0 {
		if len(leftVals) != 8 {
			return groups, ErrMalformedIPv6
		}
		copy(groups[:], leftVals)
		return groups, nil
	}
	if len(leftVals)+len(rightVals) > 7 {
		return groups, ErrMalformedIPv6
	}
	copy(groups[:], leftVals)
	copy(groups[8-len(rightVals):], rightVals)
	return groups, nil
}

// String renders the canonical RFC 5952 form: the longest run of
// zero groups (length >= 2) is compressed to "::"; ties are broken by
// preferring the earliest (first) run.
func (a IPv6) String() string {
	h := a.Hextets()
	start, length := longestZeroRun(h)
	var sb strings.Builder
	if length < 2 {
		for i, v := range h {
			if i != 0 {
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.FormatUint(uint64(v), 16))
		}
	} else {
		for i := 0; i < start; i++ {
			if i != 0 {
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.FormatUint(uint64(h[i]), 16))
		}
		sb.WriteString("::")
		for i := start + length; i < 8; i++ {
			if i != start+length {
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.FormatUint(uint64(h[i]), 16))
		}
	}
	if a.zone != "" {
		sb.WriteByte('%')
		sb.WriteString(a.zone)
	}
	return sb.String()
}

func longestZeroRun(h [8]uint16) (start, length int) {
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, v := range h {
		if v == 0 {
			if curLen == 0 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestLen = curLen
				bestStart = curStart
			}
		} else {
			curLen = 0
		}
	}
	if bestLen < 2 {
		return 0, 0
	}
	return bestStart, bestLen
}

// Classification helpers, per RFC 4291 / RFC 4007.

// IsUnspecified reports whether a is ::.
func (a IPv6) IsUnspecified() bool { return a.addr == [16]byte{} }

// IsLoopback reports whether a is ::1.
func (a IPv6) IsLoopback() bool {
	want := [16]byte{}
	want[15] = 1
	return a.addr == want
}

// IsLinkLocal reports whether a falls in fe80::/10.
func (a IPv6) IsLinkLocal() bool {
	return a.addr[0] == 0xfe && a.addr[1]&0xc0 == 0x80
}

// IsMulticast reports whether a falls in ff00::/8.
func (a IPv6) IsMulticast() bool { return a.addr[0] == 0xff }

// IsSolicitedNode reports whether a is a solicited-node multicast
// address, ff02::1:ffXX:XXXX.
func (a IPv6) IsSolicitedNode() bool {
	want := [13]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0xff}
	return [13]byte(a.addr[:13]) == want
}

// IsAllNodes reports whether a is ff02::1.
func (a IPv6) IsAllNodes() bool {
	return a.addr == allNodesAddr
}

// IsAllRouters reports whether a is ff02::2.
func (a IPv6) IsAllRouters() bool {
	return a.addr == allRoutersAddr
}

var allNodesAddr = [16]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
var allRoutersAddr = [16]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}

// AllNodesMulticast returns ff02::1.
func AllNodesMulticast() IPv6 { return IPv6{addr: allNodesAddr} }

// AllRoutersMulticast returns ff02::2.
func AllRoutersMulticast() IPv6 { return IPv6{addr: allRoutersAddr} }

// IsGlobalUnicast reports whether a is a global unicast address: not
// unspecified, loopback, link-local, or multicast.
func (a IPv6) IsGlobalUnicast() bool {
	return !a.IsUnspecified() && !a.IsLoopback() && !a.IsLinkLocal() && !a.IsMulticast()
}

// EUI64LinkLocal derives the link-local address fe80::/64 + EUI-64
// host identifier from mac, flipping the U/L bit per RFC 4291 Appendix A.
func EUI64LinkLocal(mac MAC, zone string) IPv6 {
	var a IPv6
	a.addr[0], a.addr[1] = 0xfe, 0x80
	id := eui64(mac)
	copy(a.addr[8:], id[:])
	a.zone = zone
	return a
}

// AddSLAACHostPart combines the network portion of prefix (its first
// prefixLen bits, prefixLen <= 64) with an EUI-64 host identifier
// derived from mac, per stateless address autoconfiguration (RFC 4862).
func AddSLAACHostPart(prefix IPv6, prefixLen int, mac MAC) IPv6 {
	if prefixLen > 64 {
		prefixLen = 64
	}
	var a IPv6
	fullBytes := prefixLen / 8
	copy(a.addr[:fullBytes], prefix.addr[:fullBytes])
	if rem := prefixLen % 8; rem != 0 {
		keepMask := byte(0xff << (8 - rem))
		a.addr[fullBytes] = prefix.addr[fullBytes] & keepMask
	}
	id := eui64(mac)
	copy(a.addr[8:], id[:])
	return a
}

func eui64(mac MAC) (id [8]byte) {
	id[0] = mac[0] ^ 0x02
	id[1] = mac[1]
	id[2] = mac[2]
	id[3] = 0xff
	id[4] = 0xfe
	id[5] = mac[3]
	id[6] = mac[4]
	id[7] = mac[5]
	return id
}

// SolicitedNodeMulticast returns the solicited-node multicast address
// ff02::1:ffXX:XXXX corresponding to a's low 24 bits.
func (a IPv6) SolicitedNodeMulticast() IPv6 {
	var sn IPv6
	sn.addr[0], sn.addr[1] = 0xff, 0x02
	sn.addr[11] = 0x01
	sn.addr[12] = 0xff
	sn.addr[13] = a.addr[13]
	sn.addr[14] = a.addr[14]
	sn.addr[15] = a.addr[15]
	return sn
}

// MulticastMAC maps an IPv6 multicast address to its Ethernet
// multicast MAC, 33:33:xx:xx:xx:xx built from the address's last 4
// octets, per RFC 2464 section 7.
func (a IPv6) MulticastMAC() MAC {
	return MAC{0x33, 0x33, a.addr[12], a.addr[13], a.addr[14], a.addr[15]}
}
