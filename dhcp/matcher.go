package dhcp

import (
	"encoding/hex"
	"path"

	"github.com/netsimlab/netsim/addr"
)

// clientIDEncodings returns the four textual encodings a deny pattern
// may be written against: raw MAC hex, the DHCP client-identifier
// option's "01"-prefixed (hardware-type Ethernet) hex form, and both
// of those again with colon-separated dotted-hex octets instead of a
// single run of hex digits.
func clientIDEncodings(mac addr.MAC) []string {
	raw := hex.EncodeToString(mac[:])
	prefixed := "01" + raw

	dottedRaw := dottedHex(mac[:])
	dottedPrefixed := "01:" + dottedRaw

	return []string{raw, prefixed, dottedRaw, dottedPrefixed}
}

func dottedHex(b []byte) string {
	out := make([]byte, 0, len(b)*3-1)
	for i, v := range b {
		if i != 0 {
			out = append(out, ':')
		}
		out = append(out, hex.EncodeToString([]byte{v})...)
	}
	return string(out)
}

// matchesDenyPattern reports whether mac matches pattern under any of
// its four client-id encodings. Patterns use shell-glob syntax ("*",
// "?", "[...]") via path.Match.
func matchesDenyPattern(mac addr.MAC, pattern string) bool {
	for _, enc := range clientIDEncodings(mac) {
		if ok, err := path.Match(pattern, enc); err == nil && ok {
			return true
		}
	}
	return false
}

// matchesAnyDenyPattern reports whether mac is denied by any pattern
// in patterns.
func matchesAnyDenyPattern(mac addr.MAC, patterns []string) bool {
	for _, p := range patterns {
		if matchesDenyPattern(mac, p) {
			return true
		}
	}
	return false
}
