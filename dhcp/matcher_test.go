package dhcp

import (
	"testing"

	"github.com/netsimlab/netsim/addr"
)

func TestMatchesDenyPatternAcrossAllFourEncodings(t *testing.T) {
	mac, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")

	cases := []string{
		"001a2b3c4d5e",         // raw hex
		"01001a2b3c4d5e",       // client-id prefixed hex
		"00:1a:2b:3c:4d:5e",    // dotted raw hex
		"01:00:1a:2b:3c:4d:5e", // client-id prefixed dotted hex
	}
	for _, pattern := range cases {
		if !matchesDenyPattern(mac, pattern) {
			t.Errorf("expected exact pattern %q to match", pattern)
		}
	}
}

func TestMatchesDenyPatternGlob(t *testing.T) {
	mac, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")
	if !matchesDenyPattern(mac, "00:1a:2b:*") {
		t.Fatal("expected glob prefix pattern to match")
	}
	if matchesDenyPattern(mac, "ff:*") {
		t.Fatal("unexpected match against unrelated prefix")
	}
}

func TestMatchesAnyDenyPatternMatchesAnyListedPattern(t *testing.T) {
	mac, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")
	if !matchesAnyDenyPattern(mac, []string{"ff:*", "00:1a:*"}) {
		t.Fatal("expected the second pattern to match")
	}
	if matchesAnyDenyPattern(mac, []string{"ff:*", "ee:*"}) {
		t.Fatal("expected no pattern to match")
	}
}

func TestPoolExcludedRange(t *testing.T) {
	p := &Pool{Network: addr.IPv4{10, 0, 0, 0}, Mask: addr.SubnetMask{255, 255, 255, 0}}
	p.Exclude(addr.IPv4{10, 0, 0, 1}, addr.IPv4{10, 0, 0, 10})

	if !p.isExcluded(addr.IPv4{10, 0, 0, 5}) {
		t.Fatal("expected address inside the excluded range to be excluded")
	}
	if p.isExcluded(addr.IPv4{10, 0, 0, 11}) {
		t.Fatal("did not expect address just past the excluded range to be excluded")
	}
}

func TestPoolUnusableWithoutMask(t *testing.T) {
	p := &Pool{Network: addr.IPv4{10, 0, 0, 0}}
	if p.usable() {
		t.Fatal("expected a pool with no mask configured to be unusable")
	}
}
