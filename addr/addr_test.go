package addr

import "testing"

func TestParseMAC(t *testing.T) {
	mac, err := ParseMAC("00:1a:2b:3c:4d:5e")
	if err != nil {
		t.Fatal(err)
	}
	want := MAC{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}
	if mac != want {
		t.Fatalf("got %v want %v", mac, want)
	}
	if mac.String() != "00:1a:2b:3c:4d:5e" {
		t.Fatalf("bad string form: %s", mac.String())
	}
	if _, err := ParseMAC("not-a-mac"); err == nil {
		t.Fatal("expected error on malformed MAC")
	}
}

func TestMACBroadcast(t *testing.T) {
	if !BroadcastMAC().IsBroadcast() {
		t.Fatal("broadcast address should self-report as broadcast")
	}
	var zero MAC
	if zero.IsBroadcast() {
		t.Fatal("zero address is not broadcast")
	}
}

func TestGenerateLocalMAC(t *testing.T) {
	var g macGenerator
	a := g.Generate()
	b := g.Generate()
	if a == b {
		t.Fatal("generated MACs must be distinct")
	}
	if a[0] != 0x02 || b[0] != 0x02 {
		t.Fatal("generated MACs must be locally administered")
	}
	if !a.IsLocallyAdministered() {
		t.Fatal("IsLocallyAdministered should detect U/L bit")
	}
}

func TestParseIPv4(t *testing.T) {
	ip, err := ParseIPv4("192.168.1.10")
	if err != nil {
		t.Fatal(err)
	}
	if ip.String() != "192.168.1.10" {
		t.Fatalf("got %s", ip.String())
	}
	if _, err := ParseIPv4("192.168.1"); err == nil {
		t.Fatal("expected error on short address")
	}
	if _, err := ParseIPv4("256.1.1.1"); err == nil {
		t.Fatal("expected error on out of range octet")
	}
}

func TestIPv4SameSubnet(t *testing.T) {
	mask, _ := ParseSubnetMask("255.255.255.0")
	a, _ := ParseIPv4("192.168.1.10")
	b, _ := ParseIPv4("192.168.1.20")
	c, _ := ParseIPv4("192.168.2.20")
	if !a.SameSubnet(b, mask) {
		t.Fatal("a and b should be in the same /24")
	}
	if a.SameSubnet(c, mask) {
		t.Fatal("a and c should not be in the same /24")
	}
}

func TestIPv4DirectedBroadcast(t *testing.T) {
	mask, _ := ParseSubnetMask("255.255.255.0")
	bcast, _ := ParseIPv4("192.168.1.255")
	if !bcast.IsDirectedBroadcast(mask) {
		t.Fatal("192.168.1.255/24 should be a directed broadcast")
	}
	host, _ := ParseIPv4("192.168.1.10")
	if host.IsDirectedBroadcast(mask) {
		t.Fatal("192.168.1.10/24 is not a directed broadcast")
	}
}

func TestSubnetMaskFromCIDR(t *testing.T) {
	m, err := SubnetMaskFromCIDR(24)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "255.255.255.0" {
		t.Fatalf("got %s", m.String())
	}
	if m.PrefixLen() != 24 {
		t.Fatalf("got prefix len %d", m.PrefixLen())
	}
	if _, err := SubnetMaskFromCIDR(33); err == nil {
		t.Fatal("expected error on out of range prefix length")
	}
}

func TestSubnetMaskRejectsNonContiguous(t *testing.T) {
	if _, err := SubnetMaskFromOctets([4]byte{255, 0, 255, 0}); err == nil {
		t.Fatal("expected error on non-contiguous mask")
	}
}

func TestIPv6RoundTrip(t *testing.T) {
	cases := []string{
		"2001:db8::1",
		"fe80::21a:2bff:fe3c:4d5e",
		"::1",
		"ff02::1:ff3c:4d5e",
		"2001:db8:0:0:1:0:0:1",
	}
	for _, s := range cases {
		a, err := ParseIPv6(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		b, err := ParseIPv6(a.String())
		if err != nil {
			t.Fatalf("re-parse %s (%s): %v", s, a.String(), err)
		}
		if !a.Equal(b) {
			t.Fatalf("round trip mismatch: %s -> %s -> %s", s, a.String(), b.String())
		}
	}
}

func TestIPv6CanonicalCompression(t *testing.T) {
	a, err := ParseIPv6("2001:db8:0:0:1:0:0:1")
	if err != nil {
		t.Fatal(err)
	}
	// RFC 5952: the longest run wins; here it's the ":0:0:" around index 5,6
	// (length 2), which ties with indices 2,3 (length 2) - earliest wins.
	want := "2001:db8::1:0:0:1"
	if a.String() != want {
		t.Fatalf("got %s want %s", a.String(), want)
	}
}

func TestIPv6MappedIPv4(t *testing.T) {
	a, err := ParseIPv6("::ffff:192.168.1.1")
	if err != nil {
		t.Fatal(err)
	}
	h := a.Hextets()
	if h[5] != 0xffff || h[6] != 0xc0a8 || h[7] != 0x0101 {
		t.Fatalf("unexpected hextets: %v", h)
	}
}

func TestIPv6Classification(t *testing.T) {
	ll, _ := ParseIPv6("fe80::1")
	if !ll.IsLinkLocal() {
		t.Fatal("fe80::1 should be link-local")
	}
	mc, _ := ParseIPv6("ff02::1")
	if !mc.IsMulticast() || !mc.IsAllNodes() {
		t.Fatal("ff02::1 should be multicast and all-nodes")
	}
	lo, _ := ParseIPv6("::1")
	if !lo.IsLoopback() {
		t.Fatal("::1 should be loopback")
	}
	unspec, _ := ParseIPv6("::")
	if !unspec.IsUnspecified() {
		t.Fatal(":: should be unspecified")
	}
	gu, _ := ParseIPv6("2001:db8::1")
	if !gu.IsGlobalUnicast() {
		t.Fatal("2001:db8::1 should be global unicast")
	}
}

func TestEUI64LinkLocal(t *testing.T) {
	mac := MAC{0x00, 0x1A, 0x2B, 0x3C, 0x4D, 0x5E}
	ll := EUI64LinkLocal(mac, "eth0")
	want := "fe80::21a:2bff:fe3c:4d5e%eth0"
	if ll.String() != want {
		t.Fatalf("got %s want %s", ll.String(), want)
	}
}

func TestSolicitedNodeMulticast(t *testing.T) {
	mac := MAC{0x00, 0x1A, 0x2B, 0x3C, 0x4D, 0x5E}
	ll := EUI64LinkLocal(mac, "")
	sn := ll.SolicitedNodeMulticast()
	want := "ff02::1:ff3c:4d5e"
	if sn.String() != want {
		t.Fatalf("got %s want %s", sn.String(), want)
	}
}

func TestMulticastMAC(t *testing.T) {
	a, _ := ParseIPv6("ff02::1:ff3c:4d5e")
	mac := a.MulticastMAC()
	want := MAC{0x33, 0x33, 0xff, 0x3c, 0x4d, 0x5e}
	if mac != want {
		t.Fatalf("got %s want %s", mac, want)
	}
}
