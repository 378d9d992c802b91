package pdu

import (
	"testing"

	"github.com/netsimlab/netsim/addr"
)

func TestIPv4ChecksumRoundTrips(t *testing.T) {
	src := addr.IPv4{192, 168, 1, 10}
	dst := addr.IPv4{192, 168, 1, 1}
	pkt := NewIPv4Packet(src, dst, 64, ProtoICMP, RawPayload("ping"))
	if !VerifyIPv4Checksum(pkt) {
		t.Fatalf("checksum did not verify on construction: %04x", pkt.HeaderChecksum)
	}
	pkt.TTL--
	if VerifyIPv4Checksum(pkt) {
		t.Fatal("checksum should no longer verify after mutating the header without recomputing")
	}
}

func TestIPv4ChecksumRecomputesOnEveryField(t *testing.T) {
	src := addr.IPv4{10, 0, 0, 1}
	dst := addr.IPv4{10, 0, 0, 2}
	for _, proto := range []IPProto{ProtoICMP, ProtoUDP} {
		pkt := NewIPv4Packet(src, dst, 255, proto, nil)
		if !VerifyIPv4Checksum(pkt) {
			t.Fatalf("checksum invalid for proto %s", proto)
		}
	}
}

func TestEthernetFrameEtherTypeAgreesWithPayload(t *testing.T) {
	src, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")
	dst := addr.BroadcastMAC()

	arpPkt := NewARPRequest(src, addr.IPv4{10, 0, 0, 1}, addr.IPv4{10, 0, 0, 2})
	frame, ok := NewEthernetFrame(src, dst, arpPkt)
	if !ok {
		t.Fatal("expected ARP payload to be accepted")
	}
	if frame.EtherType != EtherTypeARP {
		t.Fatalf("got %s want ARP", frame.EtherType)
	}

	v4 := NewIPv4Packet(addr.IPv4{10, 0, 0, 1}, addr.IPv4{10, 0, 0, 2}, 64, ProtoICMP, nil)
	frame, ok = NewEthernetFrame(src, dst, v4)
	if !ok || frame.EtherType != EtherTypeIPv4 {
		t.Fatalf("expected IPv4 payload to map to EtherTypeIPv4, got %v ok=%v", frame.EtherType, ok)
	}

	v6 := NewIPv6Packet(addr.IPv6{}, addr.IPv6{}, 64, ProtoICMPv6, nil)
	frame, ok = NewEthernetFrame(src, dst, v6)
	if !ok || frame.EtherType != EtherTypeIPv6 {
		t.Fatalf("expected IPv6 payload to map to EtherTypeIPv6, got %v ok=%v", frame.EtherType, ok)
	}

	// A raw payload has no well-defined EtherType and must be rejected
	// by the constructor rather than silently tagged as something else.
	if _, ok := NewEthernetFrame(src, dst, RawPayload("x")); ok {
		t.Fatal("expected raw payload to be rejected at the EthernetFrame boundary")
	}
}

func TestEthernetFrameVLANTagRoundTrip(t *testing.T) {
	src, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")
	dst := addr.BroadcastMAC()
	pkt := NewIPv4Packet(addr.IPv4{10, 0, 0, 1}, addr.IPv4{10, 0, 0, 2}, 64, ProtoUDP, nil)
	frame, ok := NewEthernetFrame(src, dst, pkt)
	if !ok {
		t.Fatal("unexpected rejection")
	}
	if _, tagged := frame.VID(); tagged {
		t.Fatal("fresh frame should be untagged")
	}
	tagged := frame.WithVLANTag(42)
	vid, ok := tagged.VID()
	if !ok || vid != 42 {
		t.Fatalf("got vid=%d ok=%v want 42/true", vid, ok)
	}
	if tagged.Dot1Q.TPID != 0x8100 {
		t.Fatalf("expected canonical TPID, got %#x", tagged.Dot1Q.TPID)
	}
	untagged := tagged.Untagged()
	if _, tagged := untagged.VID(); tagged {
		t.Fatal("Untagged should strip the 802.1Q tag")
	}
}

func TestARPRequestAndReplyOperations(t *testing.T) {
	senderMAC, _ := addr.ParseMAC("00:1a:2b:3c:4d:5e")
	replierMAC, _ := addr.ParseMAC("00:1a:2b:3c:4d:5f")
	req := NewARPRequest(senderMAC, addr.IPv4{10, 0, 0, 1}, addr.IPv4{10, 0, 0, 2})
	if req.Operation != ARPRequest {
		t.Fatalf("got %s want request", req.Operation)
	}
	reply := NewARPReply(req, replierMAC)
	if reply.Operation != ARPReply {
		t.Fatalf("got %s want reply", reply.Operation)
	}
	if reply.SenderMAC != replierMAC || reply.TargetMAC != senderMAC {
		t.Fatal("reply should swap sender/target and carry the replier's MAC")
	}
	if reply.SenderIP != req.TargetIP || reply.TargetIP != req.SenderIP {
		t.Fatal("reply should swap sender/target IPs from the request")
	}
}

func TestICMPv6PacketOptionalFields(t *testing.T) {
	id := uint16(7)
	seq := uint16(1)
	echo := ICMPv6Packet{Type: ICMPv6EchoRequest, ID: &id, Sequence: &seq}
	if echo.NDP != nil {
		t.Fatal("echo request should carry no NDP payload")
	}
	ns := ICMPv6Packet{
		Type: ICMPv6NeighborSolicitation,
		NDP:  &NDPMessage{TargetMAC: [6]byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}},
	}
	if ns.ID != nil || ns.Sequence != nil {
		t.Fatal("neighbor solicitation should not carry echo id/sequence")
	}
	if ns.NDP.TargetMAC[5] != 0x5e {
		t.Fatal("NDP target MAC not preserved")
	}
}
