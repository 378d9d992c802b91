// Package pdu models the protocol data units the simulator exchanges:
// Ethernet frames carrying ARP, IPv4, or IPv6, with IPv4/IPv6 in turn
// carrying ICMP(v6) or UDP. These are semantic, field-level structures
// rather than byte-exact wire encodings, closed into a tag-discriminated
// sum so callers can switch exhaustively over payload kind.
package pdu

import "github.com/netsimlab/netsim/addr"

// EtherType identifies the payload type carried by an Ethernet frame.
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeIPv6 EtherType = 0x86DD
)

func (et EtherType) String() string {
	switch et {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	case EtherTypeIPv6:
		return "IPv6"
	default:
		return "unknown"
	}
}

// VLANTag is an IEEE 802.1Q tag.
type VLANTag struct {
	TPID uint16 // always 0x8100 for 802.1Q
	PCP  uint8  // 3-bit priority code point
	DEI  bool   // drop eligible indicator
	VID  uint16 // 12-bit VLAN identifier
}

// NewVLANTag builds the canonical tag the switch engine adds on
// egress: tpid=0x8100, pcp=0, dei=0, vid=vid.
func NewVLANTag(vid uint16) VLANTag {
	return VLANTag{TPID: 0x8100, VID: vid}
}

// Kind tags the closed sum of payload types a network-layer PDU can
// carry, so code can switch exhaustively over it without a type
// assertion chain.
type Kind uint8

const (
	KindARP Kind = iota
	KindIPv4
	KindIPv6
	KindICMP
	KindICMPv6
	KindUDP
	KindDHCP
	KindRaw
)

// Payload is implemented by every PDU type that can sit inside an
// EthernetFrame or be carried as the payload of an IPv4/IPv6 packet.
// The unexported marker method closes the sum to this package.
type Payload interface {
	Kind() Kind
	payloadMarker()
}

// RawPayload is an opaque application payload used where the
// simulator does not model the contents any further (generic test
// filler and placeholder application data).
type RawPayload []byte

func (RawPayload) Kind() Kind    { return KindRaw }
func (RawPayload) payloadMarker() {}

// EthernetFrame is a semantic Ethernet II frame, optionally tagged.
type EthernetFrame struct {
	SrcMAC    addr.MAC
	DstMAC    addr.MAC
	EtherType EtherType
	Dot1Q     *VLANTag // nil if untagged
	Payload   Payload
}

// etherTypeFor returns the EtherType that agrees with p's kind. The
// EtherType of a frame must always agree with its payload.
func etherTypeFor(p Payload) (EtherType, bool) {
	switch p.Kind() {
	case KindARP:
		return EtherTypeARP, true
	case KindIPv4:
		return EtherTypeIPv4, true
	case KindIPv6:
		return EtherTypeIPv6, true
	default:
		return 0, false
	}
}

// NewEthernetFrame builds a frame with EtherType derived from payload,
// enforcing the etherType/payload agreement invariant at construction
// time rather than leaving it to the caller to get right.
func NewEthernetFrame(src, dst addr.MAC, payload Payload) (EthernetFrame, bool) {
	et, ok := etherTypeFor(payload)
	if !ok {
		return EthernetFrame{}, false
	}
	return EthernetFrame{SrcMAC: src, DstMAC: dst, EtherType: et, Payload: payload}, true
}

// WithVLANTag returns a copy of f tagged with vid.
func (f EthernetFrame) WithVLANTag(vid uint16) EthernetFrame {
	tag := NewVLANTag(vid)
	f.Dot1Q = &tag
	return f
}

// Untagged returns a copy of f with any 802.1Q tag stripped.
func (f EthernetFrame) Untagged() EthernetFrame {
	f.Dot1Q = nil
	return f
}

// VID returns the frame's VLAN id and whether it carries a tag.
func (f EthernetFrame) VID() (uint16, bool) {
	if f.Dot1Q == nil {
		return 0, false
	}
	return f.Dot1Q.VID, true
}
