package pdu

import "github.com/netsimlab/netsim/addr"

// IPv6Packet is a semantic IPv6 header (RFC 8200) plus payload.
type IPv6Packet struct {
	TrafficClass  uint8
	FlowLabel     uint32 // 20 bits
	PayloadLength uint16
	NextHeader    IPProto
	HopLimit      uint8
	SourceIP      addr.IPv6
	DestinationIP addr.IPv6
	Payload       Payload
}

func (IPv6Packet) Kind() Kind    { return KindIPv6 }
func (IPv6Packet) payloadMarker() {}

// Version is always 6.
func (IPv6Packet) Version() uint8 { return 6 }

// NewIPv6Packet builds a packet with the given hop limit, next
// header, and payload.
func NewIPv6Packet(src, dst addr.IPv6, hopLimit uint8, next IPProto, payload Payload) IPv6Packet {
	return IPv6Packet{
		NextHeader:    next,
		HopLimit:      hopLimit,
		SourceIP:      src,
		DestinationIP: dst,
		Payload:       payload,
	}
}
