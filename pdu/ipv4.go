package pdu

import (
	"sync/atomic"

	"github.com/netsimlab/netsim/addr"
)

// IPv4Flags holds the 3-bit fragmentation flags field.
type IPv4Flags uint8

const (
	IPv4DontFragment  IPv4Flags = 1 << 1
	IPv4MoreFragments IPv4Flags = 1 << 0
)

// IPv4Packet is a semantic IPv4 header (RFC 791) plus payload. Only
// the no-options case (IHL=5) is modeled; IP options are out of scope
// for this simulator.
type IPv4Packet struct {
	IHL            uint8 // always 5: header length in 32-bit words
	ToS            uint8
	TotalLength    uint16
	Identification uint16
	Flags          IPv4Flags
	FragmentOffset uint16 // in 8-byte units
	TTL            uint8
	Protocol       IPProto
	HeaderChecksum uint16
	SourceIP       addr.IPv4
	DestinationIP  addr.IPv4
	Payload        Payload
}

func (IPv4Packet) Kind() Kind    { return KindIPv4 }
func (IPv4Packet) payloadMarker() {}

// Version is always 4; exposed as a method rather than a stored field
// since it never varies.
func (IPv4Packet) Version() uint8 { return 4 }

var ipv4IDCounter uint32

// NextIPv4Identification returns the next value of the
// process-monotonic identification counter, wrapping modulo 2^16.
func NextIPv4Identification() uint16 {
	return uint16(atomic.AddUint32(&ipv4IDCounter, 1))
}

// NewIPv4Packet builds a packet with a fresh identification and a
// correct header checksum.
func NewIPv4Packet(src, dst addr.IPv4, ttl uint8, proto IPProto, payload Payload) IPv4Packet {
	pkt := IPv4Packet{
		IHL:            5,
		TotalLength:    20,
		Identification: NextIPv4Identification(),
		TTL:            ttl,
		Protocol:       proto,
		SourceIP:       src,
		DestinationIP:  dst,
		Payload:        payload,
	}
	pkt.HeaderChecksum = ComputeIPv4Checksum(pkt)
	return pkt
}
