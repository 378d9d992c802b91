package pdu

// UDPPacket is a semantic UDP datagram (RFC 768).
type UDPPacket struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
	Payload  Payload
}

func (UDPPacket) Kind() Kind    { return KindUDP }
func (UDPPacket) payloadMarker() {}

// NewUDPPacket builds a datagram with Length computed from the
// payload's encoded size. Since payloads here are semantic rather
// than byte-exact, size is approximated as the header plus the raw
// byte count for RawPayload, or 0 for structured payloads that don't
// carry a byte representation.
func NewUDPPacket(srcPort, dstPort uint16, payload Payload) UDPPacket {
	const udpHeaderLen = 8
	size := udpHeaderLen
	if raw, ok := payload.(RawPayload); ok {
		size += len(raw)
	}
	return UDPPacket{
		SrcPort: srcPort,
		DstPort: dstPort,
		Length:  uint16(size),
		Payload: payload,
	}
}
