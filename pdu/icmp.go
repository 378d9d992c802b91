package pdu

// ICMPType enumerates the ICMPv4 message types the simulator models.
type ICMPType uint8

const (
	ICMPEchoRequest ICMPType = iota
	ICMPEchoReply
	ICMPDestinationUnreachable
	ICMPTimeExceeded
)

func (t ICMPType) String() string {
	switch t {
	case ICMPEchoRequest:
		return "echo-request"
	case ICMPEchoReply:
		return "echo-reply"
	case ICMPDestinationUnreachable:
		return "destination-unreachable"
	case ICMPTimeExceeded:
		return "time-exceeded"
	default:
		return "unknown"
	}
}

// ICMPPacket is a semantic ICMPv4 message.
type ICMPPacket struct {
	Type     ICMPType
	Code     uint8
	ID       uint16
	Sequence uint16
	DataSize int
}

func (ICMPPacket) Kind() Kind    { return KindICMP }
func (ICMPPacket) payloadMarker() {}

// ICMPv6Type enumerates the ICMPv6 message types the simulator
// models, spanning both ICMPv6 proper and the NDP messages it carries.
type ICMPv6Type uint8

const (
	ICMPv6EchoRequest ICMPv6Type = iota
	ICMPv6EchoReply
	ICMPv6DestinationUnreachable
	ICMPv6TimeExceeded
	ICMPv6NeighborSolicitation
	ICMPv6NeighborAdvertisement
	ICMPv6RouterSolicitation
	ICMPv6RouterAdvertisement
)

// ICMPv6Packet is a semantic ICMPv6 message. ID/Sequence/DataSize are
// only meaningful for echo request/reply; NDP is set for the NDP
// subtypes and nil otherwise.
type ICMPv6Packet struct {
	Type     ICMPv6Type
	Code     uint8
	ID       *uint16
	Sequence *uint16
	DataSize *int
	NDP      *NDPMessage
}

func (ICMPv6Packet) Kind() Kind    { return KindICMPv6 }
func (ICMPv6Packet) payloadMarker() {}

// NDPMessage carries the fields relevant to the Neighbor Discovery
// Protocol subtypes this simulator exercises (address resolution
// only -- full NDP router/prefix option parsing is out of scope).
type NDPMessage struct {
	TargetIP   [16]byte // addr.IPv6 raw bytes, avoided here to dodge import cycle concerns
	TargetMAC  [6]byte
	IsOverride bool // NA override flag
}
