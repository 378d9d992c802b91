package pdu

import "github.com/netsimlab/netsim/addr"

// ARPOperation distinguishes an ARP request from a reply.
type ARPOperation uint8

const (
	ARPRequest ARPOperation = 1
	ARPReply   ARPOperation = 2
)

func (op ARPOperation) String() string {
	if op == ARPReply {
		return "reply"
	}
	return "request"
}

// ARPPacket is a semantic IPv4-over-Ethernet ARP message (RFC 826).
type ARPPacket struct {
	Operation ARPOperation
	SenderMAC addr.MAC
	SenderIP  addr.IPv4
	TargetMAC addr.MAC // zero value on a request
	TargetIP  addr.IPv4
}

func (ARPPacket) Kind() Kind    { return KindARP }
func (ARPPacket) payloadMarker() {}

// NewARPRequest builds a "who has TargetIP" broadcast request.
func NewARPRequest(senderMAC addr.MAC, senderIP, targetIP addr.IPv4) ARPPacket {
	return ARPPacket{
		Operation: ARPRequest,
		SenderMAC: senderMAC,
		SenderIP:  senderIP,
		TargetIP:  targetIP,
	}
}

// NewARPReply builds a unicast reply to req.
func NewARPReply(req ARPPacket, replierMAC addr.MAC) ARPPacket {
	return ARPPacket{
		Operation: ARPReply,
		SenderMAC: replierMAC,
		SenderIP:  req.TargetIP,
		TargetMAC: req.SenderMAC,
		TargetIP:  req.SenderIP,
	}
}
