package router

import (
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// ForwardHook lets an external collaborator — an ACL engine, NAT, or
// IPsec encapsulation — sit in the forwarding pipeline around the
// router's own routing-table lookup, without the core forwarding code
// knowing anything about any of them.
type ForwardHook interface {
	// BeforeForward runs before the routing-table lookup. Returning
	// ok=false drops the packet (an ACL deny); the returned packet
	// replaces pkt for the rest of the pipeline, letting a hook
	// rewrite addressing (NAT) or wrap the payload (IPsec) ahead of
	// the route decision.
	BeforeForward(ingress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool)

	// AfterForward runs once a route has been found, before the
	// packet is handed to the egress port, with the same
	// rewrite-or-drop shape as BeforeForward.
	AfterForward(egress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool)
}
