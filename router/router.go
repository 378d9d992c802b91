// Package router implements the forwarding-plane device: an
// equipment.Equipment that behaves like a host for traffic addressed
// to its own interfaces, and forwards everything else by
// longest-prefix-match lookup, per RFC 1812's TTL-decrement and
// ICMP-error-on-drop behavior.
package router

import (
	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/host"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

const resolveTimeoutMs = 1000

// Router wraps an equipment.Equipment with a routing table and the
// forwarding pipeline described in the design: answer ARP/ICMP for
// its own addresses, otherwise decrement TTL, consult external
// ForwardHooks, and forward by longest-prefix-match.
type Router struct {
	*equipment.Equipment

	routes host.RouteTable
	arp    *arpCache

	pendingARP map[addr.IPv4][]func(addr.MAC, bool)

	hooks []ForwardHook
}

// NewRouter creates a router registered in w.
func NewRouter(w *equipment.World, id, name string) *Router {
	return &Router{
		Equipment:  equipment.NewEquipment(w, id, name, equipment.RoleRouter),
		arp:        newARPCache(),
		pendingARP: map[addr.IPv4][]func(addr.MAC, bool){},
	}
}

// AddPort creates a port wired into the router's frame dispatch.
func (r *Router) AddPort(name string) *iface.Port {
	p := r.Equipment.AddPort(name)
	p.SetHandler(r.handleFrame)
	return p
}

// ConfigureInterface assigns an IPv4 address/mask and installs the
// matching connected route, identical to host.Host.ConfigureInterface.
func (r *Router) ConfigureInterface(name string, ip addr.IPv4, mask addr.SubnetMask) {
	p, ok := r.Port(name)
	if !ok {
		return
	}
	p.ConfigureIP(ip, mask)
	r.routes.AddConnected(ip, mask, name)
	r.World.IndexIPv4(ip, r.Equipment)
}

// AddStaticRoute exposes RouteTable.AddStatic.
func (r *Router) AddStaticRoute(network addr.IPv4, mask addr.SubnetMask, nextHop addr.IPv4, metric int) bool {
	return r.routes.AddStatic(network, mask, nextHop, metric)
}

// AddDefaultRoute exposes RouteTable.AddDefault.
func (r *Router) AddDefaultRoute(nextHop addr.IPv4, metric int) bool {
	return r.routes.AddDefault(nextHop, metric)
}

// Routes returns the router's routing table.
func (r *Router) Routes() *host.RouteTable { return &r.routes }

// AddForwardHook registers an external collaborator (ACL, NAT, IPsec)
// consulted on every forwarded packet, in registration order.
func (r *Router) AddForwardHook(h ForwardHook) {
	r.hooks = append(r.hooks, h)
}

func (r *Router) handleFrame(ingress *iface.Port, frame pdu.EthernetFrame) {
	switch p := frame.Payload.(type) {
	case pdu.ARPPacket:
		r.handleARP(ingress, p)
	case pdu.IPv4Packet:
		r.handleIPv4(ingress, frame.SrcMAC, p)
	}
}

func (r *Router) handleARP(ingress *iface.Port, pkt pdu.ARPPacket) {
	switch pkt.Operation {
	case pdu.ARPRequest:
		ip, _, ok := ingress.IPv4()
		if !ok || !ip.Equal(pkt.TargetIP) {
			return
		}
		reply := pdu.NewARPReply(pkt, ingress.MAC)
		frame, ok := pdu.NewEthernetFrame(ingress.MAC, pkt.SenderMAC, reply)
		if ok {
			ingress.SendFrame(frame)
		}
	case pdu.ARPReply:
		r.arp.insert(pkt.SenderIP, pkt.SenderMAC)
		r.resolveCallback(pkt.SenderIP, pkt.SenderMAC, true)
	}
}

// ownAddress reports whether ip belongs to one of the router's own
// configured interfaces.
func (r *Router) ownAddress(ip addr.IPv4) bool {
	for _, p := range r.Ports() {
		if pip, _, ok := p.IPv4(); ok && pip.Equal(ip) {
			return true
		}
	}
	return false
}

func (r *Router) handleIPv4(ingress *iface.Port, srcMAC addr.MAC, pkt pdu.IPv4Packet) {
	if r.ownAddress(pkt.DestinationIP) {
		r.handleSelfAddressed(ingress, srcMAC, pkt)
		return
	}
	r.forward(ingress, pkt)
}

// handleSelfAddressed answers ICMP echo-requests the same way
// host.Host does; the router is otherwise a silent endpoint for
// traffic addressed to it directly.
func (r *Router) handleSelfAddressed(ingress *iface.Port, srcMAC addr.MAC, pkt pdu.IPv4Packet) {
	icmp, ok := pkt.Payload.(pdu.ICMPPacket)
	if !ok || icmp.Type != pdu.ICMPEchoRequest {
		return
	}
	reply := pdu.ICMPPacket{Type: pdu.ICMPEchoReply, ID: icmp.ID, Sequence: icmp.Sequence}
	ipPkt := pdu.NewIPv4Packet(pkt.DestinationIP, pkt.SourceIP, 64, pdu.ProtoICMP, reply)
	frame, ok := pdu.NewEthernetFrame(ingress.MAC, srcMAC, ipPkt)
	if !ok {
		return
	}
	ingress.SendFrame(frame)
}

// forward is the boundary-summary pipeline: decrement TTL, consult
// hooks, look up a route, resolve the next hop, consult hooks again,
// transmit. Any failure synthesizes the matching ICMP error back
// toward the source, as real routers do on drop.
func (r *Router) forward(ingress *iface.Port, pkt pdu.IPv4Packet) {
	if pkt.TTL <= 1 {
		r.sendICMPError(ingress, pkt, pdu.ICMPTimeExceeded)
		return
	}
	pkt.TTL--

	for _, h := range r.hooks {
		rewritten, ok := h.BeforeForward(ingress, pkt)
		if !ok {
			return
		}
		pkt = rewritten
	}

	route, ok := r.routes.Lookup(pkt.DestinationIP)
	if !ok {
		r.sendICMPError(ingress, pkt, pdu.ICMPDestinationUnreachable)
		return
	}
	egress, ok := r.Port(route.Iface)
	if !ok || egress == ingress {
		r.sendICMPError(ingress, pkt, pdu.ICMPDestinationUnreachable)
		return
	}

	nextHopIP := pkt.DestinationIP
	if route.HasNextHop {
		nextHopIP = route.NextHop
	}
	r.resolve(nextHopIP, egress, resolveTimeoutMs, func(dstMAC addr.MAC, resolved bool) {
		if !resolved {
			return
		}
		for _, h := range r.hooks {
			rewritten, ok := h.AfterForward(egress, pkt)
			if !ok {
				return
			}
			pkt = rewritten
		}
		frame, ok := pdu.NewEthernetFrame(egress.MAC, dstMAC, pkt)
		if !ok {
			return
		}
		egress.SendFrame(frame)
	})
}

// sendICMPError synthesizes an ICMP error back toward pkt's source,
// copying the ID/Sequence of the original request when it was itself
// an ICMP echo (so host.Host's pendingEchoes/traceroute matching keys
// line up the same way a real ping/traceroute expects), and resolves
// the source's MAC back out the ingress interface to deliver it.
func (r *Router) sendICMPError(ingress *iface.Port, pkt pdu.IPv4Packet, kind pdu.ICMPType) {
	var id, seq uint16
	if echo, ok := pkt.Payload.(pdu.ICMPPacket); ok {
		id, seq = echo.ID, echo.Sequence
	}
	ip, _, ok := ingress.IPv4()
	if !ok {
		return
	}
	errPkt := pdu.ICMPPacket{Type: kind, ID: id, Sequence: seq}
	ipPkt := pdu.NewIPv4Packet(ip, pkt.SourceIP, 64, pdu.ProtoICMP, errPkt)
	r.resolve(pkt.SourceIP, ingress, resolveTimeoutMs, func(dstMAC addr.MAC, resolved bool) {
		if !resolved {
			return
		}
		frame, ok := pdu.NewEthernetFrame(ingress.MAC, dstMAC, ipPkt)
		if !ok {
			return
		}
		ingress.SendFrame(frame)
	})
}

// resolve mirrors host.Host.resolve: a cache hit answers synchronously,
// a miss broadcasts an ARP request on via and queues cb until a reply
// arrives or timeoutMs elapses.
func (r *Router) resolve(targetIP addr.IPv4, via *iface.Port, timeoutMs int64, cb func(addr.MAC, bool)) {
	if mac, ok := r.arp.lookup(targetIP); ok {
		cb(mac, true)
		return
	}
	ip, _, hasIP := via.IPv4()
	if !hasIP {
		cb(addr.MAC{}, false)
		return
	}
	req := pdu.NewARPRequest(via.MAC, ip, targetIP)
	frame, ok := pdu.NewEthernetFrame(via.MAC, addr.BroadcastMAC(), req)
	if !ok {
		cb(addr.MAC{}, false)
		return
	}
	r.pendingARP[targetIP] = append(r.pendingARP[targetIP], cb)
	via.SendFrame(frame)

	r.World.Scheduler.After(timeoutMs, func() {
		r.resolveTimeout(targetIP)
	})
}

func (r *Router) resolveCallback(ip addr.IPv4, mac addr.MAC, ok bool) {
	cbs := r.pendingARP[ip]
	delete(r.pendingARP, ip)
	for _, cb := range cbs {
		cb(mac, ok)
	}
}

func (r *Router) resolveTimeout(ip addr.IPv4) {
	if _, ok := r.arp.lookup(ip); ok {
		return
	}
	cbs := r.pendingARP[ip]
	delete(r.pendingARP, ip)
	for _, cb := range cbs {
		cb(addr.MAC{}, false)
	}
}
