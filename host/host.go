// Package host implements the L3 end-host stack: ARP resolution, a
// longest-prefix-match routing table, and the ping/traceroute
// diagnostics built on top of them.
package host

import (
	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// Host wraps an equipment.Equipment with L3 state.
type Host struct {
	*equipment.Equipment

	arp    *ARPCache
	routes RouteTable

	defaultTTL uint8

	pendingARP map[addr.IPv4][]func(addr.MAC, bool)

	pendingEchoes map[echoKey]pendingEcho

	udpHandlers map[uint16][]UDPHandler
}

// UDPHandler processes a UDP datagram arriving on ingress, given the
// enclosing IPv4 header for source/destination addressing. It returns
// true if it consumed the datagram, stopping dispatch to any other
// handler registered on the same port (multiple DHCP clients on
// different interfaces of the same host otherwise all share port 68).
type UDPHandler func(ingress *iface.Port, ip pdu.IPv4Packet, udp pdu.UDPPacket) bool

// NewHost creates a host registered in w.
func NewHost(w *equipment.World, id, name string) *Host {
	return &Host{
		Equipment:     equipment.NewEquipment(w, id, name, equipment.RoleHost),
		arp:           newARPCache(),
		defaultTTL:    64,
		pendingARP:    map[addr.IPv4][]func(addr.MAC, bool){},
		pendingEchoes: map[echoKey]pendingEcho{},
		udpHandlers:   map[uint16][]UDPHandler{},
	}
}

// RegisterUDPHandler adds handler to the receivers tried, in
// registration order, for every inbound UDP datagram addressed to
// dstPort. Used by dhcp.Client/dhcp.Server to bind to ports 68/67
// without the host package needing to know anything about DHCP.
func (h *Host) RegisterUDPHandler(dstPort uint16, handler UDPHandler) {
	h.udpHandlers[dstPort] = append(h.udpHandlers[dstPort], handler)
}

// SendUDP builds and transmits a UDP/IPv4/Ethernet frame out the named
// interface, the general-purpose send path DHCP and other
// application-layer protocols build on instead of reaching into pdu
// themselves.
func (h *Host) SendUDP(ifaceName string, dstMAC addr.MAC, dstIP addr.IPv4, srcPort, dstPort uint16, ttl uint8, payload pdu.Payload) bool {
	p, ok := h.Port(ifaceName)
	if !ok {
		return false
	}
	srcIP, _, _ := p.IPv4()
	udp := pdu.NewUDPPacket(srcPort, dstPort, payload)
	ipPkt := pdu.NewIPv4Packet(srcIP, dstIP, ttl, pdu.ProtoUDP, udp)
	frame, ok := pdu.NewEthernetFrame(p.MAC, dstMAC, ipPkt)
	if !ok {
		return false
	}
	return p.SendFrame(frame)
}

// AddPort creates a port and wires its frame handler into the L3
// dispatch (ARP requests/replies and forwarded IP traffic).
func (h *Host) AddPort(name string) *iface.Port {
	p := h.Equipment.AddPort(name)
	p.SetHandler(h.handleFrame)
	return p
}

// ConfigureInterface assigns an IPv4 address/mask to a port and
// auto-adds the corresponding connected route.
func (h *Host) ConfigureInterface(name string, ip addr.IPv4, mask addr.SubnetMask) {
	p, ok := h.Port(name)
	if !ok {
		return
	}
	p.ConfigureIP(ip, mask)
	h.routes.AddConnected(ip, mask, name)
	h.World.IndexIPv4(ip, h.Equipment)
}

// AddStaticRoute exposes RouteTable.AddStatic.
func (h *Host) AddStaticRoute(network addr.IPv4, mask addr.SubnetMask, nextHop addr.IPv4, metric int) bool {
	return h.routes.AddStatic(network, mask, nextHop, metric)
}

// AddDefaultRoute exposes RouteTable.AddDefault.
func (h *Host) AddDefaultRoute(nextHop addr.IPv4, metric int) bool {
	return h.routes.AddDefault(nextHop, metric)
}

// Routes returns the host's routing table.
func (h *Host) Routes() *RouteTable { return &h.routes }

// ARPCache returns the host's ARP cache.
func (h *Host) ARPCache() *ARPCache { return h.arp }

// handleFrame dispatches ARP and IP traffic arriving on any port.
func (h *Host) handleFrame(ingress *iface.Port, frame pdu.EthernetFrame) {
	switch p := frame.Payload.(type) {
	case pdu.ARPPacket:
		h.handleARP(ingress, p)
	case pdu.IPv4Packet:
		h.handleIPv4(ingress, frame.SrcMAC, p)
	case pdu.IPv6Packet:
		// IPv6 packets are handed to handleIPv6 (ping.go), which
		// discards them: no ICMPv6 or NDP processing takes place.
		h.handleIPv6(ingress, p)
	}
}

func (h *Host) handleARP(ingress *iface.Port, pkt pdu.ARPPacket) {
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
		now := h.World.Scheduler.Now()
		h.arp.insert(pkt.SenderIP, pkt.SenderMAC, ingress.Name, now)
		h.resolveCallback(pkt.SenderIP, pkt.SenderMAC, true)
	}
}

// resolve checks the cache and calls cb at once on a hit. On a miss it
// broadcasts an ARP request on viaIface and calls cb when the reply
// arrives (from the frame handler, synchronously with delivery) or,
// if none has arrived, when the scheduled timeout fires.
func (h *Host) resolve(targetIP addr.IPv4, viaIface string, timeoutMs int64, cb func(addr.MAC, bool)) {
	if mac, ok := h.arp.Lookup(targetIP); ok {
		cb(mac, true)
		return
	}
	p, ok := h.Port(viaIface)
	if !ok {
		cb(addr.MAC{}, false)
		return
	}
	ip, _, hasIP := p.IPv4()
	if !hasIP {
		cb(addr.MAC{}, false)
		return
	}
	req := pdu.NewARPRequest(p.MAC, ip, targetIP)
	frame, ok := pdu.NewEthernetFrame(p.MAC, addr.BroadcastMAC(), req)
	if !ok {
		cb(addr.MAC{}, false)
		return
	}
	h.pendingARP[targetIP] = append(h.pendingARP[targetIP], cb)
	p.SendFrame(frame)

	h.World.Scheduler.After(timeoutMs, func() {
		h.resolveTimeout(targetIP)
	})
}

func (h *Host) resolveCallback(ip addr.IPv4, mac addr.MAC, ok bool) {
	cbs := h.pendingARP[ip]
	delete(h.pendingARP, ip)
	for _, cb := range cbs {
		cb(mac, ok)
	}
}

func (h *Host) resolveTimeout(ip addr.IPv4) {
	if _, ok := h.arp.Lookup(ip); ok {
		return // resolved before the timeout fired
	}
	cbs := h.pendingARP[ip]
	delete(h.pendingARP, ip)
	for _, cb := range cbs {
		cb(addr.MAC{}, false)
	}
}

// ResolveMAC exposes ARP resolution to protocols above the IP layer
// (e.g. dhcp.Client's unicast lease renewal) that need to address a
// specific peer directly instead of broadcasting.
func (h *Host) ResolveMAC(targetIP addr.IPv4, viaIface string, timeoutMs int64, cb func(addr.MAC, bool)) {
	h.resolve(targetIP, viaIface, timeoutMs, cb)
}

// InterfaceForSubnet returns the connected interface whose subnet
// contains ip, used by the routing layer to pick an egress port for
// directly-connected destinations.
func (h *Host) InterfaceForSubnet(ip addr.IPv4) (string, bool) {
	for _, r := range h.routes.Routes() {
		if r.Type == RouteConnected && ip.SameSubnet(r.Network, r.Mask) {
			return r.Iface, true
		}
	}
	return "", false
}
