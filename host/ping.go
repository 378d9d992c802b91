package host

import (
	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// PingResult is the outcome of a single echo-request/reply exchange.
type PingResult struct {
	Success bool
	FromIP  addr.IPv4
	TTL     uint8
	RTTMs   float64
	Error   string
}

// TracerouteHop is a single recorded hop; IP is the zero value when
// no reply arrived for that TTL.
type TracerouteHop struct {
	TTL   uint8
	IP    addr.IPv4
	RTTMs float64
	Ok    bool
}

const (
	pingReplyTimeoutMs = 2000
	pingARPTimeoutMs   = 1000
	tracerouteMaxHops  = 30
)

type echoKey struct {
	id, seq uint16
}

type pendingEcho struct {
	sentAt   int64
	callback func(PingResult)
}

// Ping performs count echo-requests against dst, calling onResult for
// each sequence number as it completes, in order.
func (h *Host) Ping(dst addr.IPv4, count int, ttl uint8, onResult func(seq int, r PingResult)) {
	if ttl == 0 {
		ttl = h.defaultTTL
	}
	for seq := 0; seq < count; seq++ {
		s := uint16(seq)
		h.pingOnce(dst, s, ttl, func(r PingResult) { onResult(int(s), r) })
	}
}

func (h *Host) pingOnce(dst addr.IPv4, seq uint16, ttl uint8, cb func(PingResult)) {
	route, ok := h.routes.Lookup(dst)
	if !ok {
		cb(PingResult{Success: false, Error: "Network is unreachable"})
		return
	}
	nextHopIP := dst
	if route.HasNextHop {
		nextHopIP = route.NextHop
	}
	const echoID = 1
	sentAt := h.World.Scheduler.Now()
	h.resolve(nextHopIP, route.Iface, pingARPTimeoutMs, func(mac addr.MAC, resolved bool) {
		if !resolved {
			cb(PingResult{Success: false})
			return
		}
		h.sendEchoRequest(route.Iface, mac, dst, echoID, seq, ttl, sentAt, cb)
	})
}

func (h *Host) sendEchoRequest(ifaceName string, dstMAC addr.MAC, dstIP addr.IPv4, id, seq uint16, ttl uint8, sentAt int64, cb func(PingResult)) {
	p, ok := h.Port(ifaceName)
	if !ok {
		cb(PingResult{Success: false})
		return
	}
	srcIP, _, _ := p.IPv4()
	icmp := pdu.ICMPPacket{Type: pdu.ICMPEchoRequest, ID: id, Sequence: seq}
	ipPkt := pdu.NewIPv4Packet(srcIP, dstIP, ttl, pdu.ProtoICMP, icmp)
	frame, ok := pdu.NewEthernetFrame(p.MAC, dstMAC, ipPkt)
	if !ok {
		cb(PingResult{Success: false})
		return
	}
	key := echoKey{id: id, seq: seq}
	h.pendingEchoes[key] = pendingEcho{sentAt: sentAt, callback: cb}
	p.SendFrame(frame)

	h.World.Scheduler.After(pingReplyTimeoutMs, func() {
		if _, stillPending := h.pendingEchoes[key]; stillPending {
			delete(h.pendingEchoes, key)
			cb(PingResult{Success: false})
		}
	})
}

// handleIPv4 dispatches a received IPv4 packet. UDP datagrams are
// handed to whatever handler registered for their destination port
// (dhcp.Client/dhcp.Server and similar application-layer protocols);
// everything else is assumed to be ICMP: echo-requests addressed to
// one of this host's own interfaces are answered directly, and
// echo-reply/time-exceeded/destination-unreachable datagrams are
// matched against in-flight pings.
func (h *Host) handleIPv4(ingress *iface.Port, srcMAC addr.MAC, pkt pdu.IPv4Packet) {
	if udp, ok := pkt.Payload.(pdu.UDPPacket); ok {
		for _, handler := range h.udpHandlers[udp.DstPort] {
			if handler(ingress, pkt, udp) {
				break
			}
		}
		return
	}

	icmp, ok := pkt.Payload.(pdu.ICMPPacket)
	if !ok {
		return
	}

	if icmp.Type == pdu.ICMPEchoRequest {
		h.replyToEchoRequest(ingress, srcMAC, pkt, icmp)
		return
	}

	key := echoKey{id: icmp.ID, seq: icmp.Sequence}
	pending, ok := h.pendingEchoes[key]
	if !ok {
		return
	}
	delete(h.pendingEchoes, key)
	now := h.World.Scheduler.Now()
	rtt := float64(now - pending.sentAt)

	switch icmp.Type {
	case pdu.ICMPEchoReply:
		pending.callback(PingResult{Success: true, FromIP: pkt.SourceIP, TTL: pkt.TTL, RTTMs: rtt})
	case pdu.ICMPTimeExceeded:
		pending.callback(PingResult{
			Success: false,
			FromIP:  pkt.SourceIP,
			RTTMs:   rtt,
			Error:   "Time to live exceeded from " + pkt.SourceIP.String(),
		})
	case pdu.ICMPDestinationUnreachable:
		pending.callback(PingResult{
			Success: false,
			FromIP:  pkt.SourceIP,
			RTTMs:   rtt,
			Error:   "Destination unreachable from " + pkt.SourceIP.String(),
		})
	}
}

// replyToEchoRequest answers an ICMP echo-request addressed to one of
// this host's own interfaces. Requests addressed elsewhere (the host
// is acting only as an L2/L3 relay it has no forwarding role for) are
// silently ignored, since end hosts in this simulator don't forward.
func (h *Host) replyToEchoRequest(ingress *iface.Port, srcMAC addr.MAC, pkt pdu.IPv4Packet, icmp pdu.ICMPPacket) {
	ip, _, ok := ingress.IPv4()
	if !ok || !ip.Equal(pkt.DestinationIP) {
		return
	}
	reply := pdu.ICMPPacket{Type: pdu.ICMPEchoReply, ID: icmp.ID, Sequence: icmp.Sequence}
	ipPkt := pdu.NewIPv4Packet(ip, pkt.SourceIP, h.defaultTTL, pdu.ProtoICMP, reply)
	frame, ok := pdu.NewEthernetFrame(ingress.MAC, srcMAC, ipPkt)
	if !ok {
		return
	}
	ingress.SendFrame(frame)
}

// handleIPv6 is the IPv6 analogue of handleIPv4; NDP address
// resolution and ICMPv6 echo are not yet exercised by ping/traceroute
// in this build, so reception is a no-op beyond frame dispatch.
func (h *Host) handleIPv6(ingress *iface.Port, pkt pdu.IPv6Packet) {}

// Traceroute repeatedly pings dst with incrementing TTL, recording a
// hop for each time-exceeded reply and stopping at the first
// echo-reply or after tracerouteMaxHops attempts. Callbacks fire in
// TTL order without goroutines or blocking channels: within
// Host.Traceroute's own call when replies arrive over the cable, or
// later from Scheduler.Advance when a hop is decided by a timeout.
// A non-responding first hop yields
// no callback at all ("network unreachable"); a non-responding
// intermediate hop is reported with Ok=false and traceroute continues
// to the next TTL, mirroring a real traceroute's "* * *" hops.
func (h *Host) Traceroute(dst addr.IPv4, onHop func(hop TracerouteHop)) {
	var step func(ttl uint8)
	step = func(ttl uint8) {
		if ttl > tracerouteMaxHops {
			return
		}
		h.pingOnce(dst, uint16(ttl), ttl, func(r PingResult) {
			switch {
			case r.Success:
				onHop(TracerouteHop{TTL: ttl, IP: r.FromIP, RTTMs: r.RTTMs, Ok: true})
				return // destination reached, stop
			case r.FromIP != (addr.IPv4{}):
				onHop(TracerouteHop{TTL: ttl, IP: r.FromIP, RTTMs: r.RTTMs, Ok: true})
				step(ttl + 1)
			case ttl == 1:
				// empty result: first hop produced no reply at all.
			default:
				onHop(TracerouteHop{TTL: ttl, Ok: false})
				step(ttl + 1)
			}
		})
	}
	step(1)
}
