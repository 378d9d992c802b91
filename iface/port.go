// Package iface models the network interface (Port) owned by a single
// piece of equipment: its addressing, link state, counters, and the
// send/receive primitives that sit directly above a Cable.
package iface

import (
	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/netlog"
	"github.com/netsimlab/netsim/pdu"
)

// Duplex is the link duplex mode, mirroring the half/full distinction
// carried in IEEE 802.3 BMCR/ANAR bits.
type Duplex uint8

const (
	DuplexHalf Duplex = iota
	DuplexFull
)

func (d Duplex) String() string {
	if d == DuplexFull {
		return "full"
	}
	return "half"
}

// IPv6Origin tags how an address ended up on a port.
type IPv6Origin uint8

const (
	IPv6OriginLinkLocal IPv6Origin = iota
	IPv6OriginStatic
	IPv6OriginSLAAC
	IPv6OriginDHCPv6
)

func (o IPv6Origin) String() string {
	switch o {
	case IPv6OriginLinkLocal:
		return "link-local"
	case IPv6OriginStatic:
		return "static"
	case IPv6OriginSLAAC:
		return "slaac"
	case IPv6OriginDHCPv6:
		return "dhcpv6"
	default:
		return "unknown"
	}
}

// IPv6Addr is one IPv6 address attached to a port, tagged with its
// origin and prefix length.
type IPv6Addr struct {
	Address  addr.IPv6
	Prefix   uint8
	Origin   IPv6Origin
}

// Counters holds the per-port traffic and error tallies.
type Counters struct {
	FramesIn  uint64
	FramesOut uint64
	BytesIn   uint64
	BytesOut  uint64
	ErrorsIn  uint64
	ErrorsOut uint64
	DropsIn   uint64
	DropsOut  uint64
}

// SecurityMode is the action taken when port security's MAC limit is
// exceeded.
type SecurityMode uint8

const (
	SecurityShutdown SecurityMode = iota
	SecurityRestrict
	SecurityProtect
)

// Security holds port-security configuration and learned state.
type Security struct {
	Enabled    bool
	MaxMACs    int
	Mode       SecurityMode
	secureMACs []addr.MAC
	Violations uint64
}

func (s *Security) hasLearned(mac addr.MAC) bool {
	for _, m := range s.secureMACs {
		if m == mac {
			return true
		}
	}
	return false
}

// FrameHandler is invoked with every frame a port accepts on receive.
type FrameHandler func(p *Port, frame pdu.EthernetFrame)

// CableHandle is the minimal surface Port needs from the link layer;
// link implements it. Kept as an interface here (rather than Port
// importing link directly) to avoid a dependency cycle, since a Cable
// holds references to the two Ports it joins.
type CableHandle interface {
	Transmit(frame pdu.EthernetFrame, from *Port) bool
	IsUp() bool
	PeerSpeedMbps(of *Port) int
	PeerDuplex(of *Port) Duplex
	MaxSpeedMbps() int
}

// Port is a single network interface owned by exactly one piece of
// equipment.
type Port struct {
	Name string
	MAC  addr.MAC

	up bool

	ipv4     addr.IPv4
	mask     addr.SubnetMask
	hasIPv4  bool
	ipv6     []IPv6Addr

	MTU  int
	Speed  int // mbps, own advertised capability
	Duplex Duplex
	AutoNegotiate bool

	negotiatedSpeed  int
	negotiatedDuplex Duplex

	Security Security

	Counters Counters

	cable CableHandle

	handler FrameHandler

	bus *netlog.Bus
}

// NewPort constructs a port with the given name, generating a MAC if
// the zero value is supplied.
func NewPort(name string, mac addr.MAC, bus *netlog.Bus) *Port {
	if mac.IsZero() {
		mac = addr.GenerateLocalMAC()
	}
	return &Port{
		Name:          name,
		MAC:           mac,
		MTU:           1500,
		Speed:         1000,
		Duplex:        DuplexFull,
		AutoNegotiate: true,
		bus:           bus,
	}
}

// SetHandler installs the callback invoked on every accepted frame.
func (p *Port) SetHandler(h FrameHandler) { p.handler = h }

// IsUp reports the administrative/operational up state.
func (p *Port) IsUp() bool { return p.up }

// ConfigureIP stores the IPv4 address and mask.
func (p *Port) ConfigureIP(ip addr.IPv4, mask addr.SubnetMask) {
	p.ipv4 = ip
	p.mask = mask
	p.hasIPv4 = true
	p.logf(netlog.LevelInfo, "port:ip-config", "assigned IPv4 address")
}

// ClearIP removes the IPv4 configuration.
func (p *Port) ClearIP() {
	p.ipv4 = addr.IPv4{}
	p.mask = addr.SubnetMask{}
	p.hasIPv4 = false
}

// IPv4 returns the configured address, mask, and whether one is set.
func (p *Port) IPv4() (addr.IPv4, addr.SubnetMask, bool) {
	return p.ipv4, p.mask, p.hasIPv4
}

// EnableIPv6 is idempotent; it auto-derives the EUI-64 link-local
// address from the port's MAC if IPv6 has not yet been enabled.
func (p *Port) EnableIPv6() {
	for _, a := range p.ipv6 {
		if a.Origin == IPv6OriginLinkLocal {
			return
		}
	}
	ll := addr.EUI64LinkLocal(p.MAC, p.Name)
	p.ipv6 = append(p.ipv6, IPv6Addr{Address: ll, Prefix: 64, Origin: IPv6OriginLinkLocal})
}

// ConfigureIPv6 enables IPv6 if needed and attaches a static address,
// rejecting duplicates by address+prefix. Link-local addresses get
// the port's name as their zone.
func (p *Port) ConfigureIPv6(address addr.IPv6, prefixLen uint8) bool {
	p.EnableIPv6()
	if address.IsLinkLocal() {
		address = address.WithZone(p.Name)
	}
	for _, a := range p.ipv6 {
		if a.Address.Equal(address) && a.Prefix == prefixLen {
			return false
		}
	}
	p.ipv6 = append(p.ipv6, IPv6Addr{Address: address, Prefix: prefixLen, Origin: IPv6OriginStatic})
	return true
}

// AddSLAACAddress combines prefix's network portion with the port's
// EUI-64 host portion and attaches the result.
func (p *Port) AddSLAACAddress(prefix addr.IPv6, prefixLen uint8) addr.IPv6 {
	p.EnableIPv6()
	a := addr.AddSLAACHostPart(prefix, int(prefixLen), p.MAC)
	p.ipv6 = append(p.ipv6, IPv6Addr{Address: a, Prefix: prefixLen, Origin: IPv6OriginSLAAC})
	return a
}

// IPv6Addrs returns every IPv6 address attached to the port.
func (p *Port) IPv6Addrs() []IPv6Addr {
	return p.ipv6
}

// SetUp is idempotent: it only fires link-change observers when the
// administrative state actually changes.
func (p *Port) SetUp(up bool) {
	if p.up == up {
		return
	}
	p.up = up
	if up {
		p.logf(netlog.LevelInfo, "port:link-up", "port administratively enabled")
	} else {
		p.negotiatedSpeed = 0
		p.logf(netlog.LevelWarn, "port:link-down", "port administratively disabled")
	}
}

// ConnectCable attaches the cable handle; callers (link.Cable) are
// responsible for calling this on both ends and running negotiation.
func (p *Port) ConnectCable(c CableHandle) {
	p.cable = c
}

// DisconnectCable clears the cable reference, zeroes the negotiated
// speed/duplex, and fires link-down.
func (p *Port) DisconnectCable() {
	p.cable = nil
	p.negotiatedSpeed = 0
	p.negotiatedDuplex = 0
	p.logf(netlog.LevelWarn, "port:link-down", "cable disconnected")
}

// HasCable reports whether a cable is currently attached.
func (p *Port) HasCable() bool { return p.cable != nil }

// Negotiate computes this port's negotiated speed/duplex against a
// peer's advertised speed/duplex and the cable's maximum speed. When
// auto-negotiation is disabled, negotiatedSpeed is this port's own
// configured speed capped by the cable, and duplex is whatever this
// port is forced to.
func (p *Port) Negotiate(peerSpeed int, peerDuplex Duplex, cableMaxSpeed int) {
	if !p.AutoNegotiate {
		p.negotiatedSpeed = min(p.Speed, cableMaxSpeed)
		p.negotiatedDuplex = p.Duplex
		return
	}
	p.negotiatedSpeed = min(p.Speed, peerSpeed, cableMaxSpeed)
	if p.Duplex == DuplexHalf || peerDuplex == DuplexHalf {
		p.negotiatedDuplex = DuplexHalf
	} else {
		p.negotiatedDuplex = DuplexFull
	}
}

// NegotiatedSpeed and NegotiatedDuplex expose the result of the most
// recent negotiation.
func (p *Port) NegotiatedSpeed() int        { return p.negotiatedSpeed }
func (p *Port) NegotiatedDuplex() Duplex    { return p.negotiatedDuplex }

// SendFrame fails if the port is down or has no cable. It increments
// drops-out on failure and frames-out on submission, returning
// whether the cable accepted the frame.
func (p *Port) SendFrame(frame pdu.EthernetFrame) bool {
	if !p.up || p.cable == nil {
		p.Counters.DropsOut++
		return false
	}
	p.Counters.FramesOut++
	p.Counters.BytesOut += frameSizeEstimate(frame)
	return p.cable.Transmit(frame, p)
}

// ReceiveFrame is invoked by the cable when a frame arrives. If the
// port is down, it is dropped. If port security is enabled, the
// frame's source MAC is checked first.
func (p *Port) ReceiveFrame(frame pdu.EthernetFrame) {
	if !p.up {
		p.Counters.DropsIn++
		return
	}
	if p.Security.Enabled {
		if !p.checkPortSecurity(frame.SrcMAC) {
			return
		}
	}
	p.Counters.FramesIn++
	p.Counters.BytesIn += frameSizeEstimate(frame)
	if p.handler != nil {
		p.handler(p, frame)
	}
}

// checkPortSecurity applies the secure-MAC learning and violation
// policy, returning whether the frame should continue to be processed.
func (p *Port) checkPortSecurity(src addr.MAC) bool {
	s := &p.Security
	if s.hasLearned(src) {
		return true
	}
	if len(s.secureMACs) < s.MaxMACs {
		s.secureMACs = append(s.secureMACs, src)
		return true
	}
	s.Violations++
	switch s.Mode {
	case SecurityShutdown:
		p.SetUp(false)
		p.logf(netlog.LevelError, "port:security-violation", "port shut down on security violation")
	case SecurityRestrict:
		p.Counters.DropsIn++
		p.logf(netlog.LevelWarn, "port:security-violation", "frame dropped on security violation")
	case SecurityProtect:
		// silent drop, no log
	}
	return false
}

func frameSizeEstimate(frame pdu.EthernetFrame) uint64 {
	const ethHeader = 14
	size := uint64(ethHeader)
	if frame.Dot1Q != nil {
		size += 4
	}
	if raw, ok := frame.Payload.(pdu.RawPayload); ok {
		size += uint64(len(raw))
	}
	return size
}

func (p *Port) logf(level netlog.Level, event, msg string) {
	if p.bus == nil {
		return
	}
	switch level {
	case netlog.LevelWarn:
		p.bus.Warn(p.Name, event, msg)
	case netlog.LevelError:
		p.bus.Error(p.Name, event, msg)
	default:
		p.bus.Info(p.Name, event, msg)
	}
}
