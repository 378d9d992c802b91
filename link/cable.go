// Package link models the point-to-point physical connection between
// two ports: the Cable type, its spec table, and the transmit
// primitive that actually moves frames between port halves.
package link

import (
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/netlog"
	"github.com/netsimlab/netsim/pdu"
)

// CableType identifies the physical medium, which bounds speed and
// length and sets the propagation constant used for delay reporting.
type CableType uint8

const (
	CableCat5e CableType = iota
	CableCat6
	CableCat6a
	CableFiberSingle
	CableFiberMulti
	CableCrossover
	CableSerial
)

func (t CableType) String() string {
	switch t {
	case CableCat5e:
		return "cat5e"
	case CableCat6:
		return "cat6"
	case CableCat6a:
		return "cat6a"
	case CableFiberSingle:
		return "fiber-single"
	case CableFiberMulti:
		return "fiber-multi"
	case CableCrossover:
		return "crossover"
	case CableSerial:
		return "serial"
	default:
		return "unknown"
	}
}

// spec holds the per-type physical limits used for negotiation and
// delay reporting.
type spec struct {
	maxSpeedMbps   int
	maxLengthM     float64
	propagationNsM float64 // nanoseconds per meter
}

var cableSpecs = map[CableType]spec{
	CableCat5e:       {maxSpeedMbps: 1000, maxLengthM: 100, propagationNsM: 5.0},
	CableCat6:        {maxSpeedMbps: 1000, maxLengthM: 100, propagationNsM: 4.8},
	CableCat6a:       {maxSpeedMbps: 10000, maxLengthM: 100, propagationNsM: 4.8},
	CableFiberSingle: {maxSpeedMbps: 100000, maxLengthM: 40000, propagationNsM: 4.9},
	CableFiberMulti:  {maxSpeedMbps: 10000, maxLengthM: 550, propagationNsM: 4.9},
	CableCrossover:   {maxSpeedMbps: 1000, maxLengthM: 100, propagationNsM: 5.0},
	CableSerial:      {maxSpeedMbps: 8, maxLengthM: 15, propagationNsM: 5.7},
}

// Counters tracks the cable's own traffic and loss tallies, separate
// from the per-port counters on each end.
type Counters struct {
	FramesTransmitted uint64
	FramesLost        uint64
}

// Cable is a point-to-point link joining exactly two ports.
type Cable struct {
	Type           CableType
	LengthMeters   float64
	PacketLossRate float64 // in [0, 1]

	up bool

	a, b *iface.Port

	Counters Counters

	bus  *netlog.Bus
	rand func() float64
}

// NewCable constructs an unconnected cable of the given type, length
// and loss rate. Loss decisions draw from the package-level PRNG in
// rand.go; the constructor takes no random source of its own.
func NewCable(typ CableType, lengthMeters float64, lossRate float64, bus *netlog.Bus) *Cable {
	return &Cable{
		Type:           typ,
		LengthMeters:   lengthMeters,
		PacketLossRate: lossRate,
		bus:            bus,
		rand:           defaultRand,
	}
}

// Spec exposes the physical limits for the cable's type.
func (c *Cable) Spec() (maxSpeedMbps int, maxLengthM, propagationNsM float64) {
	s := cableSpecs[c.Type]
	return s.maxSpeedMbps, s.maxLengthM, s.propagationNsM
}

// PropagationDelayNs reports the one-way propagation delay implied by
// the cable's length and type. This is metadata only: delivery in
// Transmit is synchronous, to keep the simulation deterministic.
func (c *Cable) PropagationDelayNs() float64 {
	_, _, perMeter := c.Spec()
	return c.LengthMeters * perMeter
}

// Connect installs both port references, negotiates in both
// directions, logs a mismatch if the resulting duplexes differ, and
// fires link-up.
func (c *Cable) Connect(a, b *iface.Port) {
	c.a, c.b = a, b
	c.up = true

	maxSpeed, _, _ := c.Spec()
	a.ConnectCable(c)
	b.ConnectCable(c)

	a.Negotiate(peerSpeed(b), peerDuplex(b), maxSpeed)
	b.Negotiate(peerSpeed(a), peerDuplex(a), maxSpeed)

	if a.NegotiatedDuplex() != b.NegotiatedDuplex() {
		c.logf(netlog.LevelWarn, "cable:duplex-mismatch", "negotiated duplex differs between ends")
	}
	c.logf(netlog.LevelInfo, "cable:link-up", "cable connected")
}

// Disconnect nulls both port references and fires link-down on both.
func (c *Cable) Disconnect() {
	c.up = false
	if c.a != nil {
		c.a.DisconnectCable()
	}
	if c.b != nil {
		c.b.DisconnectCable()
	}
	c.a, c.b = nil, nil
	c.logf(netlog.LevelWarn, "cable:link-down", "cable disconnected")
}

// IsUp reports whether the cable is currently connected.
func (c *Cable) IsUp() bool { return c.up }

// Transmit is the delivery primitive invoked by Port.SendFrame. It
// fails closed if the cable is down or either end is absent.
// Otherwise it probabilistically drops the frame per PacketLossRate,
// then delivers it synchronously to the opposite port.
func (c *Cable) Transmit(frame pdu.EthernetFrame, from *iface.Port) bool {
	if !c.up || c.a == nil || c.b == nil {
		return false
	}
	if c.rand() < c.PacketLossRate {
		c.Counters.FramesLost++
		return false
	}
	other := c.opposite(from)
	if other == nil {
		return false
	}
	c.Counters.FramesTransmitted++
	other.ReceiveFrame(frame)
	return true
}

func (c *Cable) opposite(p *iface.Port) *iface.Port {
	switch p {
	case c.a:
		return c.b
	case c.b:
		return c.a
	default:
		return nil
	}
}

// PeerSpeedMbps and PeerDuplex let a port ask what the far end is
// advertising, for auto-negotiation. Returns the far end's own Speed
// and Duplex regardless of `of`'s identity on this cable's two ends.
func (c *Cable) PeerSpeedMbps(of *iface.Port) int {
	other := c.opposite(of)
	return peerSpeed(other)
}

func (c *Cable) PeerDuplex(of *iface.Port) iface.Duplex {
	other := c.opposite(of)
	return peerDuplex(other)
}

// MaxSpeedMbps exposes the cable type's bandwidth ceiling.
func (c *Cable) MaxSpeedMbps() int {
	s, _, _ := c.Spec()
	return s
}

func peerSpeed(p *iface.Port) int {
	if p == nil {
		return 0
	}
	return p.Speed
}

func peerDuplex(p *iface.Port) iface.Duplex {
	if p == nil {
		return iface.DuplexFull
	}
	return p.Duplex
}

func (c *Cable) logf(level netlog.Level, event, msg string) {
	if c.bus == nil {
		return
	}
	switch level {
	case netlog.LevelWarn:
		c.bus.Warn("cable", event, msg)
	case netlog.LevelError:
		c.bus.Error("cable", event, msg)
	default:
		c.bus.Info("cable", event, msg)
	}
}
