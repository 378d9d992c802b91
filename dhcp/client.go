package dhcp

import (
	"hash/fnv"
	"log/slog"
	"sync/atomic"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/host"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

const (
	offerTimeoutMs    = 5000
	renewARPTimeoutMs = 1000
)

var xidCounter uint32

// nextXID hands out a process-wide monotonic transaction id. A
// counter keeps runs deterministic; real clients use random xids, but
// nothing here depends on that, and determinism is worth more.
func nextXID() uint32 {
	return atomic.AddUint32(&xidCounter, 1)
}

// Client runs the DORA state machine for one host interface.
type Client struct {
	host    *host.Host
	iface   string
	verbose bool

	state ClientState
	xid   uint32

	leaseIP      addr.IPv4
	mask         addr.SubnetMask
	gateway      addr.IPv4
	hasGateway   bool
	dns          []addr.IPv4
	domain       string
	leaseSeconds int64
	leaseStart   int64
	serverIP     addr.IPv4
	selfAssigned bool

	running bool

	offerTimer  equipment.TimerID
	t1Timer     equipment.TimerID
	t2Timer     equipment.TimerID
	expiryTimer equipment.TimerID

	trace func(line string)
}

// SetTrace installs fn to receive one line per DORA protocol event
// (DISCOVER/OFFER/REQUEST/ACK/NAK), in the wording `dhclient -v`
// prints. Used by the host CLI's dhclient command to build its
// verbose trace without the client package knowing anything about a
// shell; nil clears it.
func (c *Client) SetTrace(fn func(line string)) { c.trace = fn }

func (c *Client) emitTrace(line string) {
	if c.trace != nil {
		c.trace(line)
	}
}

// NewClient creates a DHCP client bound to iface on h. verbose
// controls DISCOVER-timeout behavior: verbose clients log and return
// to INIT, waiting for the operator to retry; non-verbose clients
// fall back to a deterministic self-assigned address.
func NewClient(h *host.Host, ifaceName string, verbose bool) *Client {
	c := &Client{host: h, iface: ifaceName, verbose: verbose, state: StateInit}
	h.RegisterUDPHandler(ClientPort, c.handleDatagram)
	return c
}

// State returns the client's current lifecycle position.
func (c *Client) State() ClientState { return c.state }

// LeaseIP returns the currently bound (or self-assigned) address, and
// whether one is held at all.
func (c *Client) LeaseIP() (addr.IPv4, bool) { return c.leaseIP, c.state.HasIP() }

// Running reports whether Start has been called without a matching
// StopProcess.
func (c *Client) Running() bool { return c.running }

// Start assigns a fresh transaction id and begins a DORA exchange from
// INIT, broadcasting a DISCOVER.
func (c *Client) Start() {
	c.running = true
	c.state = StateInit
	c.beginDiscover()
}

// StopProcess cancels every pending timer without notifying the
// server or releasing the lease, as when the interface is
// administratively shut down.
func (c *Client) StopProcess() {
	c.running = false
	c.cancelTimers()
}

// ReleaseLease sends a RELEASE to the bound server (if one is known),
// clears the leased address off the interface, and returns to INIT.
func (c *Client) ReleaseLease() {
	if c.state.HasIP() && !c.selfAssigned {
		c.sendRelease()
	}
	c.clearLease()
}

func (c *Client) beginDiscover() {
	c.xid = nextXID()
	c.state = StateSelecting
	c.sendDiscover()
	c.offerTimer = c.after(offerTimeoutMs, c.onOfferTimeout)
}

func (c *Client) onOfferTimeout() {
	if c.state != StateSelecting {
		return
	}
	if c.verbose {
		c.emitTrace("No DHCPOFFERS received.")
		c.host.Warn("dhcp:no-offer", "No DHCPOFFERS received", slog.String("iface", c.iface))
		c.state = StateInit
		return
	}
	c.selfAssign()
}

// selfAssign deterministically derives a link-local (169.254/16)
// address from the interface's MAC, the non-verbose fallback a client
// takes when no server answers its DISCOVER.
func (c *Client) selfAssign() {
	p, ok := c.host.Port(c.iface)
	if !ok {
		return
	}
	ip := selfAssignedIP(p.MAC)
	mask, _ := addr.SubnetMaskFromCIDR(16)
	c.leaseIP = ip
	c.mask = mask
	c.hasGateway = false
	c.dns = nil
	c.domain = ""
	c.leaseSeconds = 0
	c.serverIP = addr.IPv4{}
	c.selfAssigned = true
	c.state = StateBound
	c.host.ConfigureInterface(c.iface, ip, mask)
	c.host.Info("dhcp:self-assigned", "no DHCPOFFERS received, self-assigning link-local address",
		slog.String("iface", c.iface), slog.String("ip", ip.String()))
}

func selfAssignedIP(mac addr.MAC) addr.IPv4 {
	h := fnv.New32a()
	h.Write(mac[:])
	sum := h.Sum32()
	b3, b4 := byte(sum>>8), byte(sum)
	if b3 == 0 || b3 == 255 {
		b3 = 1
	}
	if b4 == 0 || b4 == 255 {
		b4 = 1
	}
	return addr.IPv4{169, 254, b3, b4}
}

func (c *Client) sendDiscover() {
	p, ok := c.host.Port(c.iface)
	if !ok {
		return
	}
	msg := pdu.DHCPMessage{
		Op:          pdu.DHCPBootRequest,
		MessageType: pdu.DHCPDiscover,
		XID:         c.xid,
		ClientMAC:   p.MAC,
	}
	c.emitTrace("DHCPDISCOVER on " + c.iface + " to 255.255.255.255 port 67")
	c.broadcast(msg)
}

func (c *Client) broadcast(msg pdu.DHCPMessage) {
	c.host.SendUDP(c.iface, addr.BroadcastMAC(), addr.IPv4{255, 255, 255, 255}, ClientPort, ServerPort, 64, msg)
}

func (c *Client) handleDatagram(ingress *iface.Port, ip pdu.IPv4Packet, udp pdu.UDPPacket) bool {
	if ingress.Name != c.iface {
		return false
	}
	msg, ok := udp.Payload.(pdu.DHCPMessage)
	if !ok || msg.XID != c.xid {
		return false
	}
	switch msg.MessageType {
	case pdu.DHCPOffer:
		c.handleOffer(msg)
	case pdu.DHCPAck:
		c.handleAck(msg)
	case pdu.DHCPNak:
		c.handleNak()
	}
	return true
}

func (c *Client) handleOffer(msg pdu.DHCPMessage) {
	if c.state != StateSelecting {
		return
	}
	c.cancel(&c.offerTimer)
	c.state = StateRequesting
	c.emitTrace("DHCPOFFER of " + msg.YourIP.String() + " from " + msg.ServerIP.String())
	c.sendRequest(msg, addr.BroadcastMAC(), addr.IPv4{255, 255, 255, 255})
}

func (c *Client) sendRequest(offer pdu.DHCPMessage, dstMAC addr.MAC, dstIP addr.IPv4) {
	p, ok := c.host.Port(c.iface)
	if !ok {
		return
	}
	msg := pdu.DHCPMessage{
		Op:             pdu.DHCPBootRequest,
		MessageType:    pdu.DHCPRequest,
		XID:            c.xid,
		ClientMAC:      p.MAC,
		RequestedIP:    offer.YourIP,
		HasRequestedIP: true,
		ServerIP:       offer.ServerIP,
	}
	c.emitTrace("DHCPREQUEST of " + offer.YourIP.String() + " on " + c.iface + " to " + dstIP.String() + " port 67")
	c.host.SendUDP(c.iface, dstMAC, dstIP, ClientPort, ServerPort, 64, msg)
}

func (c *Client) handleAck(msg pdu.DHCPMessage) {
	switch c.state {
	case StateRequesting, StateRenewing, StateRebinding:
	default:
		return
	}
	c.cancelTimers()

	c.leaseIP = msg.YourIP
	c.mask = msg.SubnetMask
	c.gateway = msg.Router
	c.hasGateway = msg.HasRouter
	c.dns = msg.DNSServers
	c.domain = msg.DomainName
	c.leaseSeconds = int64(msg.LeaseSeconds)
	c.serverIP = msg.ServerIP
	c.selfAssigned = false
	c.state = StateBound
	c.leaseStart = c.host.World.Scheduler.Now()

	c.host.ConfigureInterface(c.iface, c.leaseIP, c.mask)
	if c.hasGateway {
		c.host.AddDefaultRoute(c.gateway, 1)
	}
	c.emitTrace("DHCPACK of " + c.leaseIP.String() + " from " + c.serverIP.String())
	c.host.Info("dhcp:bound", "lease acquired", slog.String("iface", c.iface), slog.String("ip", c.leaseIP.String()))
	c.armLeaseTimers()
}

func (c *Client) handleNak() {
	switch c.state {
	case StateRequesting, StateRenewing, StateRebinding:
		c.emitTrace("DHCPNAK from server")
		c.host.Warn("dhcp:nak", "lease request denied", slog.String("iface", c.iface))
		c.clearLease()
	}
}

func (c *Client) armLeaseTimers() {
	if c.leaseSeconds <= 0 {
		return // self-assigned or infinite lease: no renewal timers
	}
	leaseMs := c.leaseSeconds * 1000
	c.t1Timer = c.after(leaseMs/2, c.onT1)
	c.t2Timer = c.after(leaseMs*7/8, c.onT2)
	c.expiryTimer = c.after(leaseMs, c.onExpiry)
}

func (c *Client) onT1() {
	if c.state != StateBound {
		return
	}
	c.state = StateRenewing
	c.host.ResolveMAC(c.serverIP, c.iface, renewARPTimeoutMs, func(mac addr.MAC, ok bool) {
		if !ok || c.state != StateRenewing {
			return // T2 still pending; it will fall back to a broadcast rebind
		}
		c.sendRequest(pdu.DHCPMessage{YourIP: c.leaseIP, ServerIP: c.serverIP}, mac, c.serverIP)
	})
}

func (c *Client) onT2() {
	if c.state != StateRenewing && c.state != StateBound {
		return
	}
	c.state = StateRebinding
	c.sendRequest(pdu.DHCPMessage{YourIP: c.leaseIP}, addr.BroadcastMAC(), addr.IPv4{255, 255, 255, 255})
}

func (c *Client) onExpiry() {
	if !c.state.HasIP() {
		return
	}
	c.host.Warn("dhcp:expired", "lease expired without renewal", slog.String("iface", c.iface))
	c.clearLease()
}

func (c *Client) sendRelease() {
	p, ok := c.host.Port(c.iface)
	if !ok {
		return
	}
	msg := pdu.DHCPMessage{
		Op:          pdu.DHCPBootRequest,
		MessageType: pdu.DHCPRelease,
		XID:         c.xid,
		ClientMAC:   p.MAC,
		RequestedIP: c.leaseIP,
	}
	c.host.SendUDP(c.iface, addr.BroadcastMAC(), c.serverIP, ClientPort, ServerPort, 64, msg)
}

func (c *Client) clearLease() {
	c.cancelTimers()
	if p, ok := c.host.Port(c.iface); ok {
		p.ClearIP()
	}
	c.leaseIP = addr.IPv4{}
	c.mask = addr.SubnetMask{}
	c.hasGateway = false
	c.selfAssigned = false
	c.state = StateInit
}

func (c *Client) cancelTimers() {
	c.cancel(&c.offerTimer)
	c.cancel(&c.t1Timer)
	c.cancel(&c.t2Timer)
	c.cancel(&c.expiryTimer)
}

func (c *Client) after(delayMs int64, fn func()) equipment.TimerID {
	return c.host.World.Scheduler.After(delayMs, fn)
}

func (c *Client) cancel(id *equipment.TimerID) {
	if *id == 0 {
		return
	}
	c.host.World.Scheduler.Cancel(*id)
	*id = 0
}
