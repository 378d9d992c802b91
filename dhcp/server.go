package dhcp

import (
	"encoding/hex"
	"log/slog"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/host"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// Server answers DISCOVER/REQUEST/RELEASE traffic on one host
// interface against a set of named pools.
type Server struct {
	host  *host.Host
	iface string

	pools    []*Pool
	byName   map[string]*Pool
	bindings map[addr.IPv4]*Binding
}

// NewServer creates a DHCP server bound to iface on h.
func NewServer(h *host.Host, ifaceName string) *Server {
	s := &Server{
		host:     h,
		iface:    ifaceName,
		byName:   map[string]*Pool{},
		bindings: map[addr.IPv4]*Binding{},
	}
	h.RegisterUDPHandler(ServerPort, s.handleDatagram)
	return s
}

// AddPool registers a pool, replacing any existing pool of the same
// name.
func (s *Server) AddPool(p *Pool) {
	if _, exists := s.byName[p.Name]; !exists {
		s.pools = append(s.pools, p)
	} else {
		for i, existing := range s.pools {
			if existing.Name == p.Name {
				s.pools[i] = p
				break
			}
		}
	}
	s.byName[p.Name] = p
}

// Pool looks up a registered pool by name.
func (s *Server) Pool(name string) (*Pool, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Bindings returns every currently held lease/reservation, keyed by
// address.
func (s *Server) Bindings() map[addr.IPv4]*Binding { return s.bindings }

func clientIdentifier(mac addr.MAC, optionClientID string) string {
	if optionClientID != "" {
		return optionClientID
	}
	return hex.EncodeToString(mac[:])
}

func (s *Server) handleDatagram(ingress *iface.Port, ip pdu.IPv4Packet, udp pdu.UDPPacket) bool {
	if ingress.Name != s.iface {
		return false
	}
	msg, ok := udp.Payload.(pdu.DHCPMessage)
	if !ok {
		return false
	}
	switch msg.MessageType {
	case pdu.DHCPDiscover:
		s.processDiscover(msg)
	case pdu.DHCPRequest:
		s.processRequest(msg)
	case pdu.DHCPRelease:
		s.processRelease(msg)
	}
	return true
}

// findBindingForClient returns a pool's existing binding for
// clientID, if the server already handed this client a lease out of
// that pool.
func (s *Server) findBindingForClient(pool *Pool, clientID string) *Binding {
	for _, b := range s.bindings {
		if b.PoolName == pool.Name && b.ClientID == clientID {
			return b
		}
	}
	return nil
}

// firstAvailable scans pool's subnet in address order for the first
// host address that is neither network/broadcast, excluded, nor
// already bound.
func (s *Server) firstAvailable(pool *Pool) (addr.IPv4, bool) {
	prefixLen := pool.Mask.PrefixLen()
	if prefixLen >= 32 {
		return addr.IPv4{}, false
	}
	base := pool.Network.And(pool.Mask).Uint32()
	count := uint32(1) << uint(32-prefixLen)
	for i := uint32(1); i < count-1; i++ {
		candidate := addr.IPv4FromUint32(base + i)
		if pool.isExcluded(candidate) {
			continue
		}
		if _, bound := s.bindings[candidate]; bound {
			continue
		}
		return candidate, true
	}
	return addr.IPv4{}, false
}

// poolFor returns the pool whose subnet contains ip.
func (s *Server) poolFor(ip addr.IPv4) (*Pool, bool) {
	for _, p := range s.pools {
		if p.usable() && ip.SameSubnet(p.Network, p.Mask) {
			return p, true
		}
	}
	return nil, false
}

func (s *Server) processDiscover(msg pdu.DHCPMessage) {
	clientID := clientIdentifier(msg.ClientMAC, msg.ClientID)
	for _, pool := range s.pools {
		if !pool.usable() || matchesAnyDenyPattern(msg.ClientMAC, pool.DenyPatterns) {
			continue
		}
		if b := s.findBindingForClient(pool, clientID); b != nil {
			s.sendOffer(msg, pool, b.IPAddress)
			return
		}
		if ip, ok := s.firstAvailable(pool); ok {
			s.sendOffer(msg, pool, ip)
			return
		}
	}
	s.host.Debug("dhcp:no-pool", "no usable pool for DISCOVER", slog.String("client", clientID))
}

func (s *Server) sendOffer(req pdu.DHCPMessage, pool *Pool, ip addr.IPv4) {
	reply := pdu.DHCPMessage{
		Op:           pdu.DHCPBootReply,
		MessageType:  pdu.DHCPOffer,
		XID:          req.XID,
		ClientMAC:    req.ClientMAC,
		YourIP:       ip,
		ServerIP:     s.serverIP(),
		SubnetMask:   pool.Mask,
		Router:       pool.DefaultRouter,
		HasRouter:    pool.HasDefaultRouter,
		DNSServers:   pool.DNSServers,
		DomainName:   pool.DomainName,
		LeaseSeconds: uint32(pool.LeaseDurationSeconds),
	}
	s.broadcast(reply)
}

func (s *Server) processRequest(msg pdu.DHCPMessage) {
	clientID := clientIdentifier(msg.ClientMAC, msg.ClientID)
	if !msg.HasRequestedIP {
		s.sendNak(msg)
		return
	}
	ip := msg.RequestedIP

	pool, ok := s.poolFor(ip)
	if !ok || pool.isExcluded(ip) || matchesAnyDenyPattern(msg.ClientMAC, pool.DenyPatterns) {
		s.sendNak(msg)
		return
	}
	if existing, bound := s.bindings[ip]; bound && existing.ClientID != clientID {
		s.sendNak(msg)
		return
	}

	now := s.host.World.Scheduler.Now()
	leaseMs := pool.LeaseDurationSeconds * 1000
	s.bindings[ip] = &Binding{
		IPAddress:       ip,
		ClientID:        clientID,
		LeaseStart:      now,
		LeaseExpiration: now + leaseMs,
		PoolName:        pool.Name,
		Type:            BindingDynamic,
	}
	s.host.Info("dhcp:lease-granted", "lease granted", slog.String("client", clientID), slog.String("ip", ip.String()))

	reply := pdu.DHCPMessage{
		Op:           pdu.DHCPBootReply,
		MessageType:  pdu.DHCPAck,
		XID:          msg.XID,
		ClientMAC:    msg.ClientMAC,
		YourIP:       ip,
		ServerIP:     s.serverIP(),
		SubnetMask:   pool.Mask,
		Router:       pool.DefaultRouter,
		HasRouter:    pool.HasDefaultRouter,
		DNSServers:   pool.DNSServers,
		DomainName:   pool.DomainName,
		LeaseSeconds: uint32(pool.LeaseDurationSeconds),
	}
	s.broadcast(reply)
}

func (s *Server) sendNak(req pdu.DHCPMessage) {
	reply := pdu.DHCPMessage{
		Op:          pdu.DHCPBootReply,
		MessageType: pdu.DHCPNak,
		XID:         req.XID,
		ClientMAC:   req.ClientMAC,
		ServerIP:    s.serverIP(),
	}
	s.broadcast(reply)
}

func (s *Server) processRelease(msg pdu.DHCPMessage) {
	clientID := clientIdentifier(msg.ClientMAC, msg.ClientID)
	if b, ok := s.bindings[msg.RequestedIP]; ok && b.ClientID == clientID {
		delete(s.bindings, msg.RequestedIP)
		s.host.Info("dhcp:lease-released", "lease released", slog.String("client", clientID), slog.String("ip", msg.RequestedIP.String()))
	}
}

func (s *Server) serverIP() addr.IPv4 {
	p, ok := s.host.Port(s.iface)
	if !ok {
		return addr.IPv4{}
	}
	ip, _, _ := p.IPv4()
	return ip
}

func (s *Server) broadcast(msg pdu.DHCPMessage) {
	s.host.SendUDP(s.iface, addr.BroadcastMAC(), addr.IPv4{255, 255, 255, 255}, ServerPort, ClientPort, 64, msg)
}
