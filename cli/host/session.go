// Package host implements the Linux-style end-host shell: ifconfig,
// ip addr/route/neigh, ping, arp, traceroute, and dhclient, all driven
// against a host.Host/equipment.World the same way cli/cisco drives a
// switchengine.Switch. Unlike the vendor shells, this command set has
// no mode FSM and no clitrie — each line is one flat Unix-style
// command, tokenized and flag-parsed by hand, matching the source's
// shape for this corner of the CLI.
package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/dhcp"
	"github.com/netsimlab/netsim/host"
)

// Session is one operator's shell against a single host.Host.
type Session struct {
	Host *host.Host

	dhcpClients map[string]*dhcp.Client
}

// NewSession wraps h for interactive use.
func NewSession(h *host.Host) *Session {
	return &Session{Host: h, dhcpClients: map[string]*dhcp.Client{}}
}

// Execute runs one command line, returning the text a real shell would
// print to stdout (errors are prefixed the way a Unix tool's stderr
// message would read, but returned as plain text since this shell has
// no separate stream).
func (s *Session) Execute(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}
	switch tokens[0] {
	case "ifconfig":
		return s.cmdIfconfig(tokens[1:])
	case "ip":
		return s.cmdIP(tokens[1:])
	case "ping":
		return s.cmdPing(tokens[1:])
	case "arp":
		return s.cmdARP(tokens[1:])
	case "traceroute":
		return s.cmdTraceroute(tokens[1:])
	case "dhclient":
		return s.cmdDHClient(tokens[1:])
	default:
		return tokens[0] + ": command not found"
	}
}

// advance pumps the world's cooperative scheduler forward in fixed
// steps until either no timers remain pending or a caller-supplied
// predicate reports completion, bounded by maxSteps so a permanently
// stuck condition (no route, cable down) can't spin forever.
func (s *Session) advance(stepMs int64, maxSteps int, done func() bool) {
	sched := s.Host.World.Scheduler
	for i := 0; i < maxSteps; i++ {
		if done() || sched.Pending() == 0 {
			return
		}
		sched.Advance(stepMs)
	}
}

func parseCIDR(spec string) (addr.IPv4, addr.SubnetMask, error) {
	netStr, cidrStr, ok := strings.Cut(spec, "/")
	if !ok {
		return addr.IPv4{}, addr.SubnetMask{}, fmt.Errorf("missing /prefix")
	}
	network, err := addr.ParseIPv4(netStr)
	if err != nil {
		return addr.IPv4{}, addr.SubnetMask{}, err
	}
	prefix, err := strconv.Atoi(cidrStr)
	if err != nil {
		return addr.IPv4{}, addr.SubnetMask{}, err
	}
	mask, err := addr.SubnetMaskFromCIDR(prefix)
	if err != nil {
		return addr.IPv4{}, addr.SubnetMask{}, err
	}
	return network, mask, nil
}
