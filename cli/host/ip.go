package host

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/host"
)

// cmdIP implements `ip addr|route|neigh` and their mutating subforms
// (`ip route add|del`).
func (s *Session) cmdIP(args []string) string {
	if len(args) == 0 {
		return "Usage: ip { addr | route | neigh }"
	}
	switch args[0] {
	case "addr", "a", "address":
		return s.ipAddr()
	case "route", "r":
		return s.ipRoute(args[1:])
	case "neigh", "n", "neighbor":
		return s.ipNeigh()
	default:
		return "Object \"" + args[0] + "\" is unknown, try \"ip help\"."
	}
}

func (s *Session) ipAddr() string {
	var names []string
	for name := range s.Host.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		p, _ := s.Host.Port(name)
		state := "DOWN"
		if p.IsUp() {
			state = "UP"
		}
		fmt.Fprintf(&b, "%d: %s: <%s> mtu %d\n    link/ether %s\n", i+1, name, state, p.MTU, p.MAC.String())
		if ip, mask, ok := p.IPv4(); ok {
			fmt.Fprintf(&b, "    inet %s/%d\n", ip.String(), mask.PrefixLen())
		}
		for _, a := range p.IPv6Addrs() {
			fmt.Fprintf(&b, "    inet6 %s/%d scope %s\n", a.Address.String(), a.Prefix, a.Origin)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Session) ipRoute(args []string) string {
	if len(args) == 0 {
		return s.renderRoutes()
	}
	switch args[0] {
	case "add":
		return s.ipRouteAdd(args[1:])
	case "del", "delete":
		return s.ipRouteDel(args[1:])
	default:
		return s.renderRoutes()
	}
}

func (s *Session) renderRoutes() string {
	var b strings.Builder
	for _, r := range s.Host.Routes().Routes() {
		switch r.Type {
		case host.RouteDefault:
			fmt.Fprintf(&b, "default via %s dev %s metric %d\n", r.NextHop.String(), r.Iface, r.Metric)
		case host.RouteConnected:
			fmt.Fprintf(&b, "%s/%d dev %s proto kernel scope link\n", r.Network.String(), r.Mask.PrefixLen(), r.Iface)
		case host.RouteStatic:
			fmt.Fprintf(&b, "%s/%d via %s dev %s metric %d\n", r.Network.String(), r.Mask.PrefixLen(), r.NextHop.String(), r.Iface, r.Metric)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ipRouteAdd implements `ip route add default via <gw>` and
// `ip route add <net>/<cidr> via <gw> [metric <n>]`.
func (s *Session) ipRouteAdd(args []string) string {
	if len(args) == 0 {
		return "Error: argument is required."
	}
	if args[0] == "default" {
		if len(args) < 3 || args[1] != "via" {
			return "Error: \"via\" is required."
		}
		gw, err := addr.ParseIPv4(args[2])
		if err != nil {
			return "Error: " + err.Error()
		}
		metric := 1
		if len(args) >= 5 && args[3] == "metric" {
			metric, _ = strconv.Atoi(args[4])
		}
		if !s.Host.AddDefaultRoute(gw, metric) {
			return "Error: Nexthop has invalid gateway."
		}
		return ""
	}

	network, mask, err := parseCIDR(args[0])
	if err != nil {
		return "Error: " + err.Error()
	}
	if len(args) < 3 || args[1] != "via" {
		return "Error: \"via\" is required."
	}
	gw, err := addr.ParseIPv4(args[2])
	if err != nil {
		return "Error: " + err.Error()
	}
	metric := 1
	if len(args) >= 5 && args[3] == "metric" {
		metric, _ = strconv.Atoi(args[4])
	}
	if !s.Host.AddStaticRoute(network, mask, gw, metric) {
		return "Error: Nexthop has invalid gateway."
	}
	return ""
}

// ipRouteDel implements `ip route del default` and
// `ip route del <net>/<cidr>`.
func (s *Session) ipRouteDel(args []string) string {
	if len(args) == 0 {
		return "Error: argument is required."
	}
	if args[0] == "default" {
		if !s.Host.Routes().RemoveDefault() {
			return "RTNETLINK answers: No such process"
		}
		return ""
	}
	network, mask, err := parseCIDR(args[0])
	if err != nil {
		return "Error: " + err.Error()
	}
	if !s.Host.Routes().RemoveStatic(network, mask) {
		return "RTNETLINK answers: No such process"
	}
	return ""
}

func (s *Session) ipNeigh() string {
	return s.cmdARP(nil)
}
