package host

import "github.com/netsimlab/netsim/addr"

// RouteType distinguishes how a routing table entry was installed.
type RouteType uint8

const (
	RouteConnected RouteType = iota
	RouteStatic
	RouteDefault
)

func (t RouteType) String() string {
	switch t {
	case RouteConnected:
		return "connected"
	case RouteStatic:
		return "static"
	case RouteDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Route is one entry in the routing table.
type Route struct {
	Type    RouteType
	Network addr.IPv4
	Mask    addr.SubnetMask
	NextHop addr.IPv4 // zero value for connected routes
	HasNextHop bool
	Iface   string
	Metric  int
}

// RouteTable is the ordered set of routes a host or router consults.
// Longest-prefix-match with metric tiebreak decides the winner
// regardless of position; only among exact ties does the earliest
// inserted route win.
type RouteTable struct {
	routes []Route
}

// AddConnected installs a connected route for the subnet implied by
// ip/mask on iface, called whenever an interface gains an IPv4
// configuration.
func (rt *RouteTable) AddConnected(ip addr.IPv4, mask addr.SubnetMask, iface string) {
	rt.routes = append(rt.routes, Route{
		Type:    RouteConnected,
		Network: ip.And(mask),
		Mask:    mask,
		Iface:   iface,
	})
}

// AddStatic rejects the route if nextHop does not fall within any
// connected subnet, returning false in that case ("Network is
// unreachable").
func (rt *RouteTable) AddStatic(network addr.IPv4, mask addr.SubnetMask, nextHop addr.IPv4, metric int) bool {
	iface, ok := rt.connectedIfaceFor(nextHop)
	if !ok {
		return false
	}
	rt.routes = append(rt.routes, Route{
		Type:       RouteStatic,
		Network:    network.And(mask),
		Mask:       mask,
		NextHop:    nextHop,
		HasNextHop: true,
		Iface:      iface,
		Metric:     metric,
	})
	return true
}

// AddDefault installs the special all-zero-network static route.
func (rt *RouteTable) AddDefault(nextHop addr.IPv4, metric int) bool {
	iface, ok := rt.connectedIfaceFor(nextHop)
	if !ok {
		return false
	}
	rt.routes = append(rt.routes, Route{
		Type:       RouteDefault,
		NextHop:    nextHop,
		HasNextHop: true,
		Iface:      iface,
		Metric:     metric,
	})
	return true
}

func (rt *RouteTable) connectedIfaceFor(ip addr.IPv4) (string, bool) {
	for _, r := range rt.routes {
		if r.Type == RouteConnected && ip.SameSubnet(r.Network, r.Mask) {
			return r.Iface, true
		}
	}
	return "", false
}

// Lookup performs longest-prefix-match on dst, preferring the largest
// prefix length among matches and breaking ties by lowest metric.
func (rt *RouteTable) Lookup(dst addr.IPv4) (Route, bool) {
	var best Route
	found := false
	bestPrefix := -1
	for _, r := range rt.routes {
		if r.Type == RouteDefault {
			continue
		}
		if !dst.SameSubnet(r.Network, r.Mask) {
			continue
		}
		prefix := r.Mask.PrefixLen()
		if !found || prefix > bestPrefix || (prefix == bestPrefix && r.Metric < best.Metric) {
			best, found, bestPrefix = r, true, prefix
		}
	}
	if found {
		return best, true
	}
	for _, r := range rt.routes {
		if r.Type == RouteDefault && (!found || r.Metric < best.Metric) {
			best, found = r, true
		}
	}
	return best, found
}

// Routes returns every installed route.
func (rt *RouteTable) Routes() []Route { return rt.routes }

// RemoveDefault deletes the default route, if one is installed,
// reporting whether anything was removed.
func (rt *RouteTable) RemoveDefault() bool {
	for i, r := range rt.routes {
		if r.Type == RouteDefault {
			rt.routes = append(rt.routes[:i], rt.routes[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveStatic deletes the static route matching network/mask exactly,
// reporting whether anything was removed. Connected routes are never
// removable this way, and clearing an interface's address
// (iface.Port.ClearIP) leaves its connected route in place.
func (rt *RouteTable) RemoveStatic(network addr.IPv4, mask addr.SubnetMask) bool {
	for i, r := range rt.routes {
		if r.Type == RouteStatic && r.Network.Equal(network) && r.Mask == mask {
			rt.routes = append(rt.routes[:i], rt.routes[i+1:]...)
			return true
		}
	}
	return false
}
