package router

import "github.com/netsimlab/netsim/addr"

// arpCache is the router's own IPv4-to-MAC resolution table, the same
// shape as host.ARPCache but kept local since that type's constructor
// is unexported to its package.
type arpCache struct {
	entries map[addr.IPv4]addr.MAC
}

func newARPCache() *arpCache {
	return &arpCache{entries: map[addr.IPv4]addr.MAC{}}
}

func (c *arpCache) lookup(ip addr.IPv4) (addr.MAC, bool) {
	mac, ok := c.entries[ip]
	return mac, ok
}

func (c *arpCache) insert(ip addr.IPv4, mac addr.MAC) {
	c.entries[ip] = mac
}
