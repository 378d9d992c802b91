package host

import (
	"github.com/netsimlab/netsim/addr"
)

// ARPEntry is one resolved mapping, exported so vendor CLI shells can
// render it in "show arp" output.
type ARPEntry struct {
	MAC      addr.MAC
	Iface    string
	Acquired int64 // virtual milliseconds, World.Scheduler.Now() at insertion
}

// ARPCache is a host's per-process IPv4-to-MAC resolution table.
type ARPCache struct {
	entries map[addr.IPv4]ARPEntry
}

func newARPCache() *ARPCache {
	return &ARPCache{entries: map[addr.IPv4]ARPEntry{}}
}

// Lookup returns the cached MAC for ip, if present.
func (c *ARPCache) Lookup(ip addr.IPv4) (addr.MAC, bool) {
	e, ok := c.entries[ip]
	return e.MAC, ok
}

// insert populates the cache on a reply, recording the resolving
// interface and the current virtual time.
func (c *ARPCache) insert(ip addr.IPv4, mac addr.MAC, iface string, now int64) {
	c.entries[ip] = ARPEntry{MAC: mac, Iface: iface, Acquired: now}
}

// Entries returns a snapshot of the cache for show-command rendering.
func (c *ARPCache) Entries() map[addr.IPv4]ARPEntry {
	return c.entries
}
