package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/netsimlab/netsim/addr"
)

// cmdARP implements `arp [-a]`; this shell only supports the
// table-dump form since there is no kernel neighbor cache to query
// entry-by-entry.
func (s *Session) cmdARP(args []string) string {
	entries := s.Host.ARPCache().Entries()
	var ips []addr.IPv4
	for ip := range entries {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool { return ips[i].String() < ips[j].String() })

	var b strings.Builder
	for _, ip := range ips {
		e := entries[ip]
		fmt.Fprintf(&b, "? (%s) at %s [ether] on %s\n", ip.String(), e.MAC.String(), e.Iface)
	}
	return strings.TrimRight(b.String(), "\n")
}
