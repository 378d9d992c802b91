package host

import (
	"fmt"
	"strings"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/host"
)

// cmdTraceroute implements `traceroute <destination>`.
func (s *Session) cmdTraceroute(args []string) string {
	if len(args) == 0 {
		return "traceroute: usage error: Destination address required"
	}
	dst, err := addr.ParseIPv4(args[0])
	if err != nil {
		return "traceroute: " + args[0] + ": Name or service not known"
	}

	var hops []host.TracerouteHop
	reachedDest := false
	s.Host.Traceroute(dst, func(hop host.TracerouteHop) {
		hops = append(hops, hop)
		if hop.Ok && hop.IP.Equal(dst) {
			reachedDest = true
		}
	})
	s.advance(250, 120, func() bool { return reachedDest })

	var b strings.Builder
	fmt.Fprintf(&b, "traceroute to %s (%s), 30 hops max\n", args[0], dst.String())
	if len(hops) == 0 {
		b.WriteString(" 1  * * *  Network is unreachable")
		return b.String()
	}
	for _, h := range hops {
		if h.Ok {
			fmt.Fprintf(&b, "%2d  %s  %.1f ms\n", h.TTL, h.IP.String(), h.RTTMs)
		} else {
			fmt.Fprintf(&b, "%2d  * * *\n", h.TTL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
