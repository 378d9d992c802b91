package host

import (
	"strings"

	"github.com/netsimlab/netsim/dhcp"
)

// cmdDHClient implements `dhclient [-v] [-d] [-r] [-x] [-s <server>]
// [-w] [-t <timeout>] <iface>`. `-s`/`-w`/`-t`/`-d` are accepted for
// command-line compatibility but have no effect beyond that: this
// simulator's client always targets every connected server and has a
// single fixed offer timeout, and `-d` (stay in foreground) has no
// meaning in a synchronous shell.
func (s *Session) cmdDHClient(args []string) string {
	verbose := false
	release := false
	stop := false
	var iface string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v":
			verbose = true
		case "-d", "-w":
			// accepted, no effect (see doc comment)
		case "-r":
			release = true
		case "-x":
			stop = true
		case "-s", "-t":
			i++ // consume the following value argument
		default:
			if !strings.HasPrefix(args[i], "-") {
				iface = args[i]
			}
		}
	}
	if iface == "" {
		return "Usage: dhclient [-v] [-d] [-r] [-x] [-s server] [-w] [-t timeout] <iface>"
	}
	if _, ok := s.Host.Port(iface); !ok {
		return "dhclient: no such interface " + iface
	}

	client, exists := s.dhcpClients[iface]
	if !exists {
		client = dhcp.NewClient(s.Host, iface, verbose)
		s.dhcpClients[iface] = client
	}

	if release {
		client.ReleaseLease()
		return "dhclient: released lease on " + iface
	}
	if stop {
		client.StopProcess()
		return "dhclient: stopped process on " + iface
	}

	var trace []string
	client.SetTrace(func(line string) { trace = append(trace, line) })
	client.Start()
	s.advance(500, 30, func() bool {
		return client.State() == dhcp.StateBound || client.State() == dhcp.StateInit
	})
	client.SetTrace(nil)

	if !verbose {
		if ip, ok := client.LeaseIP(); ok {
			return "bound to " + ip.String()
		}
		return "No DHCPOFFERS received."
	}
	return strings.Join(trace, "\n")
}
