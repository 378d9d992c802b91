package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/netsimlab/netsim/addr"
)

// cmdIfconfig implements `ifconfig`, `ifconfig <iface>`, and
// `ifconfig <iface> <ip> [netmask <mask>]`. Per the decided Open
// Question, a netmask-less assignment always defaults to /24 rather
// than a classful mask.
func (s *Session) cmdIfconfig(args []string) string {
	if len(args) == 0 {
		return s.ifconfigAll()
	}
	name := args[0]
	p, ok := s.Host.Port(name)
	if !ok {
		return name + ": error fetching interface information: Device not found"
	}
	if len(args) == 1 {
		return renderIface(name, p.MAC, p)
	}

	ip, err := addr.ParseIPv4(args[1])
	if err != nil {
		return "ifconfig: " + err.Error()
	}
	mask, err := addr.SubnetMaskFromCIDR(24)
	if err != nil {
		return "ifconfig: " + err.Error()
	}
	if len(args) >= 4 && args[2] == "netmask" {
		mask, err = addr.ParseSubnetMask(args[3])
		if err != nil {
			return "ifconfig: " + err.Error()
		}
	}
	s.Host.ConfigureInterface(name, ip, mask)
	return ""
}

func (s *Session) ifconfigAll() string {
	var names []string
	for name := range s.Host.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		p, _ := s.Host.Port(name)
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderIface(name, p.MAC, p))
	}
	return b.String()
}

type ifaceReader interface {
	IsUp() bool
	IPv4() (addr.IPv4, addr.SubnetMask, bool)
}

func renderIface(name string, mac addr.MAC, p ifaceReader) string {
	state := "DOWN"
	if p.IsUp() {
		state = "UP,RUNNING"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: flags=<%s>\n", name, state)
	fmt.Fprintf(&b, "        ether %s\n", mac.String())
	if ip, mask, ok := p.IPv4(); ok {
		fmt.Fprintf(&b, "        inet %s  netmask %s\n", ip.String(), mask.String())
	}
	return strings.TrimRight(b.String(), "\n")
}
