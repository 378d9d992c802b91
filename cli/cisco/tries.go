package cisco

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netsimlab/netsim/clitrie"
	"github.com/netsimlab/netsim/switchengine"
)

var (
	userTrie       = clitrie.New[*Session]()
	privilegedTrie = clitrie.New[*Session]()
	configTrie     = clitrie.New[*Session]()
	configIfTrie   = clitrie.New[*Session]()
	configVlanTrie = clitrie.New[*Session]()
)

func init() {
	userTrie.Register([]string{"enable"}, "enter privileged mode", func(s *Session, args []string) string {
		s.Mode = ModePrivileged
		return ""
	})
	registerShowCommands(userTrie)

	privilegedTrie.Register([]string{"disable"}, "return to user mode", func(s *Session, args []string) string {
		s.Mode = ModeUser
		return ""
	})
	privilegedTrie.Register([]string{"configure", "terminal"}, "enter global configuration mode", func(s *Session, args []string) string {
		s.Mode = ModeConfig
		return ""
	})
	privilegedTrie.Register([]string{"reload"}, "power-cycle the device", func(s *Session, args []string) string {
		s.Switch.PowerCycle(false)
		s.Switch.PowerCycle(true)
		s.Mode = ModeUser
		return ""
	})
	privilegedTrie.Register([]string{"write"}, "save running-config to NVRAM", cmdWrite)
	privilegedTrie.Register([]string{"write", "memory"}, "save running-config to NVRAM", cmdWrite)
	privilegedTrie.Register([]string{"copy", "running-config", "startup-config"}, "save running-config to NVRAM", cmdWrite)
	registerShowCommands(privilegedTrie)

	configTrie.Register([]string{"exit"}, "leave global configuration mode", func(s *Session, args []string) string {
		s.Mode = ModePrivileged
		return ""
	})
	configTrie.Register([]string{"end"}, "return to privileged mode", func(s *Session, args []string) string {
		s.Mode = ModePrivileged
		return ""
	})
	configTrie.RegisterGreedy([]string{"hostname"}, "set the device hostname", func(s *Session, args []string) string {
		if len(args) < 2 {
			return "% Incomplete command."
		}
		s.Switch.Hostname = args[1]
		return ""
	})
	configTrie.RegisterGreedy([]string{"interface"}, "enter interface configuration mode", cmdEnterInterface)
	configTrie.RegisterGreedy([]string{"vlan"}, "create or enter a VLAN", cmdEnterVlan)
	configTrie.RegisterGreedy([]string{"no", "vlan"}, "delete a VLAN", cmdNoVlan)
	configTrie.RegisterGreedy([]string{"mac", "address-table", "aging-time"}, "set MAC aging time", cmdAgingTime)

	configIfTrie.Register([]string{"exit"}, "leave interface configuration mode", func(s *Session, args []string) string {
		s.Mode = ModeConfig
		return ""
	})
	configIfTrie.Register([]string{"end"}, "return to privileged mode", func(s *Session, args []string) string {
		s.Mode = ModePrivileged
		return ""
	})
	configIfTrie.Register([]string{"shutdown"}, "administratively disable the interface", cmdShutdown)
	configIfTrie.Register([]string{"no", "shutdown"}, "administratively enable the interface", cmdNoShutdown)
	configIfTrie.RegisterGreedy([]string{"switchport", "mode"}, "set access or trunk mode", cmdSwitchportMode)
	configIfTrie.RegisterGreedy([]string{"switchport", "access", "vlan"}, "set the access VLAN", cmdSwitchportAccessVlan)
	configIfTrie.RegisterGreedy([]string{"switchport", "trunk", "native", "vlan"}, "set the trunk native VLAN", cmdSwitchportTrunkNative)
	configIfTrie.RegisterGreedy([]string{"switchport", "trunk", "allowed", "vlan"}, "set the trunk allowed VLAN list", cmdSwitchportTrunkAllowed)

	configVlanTrie.Register([]string{"exit"}, "leave VLAN configuration mode", func(s *Session, args []string) string {
		s.Mode = ModeConfig
		return ""
	})
	configVlanTrie.Register([]string{"end"}, "return to privileged mode", func(s *Session, args []string) string {
		s.Mode = ModePrivileged
		return ""
	})
	configVlanTrie.RegisterGreedy([]string{"name"}, "name the current VLAN", cmdVlanName)
}

func cmdWrite(s *Session, args []string) string {
	s.Switch.SetStartupConfig(s.Switch.CaptureNVRAM())
	return "[OK]"
}

func cmdEnterInterface(s *Session, args []string) string {
	if len(args) < 2 {
		return "% Incomplete command."
	}
	name, ok := resolveInterfaceName(args[1])
	if !ok {
		return "% Invalid input detected at '^' marker."
	}
	if _, ok := s.Switch.Port(name); !ok {
		return "% Invalid interface " + name
	}
	s.currentIface = name
	s.Mode = ModeConfigIf
	return ""
}

func cmdEnterVlan(s *Session, args []string) string {
	if len(args) < 2 {
		return "% Incomplete command."
	}
	vid, err := strconv.Atoi(args[1])
	if err != nil || vid < 1 || vid > 4094 {
		return "% Invalid VLAN id"
	}
	if _, ok := s.Switch.VLANs()[uint16(vid)]; !ok {
		s.Switch.CreateVLAN(uint16(vid), fmt.Sprintf("VLAN%04d", vid))
	}
	s.currentVlan = uint16(vid)
	s.Mode = ModeConfigVlan
	return ""
}

func cmdNoVlan(s *Session, args []string) string {
	if len(args) < 3 {
		return "% Incomplete command."
	}
	vid, err := strconv.Atoi(args[2])
	if err != nil {
		return "% Invalid VLAN id"
	}
	if !s.Switch.DeleteVLAN(uint16(vid)) {
		return "% Default VLAN 1 may not be deleted"
	}
	return ""
}

func cmdVlanName(s *Session, args []string) string {
	if len(args) < 2 {
		return "% Incomplete command."
	}
	if v, ok := s.Switch.VLANs()[s.currentVlan]; ok {
		v.Name = args[1]
	}
	return ""
}

func cmdAgingTime(s *Session, args []string) string {
	if len(args) < 4 {
		return "% Incomplete command."
	}
	seconds, err := strconv.Atoi(args[3])
	if err != nil || seconds < 0 {
		return "% Invalid input detected at '^' marker."
	}
	s.Switch.SetAgingTime(seconds)
	return ""
}

func cmdShutdown(s *Session, args []string) string {
	p, ok := s.Switch.Port(s.currentIface)
	if !ok {
		return ""
	}
	p.SetUp(false)
	return ""
}

func cmdNoShutdown(s *Session, args []string) string {
	p, ok := s.Switch.Port(s.currentIface)
	if !ok {
		return ""
	}
	p.SetUp(true)
	return ""
}

func cmdSwitchportMode(s *Session, args []string) string {
	if len(args) < 3 {
		return "% Incomplete command."
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	switch args[2] {
	case "access":
		cfg.Mode = switchengine.ModeAccess
	case "trunk":
		cfg.Mode = switchengine.ModeTrunk
	default:
		return "% Invalid input detected at '^' marker."
	}
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdSwitchportAccessVlan(s *Session, args []string) string {
	if len(args) < 4 {
		return "% Incomplete command."
	}
	vid, err := strconv.Atoi(args[3])
	if err != nil {
		return "% Invalid VLAN id"
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	cfg.AccessVLAN = uint16(vid)
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdSwitchportTrunkNative(s *Session, args []string) string {
	if len(args) < 5 {
		return "% Incomplete command."
	}
	vid, err := strconv.Atoi(args[4])
	if err != nil {
		return "% Invalid VLAN id"
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	cfg.TrunkNativeVLAN = uint16(vid)
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdSwitchportTrunkAllowed(s *Session, args []string) string {
	if len(args) < 5 {
		return "% Incomplete command."
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	if cfg.TrunkAllowedVLANs == nil {
		cfg.TrunkAllowedVLANs = map[uint16]bool{}
	}
	for _, vid := range parseVlanList(args[4]) {
		cfg.TrunkAllowedVLANs[vid] = true
	}
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

// parseVlanList parses a comma-separated VLAN list where each term is
// either a single id or an inclusive range "10-20".
func parseVlanList(spec string) []uint16 {
	var out []uint16
	for _, term := range strings.Split(spec, ",") {
		if lo, hi, ok := strings.Cut(term, "-"); ok {
			loN, err1 := strconv.Atoi(lo)
			hiN, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				continue
			}
			for v := loN; v <= hiN; v++ {
				out = append(out, uint16(v))
			}
			continue
		}
		n, err := strconv.Atoi(term)
		if err != nil {
			continue
		}
		out = append(out, uint16(n))
	}
	return out
}

func registerShowCommands(tr *clitrie.Trie[*Session]) {
	tr.Register([]string{"show", "version"}, "show software/hardware version", cmdShowVersion)
	tr.Register([]string{"show", "vlan"}, "show VLAN database", cmdShowVlan)
	tr.Register([]string{"show", "vlan", "brief"}, "show VLAN database, one line per VLAN", cmdShowVlan)
	tr.Register([]string{"show", "mac", "address-table"}, "show the MAC forwarding table", cmdShowMacTable)
	tr.Register([]string{"show", "interfaces"}, "show interface details", cmdShowInterfaces)
	tr.Register([]string{"show", "interfaces", "status"}, "show interface status summary", cmdShowInterfacesStatus)
	tr.Register([]string{"show", "spanning-tree"}, "show spanning-tree port states", cmdShowSpanningTree)
	tr.Register([]string{"show", "running-config"}, "show the active configuration", cmdShowRunningConfig)
	tr.Register([]string{"show", "startup-config"}, "show the saved NVRAM configuration", cmdShowStartupConfig)
}

func cmdShowVersion(s *Session, args []string) string {
	return fmt.Sprintf("%s uptime is simulated\nHardware: netsim virtual switch\nModel: %s", s.Switch.Hostname, s.Switch.Vendor)
}

func cmdShowVlan(s *Session, args []string) string {
	var ids []int
	for vid := range s.Switch.VLANs() {
		ids = append(ids, int(vid))
	}
	sort.Ints(ids)
	var b strings.Builder
	b.WriteString("VLAN Name                             Status    Ports\n")
	for _, id := range ids {
		v := s.Switch.VLANs()[uint16(id)]
		var ports []string
		for p := range v.Ports {
			ports = append(ports, p)
		}
		sort.Strings(ports)
		fmt.Fprintf(&b, "%-4d %-32s active    %s\n", v.ID, v.Name, strings.Join(ports, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdShowMacTable(s *Session, args []string) string {
	entries := s.Switch.MACTableSnapshot()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].VID != entries[j].VID {
			return entries[i].VID < entries[j].VID
		}
		return entries[i].MAC.String() < entries[j].MAC.String()
	})
	var b strings.Builder
	b.WriteString("Vlan    Mac Address       Type      Ports\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-7d %-17s %-9s %s\n", e.VID, e.MAC.String(), e.Type, e.Port)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdShowInterfaces(s *Session, args []string) string {
	var names []string
	for name := range s.Switch.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		p, _ := s.Switch.Port(name)
		state := "down"
		if p.IsUp() {
			state = "up"
		}
		fmt.Fprintf(&b, "%s is %s\n  MAC address is %s\n", name, state, p.MAC.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdShowInterfacesStatus(s *Session, args []string) string {
	var names []string
	for name := range s.Switch.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("Port        Status     Vlan       Duplex  Speed\n")
	for _, name := range names {
		p, _ := s.Switch.Port(name)
		cfg, _ := s.Switch.Switchport(name)
		status := "notconnect"
		if p.IsUp() && p.HasCable() {
			status = "connected"
		} else if p.IsUp() {
			status = "notconnect"
		} else {
			status = "disabled"
		}
		vlanCol := fmt.Sprintf("%d", cfg.AccessVLAN)
		if cfg.Mode == switchengine.ModeTrunk {
			vlanCol = "trunk"
		}
		fmt.Fprintf(&b, "%-11s %-10s %-10s %-7s %d\n", name, status, vlanCol, p.NegotiatedDuplex(), p.NegotiatedSpeed())
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdShowSpanningTree(s *Session, args []string) string {
	var names []string
	for name := range s.Switch.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		cfg, _ := s.Switch.Switchport(name)
		fmt.Fprintf(&b, "%-11s %s\n", name, cfg.STP)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdShowRunningConfig(s *Session, args []string) string {
	return renderRunningConfig(s.Switch)
}

func cmdShowStartupConfig(s *Session, args []string) string {
	blob := s.Switch.StartupConfig()
	if blob == nil {
		return "%% Non-volatile memory is not present"
	}
	return hex.Dump(blob)
}

// renderRunningConfig builds the hostname/vlan/interface text document
// this shell's "show running-config" prints. "write" does not store
// this text; it persists the switch's CaptureNVRAM JSON blob.
func renderRunningConfig(sw *switchengine.Switch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "hostname %s\n!\n", sw.Hostname)

	var vids []int
	for vid := range sw.VLANs() {
		vids = append(vids, int(vid))
	}
	sort.Ints(vids)
	for _, vid := range vids {
		v := sw.VLANs()[uint16(vid)]
		if v.ID == switchengine.DefaultVLAN {
			continue
		}
		fmt.Fprintf(&b, "vlan %d\n name %s\n!\n", v.ID, v.Name)
	}

	var names []string
	for name := range sw.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg, _ := sw.Switchport(name)
		fmt.Fprintf(&b, "interface %s\n", name)
		if cfg.Mode == switchengine.ModeTrunk {
			b.WriteString(" switchport mode trunk\n")
			fmt.Fprintf(&b, " switchport trunk native vlan %d\n", cfg.TrunkNativeVLAN)
		} else {
			fmt.Fprintf(&b, " switchport access vlan %d\n", cfg.AccessVLAN)
		}
		b.WriteString("!\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
