package huawei

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netsimlab/netsim/clitrie"
	"github.com/netsimlab/netsim/switchengine"
)

var (
	userTrie      = clitrie.New[*Session]()
	systemTrie    = clitrie.New[*Session]()
	interfaceTrie = clitrie.New[*Session]()
	vlanTrie      = clitrie.New[*Session]()
)

func init() {
	userTrie.Register([]string{"system-view"}, "enter system view", func(s *Session, args []string) string {
		s.Mode = ModeSystem
		return ""
	})
	registerDisplayCommands(userTrie)

	systemTrie.Register([]string{"quit"}, "return to user view", func(s *Session, args []string) string {
		s.Mode = ModeUser
		return ""
	})
	systemTrie.Register([]string{"return"}, "return to user view", func(s *Session, args []string) string {
		s.Mode = ModeUser
		return ""
	})
	systemTrie.RegisterGreedy([]string{"sysname"}, "set the device name", func(s *Session, args []string) string {
		if len(args) < 2 {
			return "Error: Incomplete command found at '^1' position."
		}
		s.Switch.Hostname = args[1]
		return ""
	})
	systemTrie.RegisterGreedy([]string{"vlan"}, "create or enter a VLAN view", cmdEnterVlan)
	systemTrie.RegisterGreedy([]string{"undo", "vlan"}, "delete a VLAN", cmdUndoVlan)
	systemTrie.RegisterGreedy([]string{"interface"}, "enter interface view", cmdEnterInterface)
	systemTrie.Register([]string{"save"}, "save the configuration to NVRAM", cmdSave)
	registerDisplayCommands(systemTrie)

	interfaceTrie.Register([]string{"quit"}, "return to system view", func(s *Session, args []string) string {
		s.Mode = ModeSystem
		return ""
	})
	interfaceTrie.Register([]string{"return"}, "return to user view", func(s *Session, args []string) string {
		s.Mode = ModeUser
		return ""
	})
	interfaceTrie.Register([]string{"shutdown"}, "administratively disable the interface", cmdShutdown)
	interfaceTrie.Register([]string{"undo", "shutdown"}, "administratively enable the interface", cmdUndoShutdown)
	interfaceTrie.RegisterGreedy([]string{"port", "link-type"}, "set access or trunk mode", cmdPortLinkType)
	interfaceTrie.RegisterGreedy([]string{"port", "default", "vlan"}, "set the access VLAN", cmdPortDefaultVlan)
	interfaceTrie.RegisterGreedy([]string{"port", "trunk", "pvid", "vlan"}, "set the trunk native VLAN", cmdPortTrunkPVID)
	interfaceTrie.RegisterGreedy([]string{"port", "trunk", "allow-pass", "vlan"}, "set the trunk allowed VLAN list", cmdPortTrunkAllowPass)
	interfaceTrie.Register([]string{"display", "this"}, "show the current interface's STP state, advancing it one step", cmdDisplayThis)

	vlanTrie.Register([]string{"quit"}, "return to system view", func(s *Session, args []string) string {
		s.Mode = ModeSystem
		return ""
	})
	vlanTrie.Register([]string{"return"}, "return to user view", func(s *Session, args []string) string {
		s.Mode = ModeUser
		return ""
	})
	vlanTrie.RegisterGreedy([]string{"description"}, "name the current VLAN", cmdVlanDescription)
}

func cmdSave(s *Session, args []string) string {
	s.Switch.SetStartupConfig(s.Switch.CaptureNVRAM())
	return "Save the configuration successfully."
}

func cmdEnterInterface(s *Session, args []string) string {
	if len(args) < 2 {
		return "Error: Incomplete command found at '^1' position."
	}
	name, ok := resolveInterfaceName(args[1])
	if !ok {
		return "Error: Wrong parameter found at '^1' position."
	}
	if _, ok := s.Switch.Port(name); !ok {
		return "Error: Interface " + name + " does not exist."
	}
	s.currentIface = name
	s.Mode = ModeInterface
	return ""
}

func cmdEnterVlan(s *Session, args []string) string {
	if len(args) < 2 {
		return "Error: Incomplete command found at '^1' position."
	}
	vid, err := strconv.Atoi(args[1])
	if err != nil || vid < 1 || vid > 4094 {
		return "Error: Wrong parameter found at '^1' position."
	}
	if _, ok := s.Switch.VLANs()[uint16(vid)]; !ok {
		s.Switch.CreateVLAN(uint16(vid), fmt.Sprintf("VLAN%04d", vid))
	}
	s.currentVlan = uint16(vid)
	s.Mode = ModeVlan
	return ""
}

func cmdUndoVlan(s *Session, args []string) string {
	if len(args) < 3 {
		return "Error: Incomplete command found at '^1' position."
	}
	vid, err := strconv.Atoi(args[2])
	if err != nil {
		return "Error: Wrong parameter found at '^1' position."
	}
	if !s.Switch.DeleteVLAN(uint16(vid)) {
		return "Error: VLAN 1 is a reserved VLAN and cannot be removed."
	}
	return ""
}

func cmdVlanDescription(s *Session, args []string) string {
	if len(args) < 2 {
		return "Error: Incomplete command found at '^1' position."
	}
	if v, ok := s.Switch.VLANs()[s.currentVlan]; ok {
		v.Name = args[1]
	}
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

func cmdUndoShutdown(s *Session, args []string) string {
	p, ok := s.Switch.Port(s.currentIface)
	if !ok {
		return ""
	}
	p.SetUp(true)
	return ""
}

func cmdPortLinkType(s *Session, args []string) string {
	if len(args) < 3 {
		return "Error: Incomplete command found at '^1' position."
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
		return "Error: Wrong parameter found at '^1' position."
	}
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdPortDefaultVlan(s *Session, args []string) string {
	if len(args) < 4 {
		return "Error: Incomplete command found at '^1' position."
	}
	vid, err := strconv.Atoi(args[3])
	if err != nil {
		return "Error: Wrong parameter found at '^1' position."
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	cfg.AccessVLAN = uint16(vid)
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdPortTrunkPVID(s *Session, args []string) string {
	if len(args) < 5 {
		return "Error: Incomplete command found at '^1' position."
	}
	vid, err := strconv.Atoi(args[4])
	if err != nil {
		return "Error: Wrong parameter found at '^1' position."
	}
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	cfg.TrunkNativeVLAN = uint16(vid)
	s.Switch.SetSwitchport(s.currentIface, cfg)
	return ""
}

func cmdPortTrunkAllowPass(s *Session, args []string) string {
	if len(args) < 5 {
		return "Error: Incomplete command found at '^1' position."
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

// cmdDisplayThis advances the current interface's STP state one step
// and reports the result, the operator-facing hook onto
// Switch.AdvanceSTP: a freshly-booted Huawei port starts in listening
// and has no real topology-convergence clock driving it forward, so
// this simulator exposes the tick as an explicit command instead.
func cmdDisplayThis(s *Session, args []string) string {
	s.Switch.AdvanceSTP(s.currentIface)
	cfg, ok := s.Switch.Switchport(s.currentIface)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s current state : %s", s.currentIface, cfg.STP)
}

// parseVlanList parses a comma-separated VLAN list where each term is
// either a single id or an inclusive range "10 to 20".
func parseVlanList(spec string) []uint16 {
	var out []uint16
	spec = strings.ReplaceAll(spec, " to ", "-")
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

func registerDisplayCommands(tr *clitrie.Trie[*Session]) {
	tr.Register([]string{"display", "version"}, "show software/hardware version", cmdDisplayVersion)
	tr.Register([]string{"display", "vlan"}, "show VLAN database", cmdDisplayVlan)
	tr.Register([]string{"display", "mac-address-table"}, "show the MAC forwarding table", cmdDisplayMacTable)
	tr.Register([]string{"display", "interface"}, "show interface details", cmdDisplayInterface)
	tr.Register([]string{"display", "stp"}, "show STP port states", cmdDisplayStp)
	tr.Register([]string{"display", "current-configuration"}, "show the active configuration", cmdDisplayCurrentConfig)
	tr.Register([]string{"display", "saved-configuration"}, "show the saved NVRAM configuration", cmdDisplaySavedConfig)
}

func cmdDisplayVersion(s *Session, args []string) string {
	return fmt.Sprintf("%s uptime is simulated\nHUAWEI VRP (R) software\nModel: %s", s.Switch.Hostname, s.Switch.Vendor)
}

func cmdDisplayVlan(s *Session, args []string) string {
	var ids []int
	for vid := range s.Switch.VLANs() {
		ids = append(ids, int(vid))
	}
	sort.Ints(ids)
	var b strings.Builder
	b.WriteString("VID  Status   Ports\n")
	for _, id := range ids {
		v := s.Switch.VLANs()[uint16(id)]
		var ports []string
		for p := range v.Ports {
			ports = append(ports, p)
		}
		sort.Strings(ports)
		fmt.Fprintf(&b, "%-4d enabled  %s\n", v.ID, strings.Join(ports, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdDisplayMacTable(s *Session, args []string) string {
	entries := s.Switch.MACTableSnapshot()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].VID != entries[j].VID {
			return entries[i].VID < entries[j].VID
		}
		return entries[i].MAC.String() < entries[j].MAC.String()
	})
	var b strings.Builder
	b.WriteString("MAC Address    VLAN  Type       Port\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-14s %-5d %-10s %s\n", e.MAC.String(), e.VID, e.Type, e.Port)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdDisplayInterface(s *Session, args []string) string {
	var names []string
	for name := range s.Switch.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		p, _ := s.Switch.Port(name)
		state := "DOWN"
		if p.IsUp() {
			state = "UP"
		}
		fmt.Fprintf(&b, "%s current state : %s\n  Hardware address is %s\n", name, state, p.MAC.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdDisplayStp(s *Session, args []string) string {
	var names []string
	for name := range s.Switch.Ports() {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		cfg, _ := s.Switch.Switchport(name)
		fmt.Fprintf(&b, "%-16s %s\n", name, cfg.STP)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdDisplayCurrentConfig(s *Session, args []string) string {
	return renderRunningConfig(s.Switch)
}

func cmdDisplaySavedConfig(s *Session, args []string) string {
	blob := s.Switch.StartupConfig()
	if blob == nil {
		return "Error: The configuration file does not exist."
	}
	return string(blob)
}

// renderRunningConfig builds the sysname/vlan/interface text document
// this shell's "display current-configuration" prints. "save" does not
// store this text; it persists the switch's CaptureNVRAM JSON blob.
func renderRunningConfig(sw *switchengine.Switch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sysname %s\n#\n", sw.Hostname)

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
		fmt.Fprintf(&b, "vlan %d\n description %s\n#\n", v.ID, v.Name)
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
			b.WriteString(" port link-type trunk\n")
			fmt.Fprintf(&b, " port trunk pvid vlan %d\n", cfg.TrunkNativeVLAN)
		} else {
			fmt.Fprintf(&b, " port default vlan %d\n", cfg.AccessVLAN)
		}
		b.WriteString("#\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
