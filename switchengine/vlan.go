package switchengine

// DefaultVLAN is the always-present VLAN that can never be deleted.
const DefaultVLAN = 1

// VLAN is a single entry in the VLAN database: a name and the set of
// ports currently assigned to it.
type VLAN struct {
	ID    uint16
	Name  string
	Ports map[string]bool
}

// PortMode distinguishes an access port (single VLAN) from a trunk
// port (multiple, tagged VLANs).
type PortMode uint8

const (
	ModeAccess PortMode = iota
	ModeTrunk
)

// SwitchportConfig is the per-port L2 configuration.
type SwitchportConfig struct {
	Mode               PortMode
	AccessVLAN         uint16
	TrunkNativeVLAN    uint16
	TrunkAllowedVLANs  map[uint16]bool
	Suspended          bool
	STP                STPState
}

func defaultSwitchportConfig() SwitchportConfig {
	return SwitchportConfig{
		Mode:              ModeAccess,
		AccessVLAN:        DefaultVLAN,
		TrunkNativeVLAN:   DefaultVLAN,
		TrunkAllowedVLANs: map[uint16]bool{},
		STP:               STPForwarding,
	}
}

// createVLAN adds vid with an empty port set (or renames it if it
// already exists), then re-activates any access ports left suspended
// in vid by an earlier Cisco-style delete, adding them to its port set.
func (s *Switch) createVLAN(vid uint16, name string) {
	v, ok := s.vlans[vid]
	if ok {
		v.Name = name
	} else {
		v = &VLAN{ID: vid, Name: name, Ports: map[string]bool{}}
		s.vlans[vid] = v
	}
	for portName, cfg := range s.switchports {
		if cfg.Mode == ModeAccess && cfg.AccessVLAN == vid && cfg.Suspended {
			cfg.Suspended = false
			s.switchports[portName] = cfg
			v.Ports[portName] = true
		}
	}
}

// deleteVLAN removes vid per the vendor-specific reassignment hook:
// Cisco suspends affected access ports (leaving AccessVLAN unchanged);
// Huawei and Generic reset AccessVLAN to the default VLAN and add the
// port to it. VLAN 1 can never be deleted.
func (s *Switch) deleteVLAN(vid uint16, vendor Vendor) bool {
	if vid == DefaultVLAN {
		return false
	}
	for portName, cfg := range s.switchports {
		if cfg.Mode != ModeAccess || cfg.AccessVLAN != vid {
			continue
		}
		switch vendor {
		case VendorCisco:
			cfg.Suspended = true
		default: // Huawei, Generic
			cfg.AccessVLAN = DefaultVLAN
			if dflt, ok := s.vlans[DefaultVLAN]; ok {
				dflt.Ports[portName] = true
			}
		}
		s.switchports[portName] = cfg
	}
	for key := range s.macTable {
		if key.VID == vid {
			delete(s.macTable, key)
		}
	}
	delete(s.vlans, vid)
	return true
}

// Vendor distinguishes the behavioral differences the switch engine
// delegates to vendor-specific hooks (VLAN delete reassignment,
// initial STP boot state).
type Vendor uint8

const (
	VendorGeneric Vendor = iota
	VendorCisco
	VendorHuawei
)

func (v Vendor) String() string {
	switch v {
	case VendorCisco:
		return "Cisco"
	case VendorHuawei:
		return "Huawei"
	default:
		return "Generic"
	}
}
