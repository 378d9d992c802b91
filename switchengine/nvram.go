package switchengine

import "encoding/json"

// nvramDoc is the JSON shape persisted as the startup-config NVRAM
// blob: just enough state to reconstruct the running configuration
// after a power cycle. STP state is deliberately not persisted — it
// always restarts from bootSTPState on power-on, matching how a real
// switch re-runs spanning-tree convergence after reload rather than
// remembering its prior port states.
type nvramDoc struct {
	Hostname    string                      `json:"hostname"`
	VLANs       []vlanDoc                   `json:"vlans"`
	Switchports map[string]SwitchportConfig `json:"switchports"`
}

type vlanDoc struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
}

// CaptureNVRAM serializes the current running configuration (hostname,
// VLAN database, per-port switchport settings) into the JSON blob the
// CLI's write/copy commands persist via SetStartupConfig.
func (s *Switch) CaptureNVRAM() []byte {
	doc := nvramDoc{
		Hostname:    s.Hostname,
		Switchports: make(map[string]SwitchportConfig, len(s.switchports)),
	}
	for vid, v := range s.vlans {
		doc.VLANs = append(doc.VLANs, vlanDoc{ID: vid, Name: v.Name})
	}
	for name, cfg := range s.switchports {
		doc.Switchports[name] = cfg
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return b
}

// restoreFromStartupConfig reconstructs hostname, VLAN database, and
// switchport configuration from the stored NVRAM blob. Ports that no
// longer exist are skipped; STP is left at whatever bootSTPState
// already assigned during PowerCycle's port reset.
func (s *Switch) restoreFromStartupConfig() {
	var doc nvramDoc
	if err := json.Unmarshal(s.startupConfig, &doc); err != nil {
		return
	}
	s.Hostname = doc.Hostname
	for _, v := range doc.VLANs {
		if v.ID == DefaultVLAN {
			s.vlans[DefaultVLAN].Name = v.Name
			continue
		}
		s.createVLAN(v.ID, v.Name)
	}
	for name, cfg := range doc.Switchports {
		if _, ok := s.switchports[name]; !ok {
			continue
		}
		cfg.STP = s.switchports[name].STP
		s.switchports[name] = cfg
		if cfg.Mode == ModeAccess {
			if vlan, ok := s.vlans[cfg.AccessVLAN]; ok {
				vlan.Ports[name] = true
			}
		}
	}
}
