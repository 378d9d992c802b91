// Package switchengine implements the L2 forwarding pipeline: VLAN
// database, switchport configuration, MAC learning and aging, and
// STP-gated flooding/forwarding with 802.1Q tag add/strip on egress.
package switchengine

import (
	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// Switch wraps an equipment.Equipment with the L2 forwarding state.
type Switch struct {
	*equipment.Equipment

	Vendor Vendor

	vlans       map[uint16]*VLAN
	switchports map[string]SwitchportConfig
	macTable    map[macKey]*macEntry

	macMoveCounter uint64
	agingSeconds   int // 0 selects defaultDynamicAgeSeconds

	startupConfig []byte // NVRAM blob, survives power cycles
	agingTimer    equipment.TimerID
}

// NewSwitch creates a switch registered in w with VLAN 1 already
// present, matching the invariant that VLAN 1 always exists.
func NewSwitch(w *equipment.World, id, name string, vendor Vendor) *Switch {
	s := &Switch{
		Equipment:   equipment.NewEquipment(w, id, name, equipment.RoleSwitch),
		Vendor:      vendor,
		vlans:       map[uint16]*VLAN{DefaultVLAN: {ID: DefaultVLAN, Name: "default", Ports: map[string]bool{}}},
		switchports: map[string]SwitchportConfig{},
		macTable:    map[macKey]*macEntry{},
	}
	s.scheduleAging()
	return s
}

// bootSTPState returns the STP state a newly-up port starts in,
// which differs by vendor: Cisco boots straight to forwarding in this
// simulator's simplified model (no real topology convergence delay
// to model), while Huawei boots to listening and must be advanced
// through the timer-driven states.
func bootSTPState(vendor Vendor) STPState {
	if vendor == VendorHuawei {
		return STPListening
	}
	return STPForwarding
}

// AddPort creates a port with default access-mode switchport config
// and wires it into the forwarding pipeline.
func (s *Switch) AddPort(name string) *iface.Port {
	p := s.Equipment.AddPort(name)
	cfg := defaultSwitchportConfig()
	cfg.STP = bootSTPState(s.Vendor)
	s.switchports[name] = cfg
	s.vlans[DefaultVLAN].Ports[name] = true
	p.SetHandler(s.handleFrame)
	return p
}

// Switchport returns the configuration for a named port.
func (s *Switch) Switchport(name string) (SwitchportConfig, bool) {
	cfg, ok := s.switchports[name]
	return cfg, ok
}

// SetSwitchport replaces a port's configuration wholesale.
func (s *Switch) SetSwitchport(name string, cfg SwitchportConfig) {
	s.switchports[name] = cfg
}

// CreateVLAN and DeleteVLAN expose the VLAN lifecycle operations.
func (s *Switch) CreateVLAN(vid uint16, name string) { s.createVLAN(vid, name) }
func (s *Switch) DeleteVLAN(vid uint16) bool          { return s.deleteVLAN(vid, s.Vendor) }

// VLANs returns the VLAN database.
func (s *Switch) VLANs() map[uint16]*VLAN { return s.vlans }

// AdvanceSTP exposes advanceSTP to vendor CLI shells (the Huawei shell
// ticks a port's STP timer forward on an explicit display/debug
// command, since this simulator has no real topology-convergence
// clock to drive it automatically).
func (s *Switch) AdvanceSTP(portName string) { s.advanceSTP(portName) }

// advanceSTP moves a port forward one STP state, used by vendor CLI
// shells driving the boot-time listening->learning->forwarding
// progression on Huawei devices. Cisco and Generic ports in this
// simulator boot directly to forwarding and don't need advancing.
func (s *Switch) advanceSTP(portName string) {
	cfg, ok := s.switchports[portName]
	if !ok {
		return
	}
	switch cfg.STP {
	case STPListening:
		cfg.STP = STPLearning
	case STPLearning:
		cfg.STP = STPForwarding
	}
	s.switchports[portName] = cfg
}

// handleFrame is the five-step pipeline invoked for every frame
// received on any switch port.
func (s *Switch) handleFrame(ingress *iface.Port, frame pdu.EthernetFrame) {
	ingressName := s.portName(ingress)
	cfg, ok := s.switchports[ingressName]
	if !ok {
		return
	}

	// Step 1: gate by STP/link.
	if cfg.STP.blocksIngress() || !ingress.IsUp() {
		return
	}

	// Step 2: determine ingress VLAN.
	vid, ok := s.ingressVLAN(cfg, frame)
	if !ok {
		return
	}

	// Step 3: MAC learning (skipped entirely if STP state doesn't
	// allow it; STPLearning performs this step but not step 4).
	if cfg.STP.allowsLearning() {
		if s.learn(vid, frame.SrcMAC, ingressName) {
			s.macMoveCounter++
			s.Warn("switch:mac-move", "MAC address moved to a different port")
		}
	}
	if cfg.STP != STPForwarding {
		return
	}

	// Step 4: forwarding decision.
	untagged := frame.Untagged()
	if isFloodTarget(frame.DstMAC) {
		s.floodVLAN(vid, ingressName, untagged)
		return
	}
	egressName, found := s.lookup(vid, frame.DstMAC)
	if !found {
		s.floodVLAN(vid, ingressName, untagged)
		return
	}
	if egressName == ingressName {
		return // drop silently: same port
	}
	s.forwardTo(egressName, vid, untagged)
}

// isFloodTarget reports whether dst forces a flood regardless of the
// MAC table: broadcast or IPv6 multicast (33:33:*).
func isFloodTarget(dst addr.MAC) bool {
	return dst.IsBroadcast() || dst.IsIPv6Multicast()
}

// ingressVLAN implements step 2 of the pipeline.
func (s *Switch) ingressVLAN(cfg SwitchportConfig, frame pdu.EthernetFrame) (uint16, bool) {
	if cfg.Mode == ModeAccess {
		return cfg.AccessVLAN, true
	}
	vid, tagged := frame.VID()
	if !tagged {
		return cfg.TrunkNativeVLAN, true
	}
	if !cfg.TrunkAllowedVLANs[vid] {
		return 0, false
	}
	return vid, true
}

// floodVLAN sends untagged to every other eligible port in vid.
func (s *Switch) floodVLAN(vid uint16, ingressName string, untagged pdu.EthernetFrame) {
	for name := range s.vlans[vid].Ports {
		if name == ingressName {
			continue
		}
		s.forwardTo(name, vid, untagged)
	}
	// Trunk ports that carry vid in their allowed set but aren't in
	// the VLAN's access-port membership set also participate in the
	// flood.
	for name, cfg := range s.switchports {
		if name == ingressName || cfg.Mode != ModeTrunk || s.vlans[vid].Ports[name] {
			continue
		}
		if cfg.TrunkAllowedVLANs[vid] || cfg.TrunkNativeVLAN == vid {
			s.forwardTo(name, vid, untagged)
		}
	}
}

// forwardTo applies the egress transformation (step 5) and sends
// untagged out egressName, skipping ports excluded by link, STP, or
// VLAN membership.
func (s *Switch) forwardTo(egressName string, vid uint16, untagged pdu.EthernetFrame) {
	cfg, ok := s.switchports[egressName]
	if !ok {
		return
	}
	p, ok := s.Port(egressName)
	if !ok || !p.IsUp() || !p.HasCable() || cfg.STP.blocksEgress() {
		return
	}
	if cfg.Mode == ModeTrunk && vid != cfg.TrunkNativeVLAN && !cfg.TrunkAllowedVLANs[vid] {
		return
	}

	out := untagged
	switch {
	case cfg.Mode == ModeAccess:
		// already untagged
	case cfg.Mode == ModeTrunk && vid == cfg.TrunkNativeVLAN:
		// already untagged
	case cfg.Mode == ModeTrunk:
		out = untagged.WithVLANTag(vid)
	}
	p.SendFrame(out)
}

func (s *Switch) portName(p *iface.Port) string {
	for name, pp := range s.Ports() {
		if pp == p {
			return name
		}
	}
	return ""
}

// scheduleAging arms the once-per-second MAC aging sweep via the
// World's virtual-clock scheduler.
func (s *Switch) scheduleAging() {
	const tickMs = 1000
	var tick func()
	tick = func() {
		if s.Power == equipment.PowerOff {
			return
		}
		s.ageSweep(1.0)
		s.agingTimer = s.World.Scheduler.After(tickMs, tick)
	}
	s.agingTimer = s.World.Scheduler.After(tickMs, tick)
}

// SetStartupConfig stores the NVRAM blob that survives power cycles.
func (s *Switch) SetStartupConfig(blob []byte) { s.startupConfig = blob }

// StartupConfig returns the stored NVRAM blob, if any.
func (s *Switch) StartupConfig() []byte { return s.startupConfig }

// PowerCycle simulates power-off (stop aging, keep NVRAM) and
// power-on (DRAM loss: clear hostname override, MAC table, VLAN DB,
// switchport config, CLI FSM state is the caller's concern; restart
// aging and restore from startup-config if present).
func (s *Switch) PowerCycle(on bool) {
	s.Equipment.PowerCycle(on)
	if !on {
		return
	}
	s.Hostname = s.Name
	s.macTable = map[macKey]*macEntry{}
	s.vlans = map[uint16]*VLAN{DefaultVLAN: {ID: DefaultVLAN, Name: "default", Ports: map[string]bool{}}}
	for name := range s.switchports {
		cfg := defaultSwitchportConfig()
		cfg.STP = bootSTPState(s.Vendor)
		s.switchports[name] = cfg
		s.vlans[DefaultVLAN].Ports[name] = true
	}
	s.scheduleAging()
	if s.startupConfig != nil {
		s.restoreFromStartupConfig()
	}
}

// restoreFromStartupConfig is defined in nvram.go.
