package huawei

import (
	"testing"

	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/switchengine"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *switchengine.Switch) {
	t.Helper()
	w := equipment.NewWorld()
	sw := switchengine.NewSwitch(w, "sw1", "Switch1", switchengine.VendorHuawei)
	p := sw.AddPort("GigabitEthernet0/0/1")
	p.SetUp(true)
	return NewSession(sw), sw
}

func TestModeTransitionsSystemViewInterfaceVlan(t *testing.T) {
	s, _ := newTestSession(t)
	require.Equal(t, ModeUser, s.Mode)
	require.Equal(t, "<Switch1>", s.Prompt())

	require.Empty(t, s.Execute("system-view"))
	require.Equal(t, ModeSystem, s.Mode)
	require.Equal(t, "[Switch1]", s.Prompt())

	require.Empty(t, s.Execute("interface GE0/0/1"))
	require.Equal(t, ModeInterface, s.Mode)
	require.Equal(t, "[Switch1-GigabitEthernet0/0/1]", s.Prompt())

	require.Empty(t, s.Execute("quit"))
	require.Equal(t, ModeSystem, s.Mode)

	require.Empty(t, s.Execute("vlan 10"))
	require.Equal(t, ModeVlan, s.Mode)
	_, ok := s.Switch.VLANs()[10]
	require.True(t, ok, "expected 'vlan 10' to create VLAN 10")
	require.Equal(t, "[Switch1-vlan10]", s.Prompt())

	require.Empty(t, s.Execute("return"))
	require.Equal(t, ModeUser, s.Mode)
}

func TestIncompleteCommandRendersVRPErrorString(t *testing.T) {
	s, _ := newTestSession(t)
	require.Empty(t, s.Execute("system-view"))
	out := s.Execute("vlan")
	require.Equal(t, "Error: Incomplete command found at '^1' position.", out)
}

func TestUnrecognizedCommandRendersVRPErrorString(t *testing.T) {
	s, _ := newTestSession(t)
	out := s.Execute("bogus-command")
	require.Equal(t, "Error: Unrecognized command found at '^1' position.", out)
}

func TestAmbiguousCommandRendersVRPErrorString(t *testing.T) {
	s, _ := newTestSession(t)
	out := s.Execute("d")
	require.Equal(t, "Error: Ambiguous command found at '^1' position.", out)
}

func TestSysnameSetsSwitchHostname(t *testing.T) {
	s, sw := newTestSession(t)
	require.Empty(t, s.Execute("system-view"))
	require.Empty(t, s.Execute("sysname CoreSwitch"))
	require.Equal(t, "CoreSwitch", sw.Hostname)
}

func TestPortLinkTypeAndTrunkAllowPassConfiguresSwitchport(t *testing.T) {
	s, sw := newTestSession(t)
	require.Empty(t, s.Execute("system-view"))
	require.Empty(t, s.Execute("interface GE0/0/1"))
	require.Empty(t, s.Execute("port link-type trunk"))
	require.Empty(t, s.Execute("port trunk pvid vlan 1"))
	require.Empty(t, s.Execute("port trunk allow-pass vlan 10,11,12"))

	cfg, ok := sw.Switchport("GigabitEthernet0/0/1")
	require.True(t, ok)
	require.Equal(t, switchengine.ModeTrunk, cfg.Mode)
	require.True(t, cfg.TrunkAllowedVLANs[10])
	require.True(t, cfg.TrunkAllowedVLANs[11])
	require.True(t, cfg.TrunkAllowedVLANs[12])
}

func TestDisplayThisAdvancesBootSTPStateFromListening(t *testing.T) {
	s, sw := newTestSession(t)
	cfg, _ := sw.Switchport("GigabitEthernet0/0/1")
	require.Equal(t, switchengine.STPListening, cfg.STP, "Huawei ports should boot into listening")

	require.Empty(t, s.Execute("system-view"))
	require.Empty(t, s.Execute("interface GE0/0/1"))

	out := s.Execute("display this")
	require.Contains(t, out, "learning")
	cfg, _ = sw.Switchport("GigabitEthernet0/0/1")
	require.Equal(t, switchengine.STPLearning, cfg.STP)

	out = s.Execute("display this")
	require.Contains(t, out, "forwarding")
	cfg, _ = sw.Switchport("GigabitEthernet0/0/1")
	require.Equal(t, switchengine.STPForwarding, cfg.STP)
}

func TestPipeIncludeFiltersDisplayVlanOutput(t *testing.T) {
	s, _ := newTestSession(t)
	require.Empty(t, s.Execute("system-view"))
	out := s.Execute("display vlan | include 1")
	require.Contains(t, out, "1")
	require.NotContains(t, out, "Status")
}

func TestInterfaceAbbreviationResolvesGEPrefix(t *testing.T) {
	name, ok := resolveInterfaceName("GE0/0/1")
	require.True(t, ok)
	require.Equal(t, "GigabitEthernet0/0/1", name)

	_, ok = resolveInterfaceName("bogus0/0/1")
	require.False(t, ok)
}
