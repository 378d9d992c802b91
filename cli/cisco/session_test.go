package cisco

import (
	"testing"

	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/switchengine"
	"github.com/stretchr/testify/require"
)

// newTestSession builds a two-port switch and a session starting in
// user mode, the fixture every test below drives through the shell.
func newTestSession(t *testing.T) (*Session, *switchengine.Switch) {
	t.Helper()
	w := equipment.NewWorld()
	sw := switchengine.NewSwitch(w, "sw1", "Switch1", switchengine.VendorCisco)
	p := sw.AddPort("FastEthernet0/1")
	p.SetUp(true)
	return NewSession(sw), sw
}

func TestModeTransitionsEnableConfigureInterfaceVlan(t *testing.T) {
	s, _ := newTestSession(t)
	require.Equal(t, ModeUser, s.Mode)
	require.Equal(t, "Switch1>", s.Prompt())

	require.Empty(t, s.Execute("enable"))
	require.Equal(t, ModePrivileged, s.Mode)
	require.Equal(t, "Switch1#", s.Prompt())

	require.Empty(t, s.Execute("configure terminal"))
	require.Equal(t, ModeConfig, s.Mode)
	require.Equal(t, "Switch1(config)#", s.Prompt())

	require.Empty(t, s.Execute("interface fa0/1"))
	require.Equal(t, ModeConfigIf, s.Mode)
	require.Equal(t, "Switch1(config-if)#", s.Prompt())

	require.Empty(t, s.Execute("exit"))
	require.Equal(t, ModeConfig, s.Mode)

	require.Empty(t, s.Execute("vlan 10"))
	require.Equal(t, ModeConfigVlan, s.Mode)
	_, ok := s.Switch.VLANs()[10]
	require.True(t, ok, "expected 'vlan 10' to create VLAN 10")

	require.Empty(t, s.Execute("end"))
	require.Equal(t, ModePrivileged, s.Mode)
}

func TestUniquePrefixConfTResolvesToConfigureTerminal(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	require.Empty(t, s.Execute("conf t"))
	require.Equal(t, ModeConfig, s.Mode)
}

func TestShowVerUniquePrefixResolvesToShowVersion(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	out := s.Execute("show ver")
	require.Contains(t, out, "Switch1 uptime is simulated")
	require.Contains(t, out, "Model: Cisco")
}

func TestShAloneInPrivilegedIsAmbiguous(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	out := s.Execute("sh")
	require.Equal(t, `% Ambiguous command: "sh"`, out)
}

func TestIncompleteCommandRendersIOSIncompleteString(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	require.Empty(t, s.Execute(""))
	require.Equal(t, ModePrivileged, s.Mode)

	out := s.Execute("configure terminal")
	require.Empty(t, out)
	s.Mode = ModeConfig
	out = s.Execute("vlan")
	require.Equal(t, "% Incomplete command.", out)
}

func TestInvalidInputRendersIOSCaretMarker(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	out := s.Execute("bogus-command")
	require.Equal(t, "% Invalid input detected at '^' marker.", out)
}

func TestSwitchportConfigurationThroughInterfaceMode(t *testing.T) {
	s, sw := newTestSession(t)
	s.Mode = ModePrivileged
	require.Empty(t, s.Execute("configure terminal"))
	require.Empty(t, s.Execute("interface fa0/1"))
	require.Empty(t, s.Execute("switchport mode trunk"))
	require.Empty(t, s.Execute("switchport trunk native vlan 1"))
	require.Empty(t, s.Execute("switchport trunk allowed vlan 10,20-22"))

	cfg, ok := sw.Switchport("FastEthernet0/1")
	require.True(t, ok)
	require.Equal(t, switchengine.ModeTrunk, cfg.Mode)
	require.True(t, cfg.TrunkAllowedVLANs[10])
	require.True(t, cfg.TrunkAllowedVLANs[20])
	require.True(t, cfg.TrunkAllowedVLANs[21])
	require.True(t, cfg.TrunkAllowedVLANs[22])
	require.False(t, cfg.TrunkAllowedVLANs[23])
}

func TestPipeIncludeFiltersShowVlanOutput(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	out := s.Execute("show vlan | include 1")
	require.Contains(t, out, "1")
	require.NotContains(t, out, "Status")
}

func TestPipeExcludeDropsMatchingLines(t *testing.T) {
	s, _ := newTestSession(t)
	s.Mode = ModePrivileged
	out := s.Execute("show vlan | exclude VLAN")
	require.NotContains(t, out, "VLAN Name")
}

func TestInterfaceNameResolvesAbbreviations(t *testing.T) {
	name, ok := resolveInterfaceName("Gi0/1")
	require.True(t, ok)
	require.Equal(t, "GigabitEthernet0/1", name)

	name, ok = resolveInterfaceName("eth0")
	require.True(t, ok)
	require.Equal(t, "eth0", name)

	_, ok = resolveInterfaceName("bogus0/1")
	require.False(t, ok)
}

func TestReloadPowerCyclesAndReturnsToUserMode(t *testing.T) {
	s, sw := newTestSession(t)
	s.Mode = ModePrivileged
	sw.CreateVLAN(99, "scratch")
	require.Empty(t, s.Execute("reload"))
	require.Equal(t, ModeUser, s.Mode)
	_, ok := sw.VLANs()[99]
	require.False(t, ok, "expected power cycle to clear the VLAN DB")
}
