package main

import (
	"fmt"
	"log/slog"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/cli/cisco"
	clihost "github.com/netsimlab/netsim/cli/host"
	"github.com/netsimlab/netsim/cli/huawei"
	"github.com/netsimlab/netsim/dhcp"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/host"
	"github.com/netsimlab/netsim/link"
	"github.com/netsimlab/netsim/netlog"
	"github.com/netsimlab/netsim/router"
	"github.com/netsimlab/netsim/switchengine"
)

// device is one entry in the demo topology an operator can attach a
// shell to: a vendor name plus the Execute/Prompt pair its package
// exposes, so the TUI model can stay ignorant of which concrete
// session type backs any given target.
type device struct {
	name    string
	vendor  string
	execute func(string) string
	prompt  func() string
}

// topology bundles every device built for the demo, the World they
// share, and the addressable device list the TUI lets an operator
// pick from.
type topology struct {
	World   *equipment.World
	Devices []device
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("netsimctl: demo topology build failed: %v", err))
	}
}

func mustIP(s string) addr.IPv4 {
	ip, err := addr.ParseIPv4(s)
	must(err)
	return ip
}

func mustMask(cidr int) addr.SubnetMask {
	m, err := addr.SubnetMaskFromCIDR(cidr)
	must(err)
	return m
}

// buildDemoTopology wires a small fixed network: a Cisco access
// switch and a Huawei access switch 802.1Q-trunked together, two
// hosts on the Cisco switch's VLAN 1 (PC1 with a static address and
// DHCPSRV running the DHCP server), two more hosts in VLAN 10 on
// opposite switches reachable only across the trunk, and a router
// connecting the VLAN 1 LAN to a second subnet with one more host — enough surface to exercise ping, traceroute,
// DHCP, VLAN tagging, and both vendor shells from one session.
func buildDemoTopology(logHandler slog.Handler) *topology {
	w := equipment.NewWorld()
	w.Bus = netlog.NewBus(logHandler, 0)

	sw1 := switchengine.NewSwitch(w, "SW1", "SW1", switchengine.VendorCisco)
	sw2 := switchengine.NewSwitch(w, "SW2", "SW2", switchengine.VendorHuawei)

	sw1Gi1 := sw1.AddPort("GigabitEthernet0/1")
	sw1Gi2 := sw1.AddPort("GigabitEthernet0/2")
	sw1Gi3 := sw1.AddPort("GigabitEthernet0/3")
	sw1Gi4 := sw1.AddPort("GigabitEthernet0/4")
	sw1Trunk := sw1.AddPort("GigabitEthernet0/24")

	sw2Trunk := sw2.AddPort("GigabitEthernet0/0/24")
	sw2Gi1 := sw2.AddPort("GigabitEthernet0/0/1")

	trunkCfg1, _ := sw1.Switchport("GigabitEthernet0/24")
	trunkCfg1.Mode = switchengine.ModeTrunk
	trunkCfg1.TrunkAllowedVLANs = map[uint16]bool{1: true, 10: true}
	sw1.SetSwitchport("GigabitEthernet0/24", trunkCfg1)

	trunkCfg2, _ := sw2.Switchport("GigabitEthernet0/0/24")
	trunkCfg2.Mode = switchengine.ModeTrunk
	trunkCfg2.TrunkAllowedVLANs = map[uint16]bool{1: true, 10: true}
	sw2.SetSwitchport("GigabitEthernet0/0/24", trunkCfg2)

	sw1.CreateVLAN(10, "USERS")
	sw2.CreateVLAN(10, "USERS")

	pc2Cfg, _ := sw1.Switchport("GigabitEthernet0/2")
	pc2Cfg.AccessVLAN = 10
	sw1.SetSwitchport("GigabitEthernet0/2", pc2Cfg)
	delete(sw1.VLANs()[switchengine.DefaultVLAN].Ports, "GigabitEthernet0/2")
	sw1.VLANs()[10].Ports["GigabitEthernet0/2"] = true

	pc4Cfg, _ := sw2.Switchport("GigabitEthernet0/0/1")
	pc4Cfg.AccessVLAN = 10
	sw2.SetSwitchport("GigabitEthernet0/0/1", pc4Cfg)
	delete(sw2.VLANs()[switchengine.DefaultVLAN].Ports, "GigabitEthernet0/0/1")
	sw2.VLANs()[10].Ports["GigabitEthernet0/0/1"] = true

	trunkCable := link.NewCable(link.CableCat6, 2, 0, w.Bus)
	trunkCable.Connect(sw1Trunk, sw2Trunk)

	pc1 := host.NewHost(w, "PC1", "PC1")
	pc2 := host.NewHost(w, "PC2", "PC2")
	dhcpHost := host.NewHost(w, "DHCPSRV", "DHCPSRV")
	pc3 := host.NewHost(w, "PC3", "PC3")
	pc4 := host.NewHost(w, "PC4", "PC4")
	r1 := router.NewRouter(w, "R1", "R1")

	pc1Eth0 := pc1.AddPort("eth0")
	pc2Eth0 := pc2.AddPort("eth0")
	dhcpEth0 := dhcpHost.AddPort("eth0")
	r1Gi1 := r1.AddPort("GigabitEthernet0/1")
	r1Gi2 := r1.AddPort("GigabitEthernet0/2")
	pc3Eth0 := pc3.AddPort("eth0")
	pc4Eth0 := pc4.AddPort("eth0")

	link.NewCable(link.CableCat6, 1, 0, w.Bus).Connect(pc1Eth0, sw1Gi1)
	link.NewCable(link.CableCat6, 1, 0, w.Bus).Connect(pc2Eth0, sw1Gi2)
	link.NewCable(link.CableCat6, 1, 0, w.Bus).Connect(dhcpEth0, sw1Gi3)
	link.NewCable(link.CableCat6, 1, 0, w.Bus).Connect(r1Gi1, sw1Gi4)
	link.NewCable(link.CableCat6, 2, 0, w.Bus).Connect(r1Gi2, pc3Eth0)
	link.NewCable(link.CableCat6, 1, 0, w.Bus).Connect(pc4Eth0, sw2Gi1)

	pc1.ConfigureInterface("eth0", mustIP("10.0.0.10"), mustMask(24))
	pc1.AddDefaultRoute(mustIP("10.0.0.254"), 1)

	// PC2 and PC4 sit in VLAN 10 on opposite switches, reachable only
	// across the SW1<->SW2 trunk, to exercise cross-switch VLAN
	// forwarding and 802.1Q tagging.
	pc2.ConfigureInterface("eth0", mustIP("10.0.10.10"), mustMask(24))
	pc4.ConfigureInterface("eth0", mustIP("10.0.10.20"), mustMask(24))

	dhcpHost.ConfigureInterface("eth0", mustIP("10.0.0.1"), mustMask(24))

	r1.ConfigureInterface("GigabitEthernet0/1", mustIP("10.0.0.254"), mustMask(24))
	r1.ConfigureInterface("GigabitEthernet0/2", mustIP("10.0.1.1"), mustMask(24))

	pc3.ConfigureInterface("eth0", mustIP("10.0.1.10"), mustMask(24))
	pc3.AddDefaultRoute(mustIP("10.0.1.1"), 1)

	srv := dhcp.NewServer(dhcpHost, "eth0")
	srv.AddPool(&dhcp.Pool{
		Name:                 "USERS",
		Network:              mustIP("10.0.0.0"),
		Mask:                 mustMask(24),
		DefaultRouter:        mustIP("10.0.0.254"),
		HasDefaultRouter:     true,
		DNSServers:           []addr.IPv4{mustIP("10.0.0.1")},
		LeaseDurationSeconds: 3600,
	})

	ciscoSession := cisco.NewSession(sw1)
	huaweiSession := huawei.NewSession(sw2)
	pc1Session := clihost.NewSession(pc1)
	pc2Session := clihost.NewSession(pc2)
	pc3Session := clihost.NewSession(pc3)
	pc4Session := clihost.NewSession(pc4)

	devices := []device{
		{name: "SW1", vendor: "cisco", execute: ciscoSession.Execute, prompt: ciscoSession.Prompt},
		{name: "SW2", vendor: "huawei", execute: huaweiSession.Execute, prompt: huaweiSession.Prompt},
		{name: "PC1", vendor: "host", execute: pc1Session.Execute, prompt: func() string { return "PC1$" }},
		{name: "PC2", vendor: "host", execute: pc2Session.Execute, prompt: func() string { return "PC2$" }},
		{name: "PC3", vendor: "host", execute: pc3Session.Execute, prompt: func() string { return "PC3$" }},
		{name: "PC4", vendor: "host", execute: pc4Session.Execute, prompt: func() string { return "PC4$" }},
	}

	return &topology{World: w, Devices: devices}
}
