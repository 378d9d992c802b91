package host

import (
	"testing"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/link"
	"github.com/netsimlab/netsim/pdu"
)

func connectHosts(t *testing.T, a, b *Host, aIface, bIface string) {
	t.Helper()
	pa := a.AddPort(aIface)
	pb := b.AddPort(bIface)
	pa.SetUp(true)
	pb.SetUp(true)
	link.NewCable(link.CableCat5e, 1, 0, nil).Connect(pa, pb)
}

func TestConfigureInterfaceAddsConnectedRoute(t *testing.T) {
	w := equipment.NewWorld()
	h := NewHost(w, "h1", "Host1")
	h.AddPort("eth0")
	h.ConfigureInterface("eth0", addr.IPv4{192, 168, 1, 10}, addr.SubnetMask{255, 255, 255, 0})

	route, ok := h.Routes().Lookup(addr.IPv4{192, 168, 1, 20})
	if !ok || route.Type != RouteConnected || route.Iface != "eth0" {
		t.Fatalf("expected connected route via eth0, got %+v ok=%v", route, ok)
	}
}

func TestARPRequestForOwnIPIsAnsweredWithUnicastReply(t *testing.T) {
	w := equipment.NewWorld()
	responder := NewHost(w, "h1", "Responder")
	requester := NewHost(w, "h2", "Requester")
	connectHosts(t, responder, requester, "eth0", "eth0")

	responder.ConfigureInterface("eth0", addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0})
	reqPort, _ := requester.Port("eth0")
	reqPort.ConfigureIP(addr.IPv4{10, 0, 0, 2}, addr.SubnetMask{255, 255, 255, 0})

	var replies []pdu.ARPPacket
	reqPort.SetHandler(func(p *iface.Port, f pdu.EthernetFrame) {
		if arp, ok := f.Payload.(pdu.ARPPacket); ok {
			replies = append(replies, arp)
		}
	})

	req := pdu.NewARPRequest(reqPort.MAC, addr.IPv4{10, 0, 0, 2}, addr.IPv4{10, 0, 0, 1})
	frame, _ := pdu.NewEthernetFrame(reqPort.MAC, addr.BroadcastMAC(), req)
	reqPort.SendFrame(frame)

	if len(replies) != 1 || replies[0].Operation != pdu.ARPReply {
		t.Fatalf("expected exactly one ARP reply, got %+v", replies)
	}
	if replies[0].SenderIP != (addr.IPv4{10, 0, 0, 1}) {
		t.Fatalf("unexpected sender IP in reply: %+v", replies[0].SenderIP)
	}
}

func TestResolveCacheHitInvokesCallbackImmediately(t *testing.T) {
	w := equipment.NewWorld()
	h := NewHost(w, "h1", "Host1")
	h.AddPort("eth0")
	h.ConfigureInterface("eth0", addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0})

	target := addr.IPv4{10, 0, 0, 9}
	mac, _ := addr.ParseMAC("00:1a:2b:3c:4d:09")
	h.arp.insert(target, mac, "eth0", 0)

	var gotMAC addr.MAC
	var gotOK bool
	h.resolve(target, "eth0", 1000, func(m addr.MAC, ok bool) {
		gotMAC, gotOK = m, ok
	})
	if !gotOK || gotMAC != mac {
		t.Fatalf("expected cache-hit callback with %v, got %v ok=%v", mac, gotMAC, gotOK)
	}
}

func TestResolveCacheMissTimesOutViaScheduler(t *testing.T) {
	w := equipment.NewWorld()
	h := NewHost(w, "h1", "Host1")
	p := h.AddPort("eth0")
	p.SetUp(true)
	h.ConfigureInterface("eth0", addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0})

	var called bool
	var resolved bool
	h.resolve(addr.IPv4{10, 0, 0, 254}, "eth0", 1000, func(m addr.MAC, ok bool) {
		called, resolved = true, ok
	})
	if called {
		t.Fatalf("callback must not fire before the timeout elapses")
	}
	w.Scheduler.Advance(1000)
	if !called || resolved {
		t.Fatalf("expected a timeout callback with ok=false, got called=%v resolved=%v", called, resolved)
	}
}

func TestRouteTableLongestPrefixMatchWithMetricTiebreak(t *testing.T) {
	var rt RouteTable
	rt.AddConnected(addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0}, "eth0")
	rt.AddConnected(addr.IPv4{10, 0, 1, 1}, addr.SubnetMask{255, 255, 0, 0}, "eth1")
	rt.AddStatic(addr.IPv4{10, 0, 0, 0}, addr.SubnetMask{255, 255, 255, 128}, addr.IPv4{10, 0, 0, 1}, 5)
	rt.AddStatic(addr.IPv4{10, 0, 0, 0}, addr.SubnetMask{255, 255, 255, 128}, addr.IPv4{10, 0, 0, 1}, 1)

	route, ok := rt.Lookup(addr.IPv4{10, 0, 0, 50})
	if !ok || route.Metric != 1 {
		t.Fatalf("expected the lower-metric /25 route to win, got %+v ok=%v", route, ok)
	}
}

func TestRouteTableRejectsStaticRouteWithUnreachableNextHop(t *testing.T) {
	var rt RouteTable
	rt.AddConnected(addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0}, "eth0")
	if rt.AddStatic(addr.IPv4{192, 168, 1, 0}, addr.SubnetMask{255, 255, 255, 0}, addr.IPv4{172, 16, 0, 1}, 1) {
		t.Fatal("expected AddStatic to reject a next hop outside any connected subnet")
	}
}
