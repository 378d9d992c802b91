package router

import (
	"testing"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/host"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/link"
	"github.com/netsimlab/netsim/pdu"
)

func connect(a, b *iface.Port) {
	a.SetUp(true)
	b.SetUp(true)
	link.NewCable(link.CableCat5e, 1, 0, nil).Connect(a, b)
}

// topology: hostA (10.0.0.2/24) -- eth0 -- r.eth0 (10.0.0.1/24)
//           r.eth1 (10.1.0.1/24) -- eth0 -- hostB (10.1.0.2/24)
func twoSegmentTopology(t *testing.T) (w *equipment.World, r *Router, a, b *host.Host) {
	t.Helper()
	w = equipment.NewWorld()
	r = NewRouter(w, "r1", "R1")
	a = host.NewHost(w, "a", "A")
	b = host.NewHost(w, "b", "B")

	rEthA := r.AddPort("eth0")
	rEthB := r.AddPort("eth1")
	aEth := a.AddPort("eth0")
	bEth := b.AddPort("eth0")

	connect(rEthA, aEth)
	connect(rEthB, bEth)

	r.ConfigureInterface("eth0", addr.IPv4{10, 0, 0, 1}, addr.SubnetMask{255, 255, 255, 0})
	r.ConfigureInterface("eth1", addr.IPv4{10, 1, 0, 1}, addr.SubnetMask{255, 255, 255, 0})

	a.ConfigureInterface("eth0", addr.IPv4{10, 0, 0, 2}, addr.SubnetMask{255, 255, 255, 0})
	a.AddDefaultRoute(addr.IPv4{10, 0, 0, 1}, 1)

	b.ConfigureInterface("eth0", addr.IPv4{10, 1, 0, 2}, addr.SubnetMask{255, 255, 255, 0})
	b.AddDefaultRoute(addr.IPv4{10, 1, 0, 1}, 1)

	return w, r, a, b
}

func TestForwardsAcrossTwoSubnets(t *testing.T) {
	_, _, a, _ := twoSegmentTopology(t)

	var got host.PingResult
	a.Ping(addr.IPv4{10, 1, 0, 2}, 1, 0, func(seq int, r host.PingResult) { got = r })

	if !got.Success {
		t.Fatalf("expected successful ping across router, got %+v", got)
	}
	if !got.FromIP.Equal(addr.IPv4{10, 1, 0, 2}) {
		t.Fatalf("unexpected responder: %+v", got.FromIP)
	}
}

func TestTTLExpiryProducesTimeExceededFromRouter(t *testing.T) {
	_, _, a, b := twoSegmentTopology(t)
	_ = b

	var got host.PingResult
	a.Ping(addr.IPv4{10, 1, 0, 2}, 1, 1, func(seq int, r host.PingResult) { got = r })

	if got.Success {
		t.Fatalf("expected TTL exceeded, ping unexpectedly succeeded")
	}
	if !got.FromIP.Equal(addr.IPv4{10, 0, 0, 1}) {
		t.Fatalf("expected time-exceeded from router's ingress interface, got %+v", got.FromIP)
	}
}

func TestDestinationUnreachableWhenNoRouteExists(t *testing.T) {
	_, _, a, _ := twoSegmentTopology(t)

	var got host.PingResult
	a.Ping(addr.IPv4{192, 168, 9, 9}, 1, 0, func(seq int, r host.PingResult) { got = r })

	if got.Success {
		t.Fatalf("expected destination unreachable, ping unexpectedly succeeded")
	}
	if !got.FromIP.Equal(addr.IPv4{10, 0, 0, 1}) {
		t.Fatalf("expected unreachable reply from router, got %+v", got.FromIP)
	}
}

// denyAllHook refuses every packet before the routing lookup, modeling
// an ACL that blocks all forwarded traffic.
type denyAllHook struct{ calls int }

func (h *denyAllHook) BeforeForward(ingress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool) {
	h.calls++
	return pkt, false
}

func (h *denyAllHook) AfterForward(egress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool) {
	return pkt, true
}

func TestForwardHookCanBlockForwarding(t *testing.T) {
	_, r, a, _ := twoSegmentTopology(t)
	hook := &denyAllHook{}
	r.AddForwardHook(hook)

	var got host.PingResult
	a.Ping(addr.IPv4{10, 1, 0, 2}, 1, 0, func(seq int, result host.PingResult) { got = result })

	if got.Success {
		t.Fatalf("expected the deny-all hook to block forwarding")
	}
	if hook.calls != 1 {
		t.Fatalf("expected BeforeForward to run exactly once, ran %d times", hook.calls)
	}
}

// passThroughHook never rewrites or drops; proves a permissive hook
// chain doesn't interfere with ordinary forwarding.
type passThroughHook struct{}

func (passThroughHook) BeforeForward(ingress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool) {
	return pkt, true
}

func (passThroughHook) AfterForward(egress *iface.Port, pkt pdu.IPv4Packet) (pdu.IPv4Packet, bool) {
	return pkt, true
}

func TestPassThroughHookDoesNotAffectForwarding(t *testing.T) {
	_, r, a, _ := twoSegmentTopology(t)
	r.AddForwardHook(passThroughHook{})

	var got host.PingResult
	a.Ping(addr.IPv4{10, 1, 0, 2}, 1, 0, func(seq int, result host.PingResult) { got = result })

	if !got.Success {
		t.Fatalf("expected a pass-through hook to leave forwarding working, got %+v", got)
	}
}

func TestRouterAnswersEchoRequestsToItsOwnAddress(t *testing.T) {
	_, _, a, _ := twoSegmentTopology(t)

	var got host.PingResult
	a.Ping(addr.IPv4{10, 0, 0, 1}, 1, 0, func(seq int, r host.PingResult) { got = r })

	if !got.Success {
		t.Fatalf("expected the router to answer a ping to its own interface, got %+v", got)
	}
}
