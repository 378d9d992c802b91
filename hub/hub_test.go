package hub

import (
	"testing"

	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/link"
	"github.com/netsimlab/netsim/pdu"
)

func TestHubFloodsToEveryOtherUpPort(t *testing.T) {
	w := equipment.NewWorld()
	h := NewHub(w, "hub1", "Hub1")
	p1 := h.AddPort("1")
	p2 := h.AddPort("2")
	p3 := h.AddPort("3")
	p1.SetUp(true)
	p2.SetUp(true)
	p3.SetUp(true)

	peer2 := iface.NewPort("peer2", [6]byte{}, nil)
	peer3 := iface.NewPort("peer3", [6]byte{}, nil)
	peer2.SetUp(true)
	peer3.SetUp(true)

	var got2, got3 int
	peer2.SetHandler(func(p *iface.Port, f pdu.EthernetFrame) { got2++ })
	peer3.SetHandler(func(p *iface.Port, f pdu.EthernetFrame) { got3++ })

	link.NewCable(link.CableCat5e, 1, 0, nil).Connect(p2, peer2)
	link.NewCable(link.CableCat5e, 1, 0, nil).Connect(p3, peer3)

	frame, ok := pdu.NewEthernetFrame(p1.MAC, [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, pdu.ARPPacket{})
	if !ok {
		t.Fatal("unexpected frame construction failure")
	}
	h.handleFrame(p1, frame)

	if got2 != 1 || got3 != 1 {
		t.Fatalf("expected both non-ingress ports to receive the frame, got %d/%d", got2, got3)
	}
}

func TestHubSkipsDownPorts(t *testing.T) {
	w := equipment.NewWorld()
	h := NewHub(w, "hub1", "Hub1")
	p1 := h.AddPort("1")
	p2 := h.AddPort("2")
	p1.SetUp(true)
	// p2 left down.

	peer2 := iface.NewPort("peer2", [6]byte{}, nil)
	peer2.SetUp(true)
	var got int
	peer2.SetHandler(func(p *iface.Port, f pdu.EthernetFrame) { got++ })
	link.NewCable(link.CableCat5e, 1, 0, nil).Connect(p2, peer2)

	frame, _ := pdu.NewEthernetFrame(p1.MAC, [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, pdu.ARPPacket{})
	h.handleFrame(p1, frame)

	if got != 0 {
		t.Fatal("expected down port to not receive flooded frame")
	}
}
