// Package hub implements the L1 repeater: a device that floods every
// received frame, unchanged, to every other up port, with no
// learning and no VLAN awareness.
package hub

import (
	"github.com/netsimlab/netsim/equipment"
	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/pdu"
)

// Hub wraps an equipment.Equipment and wires its ports' frame
// handlers to the flood-all-except-ingress pipeline.
type Hub struct {
	*equipment.Equipment
}

// NewHub creates a hub registered in w.
func NewHub(w *equipment.World, id, name string) *Hub {
	h := &Hub{Equipment: equipment.NewEquipment(w, id, name, equipment.RoleHub)}
	return h
}

// AddPort creates a port and wires it into the repeater pipeline.
func (h *Hub) AddPort(name string) *iface.Port {
	p := h.Equipment.AddPort(name)
	p.SetHandler(h.handleFrame)
	return p
}

// handleFrame forwards frame unchanged to every other port whose
// state is up and that has a cable attached.
func (h *Hub) handleFrame(ingress *iface.Port, frame pdu.EthernetFrame) {
	for _, p := range h.Ports() {
		if p == ingress || !p.IsUp() || !p.HasCable() {
			continue
		}
		p.SendFrame(frame)
	}
}
