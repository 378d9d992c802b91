package equipment

import (
	"sync"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/netlog"
)

// World is the explicit context every piece of equipment is created
// in. It replaces a hidden process-wide registry with a value callers
// thread through construction and lookups, carrying the shared event
// bus and virtual-clock scheduler alongside the peer-lookup table.
type World struct {
	mu        sync.Mutex
	equipment map[string]*Equipment
	byIPv4    map[addr.IPv4]*Equipment

	Bus       *netlog.Bus
	Scheduler *Scheduler
}

// NewWorld constructs an empty World with a fresh bus and scheduler.
func NewWorld() *World {
	return &World{
		equipment: make(map[string]*Equipment),
		byIPv4:    make(map[addr.IPv4]*Equipment),
		Bus:       netlog.NewBus(nil, 0),
		Scheduler: NewScheduler(),
	}
}

// register adds e to the registry, keyed by its id. Called from
// NewEquipment; never called directly by simulation code.
func (w *World) register(e *Equipment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.equipment[e.ID] = e
}

// Unregister removes e from the registry, mirroring equipment
// destruction.
func (w *World) Unregister(e *Equipment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.equipment, e.ID)
	for ip, other := range w.byIPv4 {
		if other == e {
			delete(w.byIPv4, ip)
		}
	}
}

// ClearRegistry empties the registry. The only other mutator besides
// equipment construction/destruction, per the shared-resource policy.
func (w *World) ClearRegistry() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.equipment = make(map[string]*Equipment)
	w.byIPv4 = make(map[addr.IPv4]*Equipment)
}

// IndexIPv4 associates ip with e for PeerByIPv4 lookups. Called by end
// hosts and routers whenever an interface gains an IPv4 address.
func (w *World) IndexIPv4(ip addr.IPv4, e *Equipment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.byIPv4[ip] = e
}

// PeerByIPv4 finds the equipment owning ip, if any. Used by higher
// simulations (e.g. a router synthesizing ICMP errors attributed to a
// particular device) for address-based peer lookup.
func (w *World) PeerByIPv4(ip addr.IPv4) (*Equipment, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byIPv4[ip]
	return e, ok
}

// ByID returns the equipment registered under id, if any.
func (w *World) ByID(id string) (*Equipment, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.equipment[id]
	return e, ok
}

// All returns a snapshot slice of every registered equipment.
func (w *World) All() []*Equipment {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Equipment, 0, len(w.equipment))
	for _, e := range w.equipment {
		out = append(out, e)
	}
	return out
}
