package switchengine

import "github.com/netsimlab/netsim/addr"

// MACEntryType distinguishes learned (dynamic) entries, subject to
// aging, from administratively configured (static) ones, which are
// immune to it.
type MACEntryType uint8

const (
	MACDynamic MACEntryType = iota
	MACStatic
)

func (t MACEntryType) String() string {
	if t == MACStatic {
		return "STATIC"
	}
	return "DYNAMIC"
}

// macKey identifies a MAC table entry by the VLAN it was learned on
// plus the address itself; the same MAC can appear in different VLANs
// independently.
type macKey struct {
	VID uint16
	MAC addr.MAC
}

// macEntry is one row of the forwarding table.
type macEntry struct {
	Port         string
	Type         MACEntryType
	AgeRemaining float64 // seconds; unused for static entries
}

const defaultDynamicAgeSeconds = 300

// AgingTime returns the current dynamic-entry aging interval in
// seconds.
func (s *Switch) AgingTime() int {
	if s.agingSeconds == 0 {
		return defaultDynamicAgeSeconds
	}
	return s.agingSeconds
}

// SetAgingTime configures the dynamic-entry aging interval, per
// "mac address-table aging-time <seconds>". It does not retroactively
// change entries already counting down from the previous setting.
func (s *Switch) SetAgingTime(seconds int) {
	s.agingSeconds = seconds
}

// learn records src as reachable via ingressPort on vid, per the
// switch engine's MAC-learning step. Returns true if a MAC-move was
// detected (an existing dynamic entry pointed at a different port).
func (s *Switch) learn(vid uint16, src addr.MAC, ingressPort string) (moved bool) {
	key := macKey{VID: vid, MAC: src}
	existing, ok := s.macTable[key]
	if ok && existing.Type == MACStatic {
		return false
	}
	if ok && existing.Type == MACDynamic && existing.Port != ingressPort {
		moved = true
	}
	s.macTable[key] = &macEntry{
		Port:         ingressPort,
		Type:         MACDynamic,
		AgeRemaining: float64(s.AgingTime()),
	}
	return moved
}

// lookup finds the egress port learned for (vid, dst), if any.
func (s *Switch) lookup(vid uint16, dst addr.MAC) (port string, ok bool) {
	e, ok := s.macTable[macKey{VID: vid, MAC: dst}]
	if !ok {
		return "", false
	}
	return e.Port, true
}

// ageSweep subtracts elapsedSeconds from every dynamic entry's
// remaining age, evicting any that reach zero or below. Static
// entries are immune. Called once per second while the switch is
// powered on.
func (s *Switch) ageSweep(elapsedSeconds float64) {
	for key, e := range s.macTable {
		if e.Type != MACDynamic {
			continue
		}
		e.AgeRemaining -= elapsedSeconds
		if e.AgeRemaining <= 0 {
			delete(s.macTable, key)
		}
	}
}

// addStaticMAC installs a permanent entry, immune to aging.
func (s *Switch) addStaticMAC(vid uint16, mac addr.MAC, port string) {
	s.macTable[macKey{VID: vid, MAC: mac}] = &macEntry{Port: port, Type: MACStatic}
}

// MACTableEntry is a read-only row of the forwarding table, exported
// for "show mac address-table" rendering.
type MACTableEntry struct {
	VID  uint16
	MAC  addr.MAC
	Port string
	Type MACEntryType
}

// MACTableSnapshot returns every current MAC table entry.
func (s *Switch) MACTableSnapshot() []MACTableEntry {
	out := make([]MACTableEntry, 0, len(s.macTable))
	for key, e := range s.macTable {
		out = append(out, MACTableEntry{VID: key.VID, MAC: key.MAC, Port: e.Port, Type: e.Type})
	}
	return out
}
