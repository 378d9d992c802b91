package equipment

import "testing"

func TestNewEquipmentRegistersInWorld(t *testing.T) {
	w := NewWorld()
	e := NewEquipment(w, "sw1", "Switch1", RoleSwitch)
	got, ok := w.ByID("sw1")
	if !ok || got != e {
		t.Fatal("expected equipment to be discoverable by id after construction")
	}
}

func TestDestroyRemovesFromWorld(t *testing.T) {
	w := NewWorld()
	e := NewEquipment(w, "h1", "Host1", RoleHost)
	e.Destroy()
	if _, ok := w.ByID("h1"); ok {
		t.Fatal("expected equipment to be gone after Destroy")
	}
}

func TestClearRegistryEmptiesAll(t *testing.T) {
	w := NewWorld()
	NewEquipment(w, "a", "A", RoleHost)
	NewEquipment(w, "b", "B", RoleHost)
	w.ClearRegistry()
	if len(w.All()) != 0 {
		t.Fatal("expected registry to be empty after ClearRegistry")
	}
}

func TestAddPortAndLookup(t *testing.T) {
	w := NewWorld()
	e := NewEquipment(w, "sw1", "Switch1", RoleSwitch)
	p := e.AddPort("Fa0/1")
	got, ok := e.Port("Fa0/1")
	if !ok || got != p {
		t.Fatal("expected to find the port just added")
	}
}

func TestPowerCycleTransitionsState(t *testing.T) {
	w := NewWorld()
	e := NewEquipment(w, "sw1", "Switch1", RoleSwitch)
	e.PowerCycle(false)
	if e.Power != PowerOff {
		t.Fatal("expected PowerOff after PowerCycle(false)")
	}
	e.PowerCycle(true)
	if e.Power != PowerOn {
		t.Fatal("expected PowerOn after PowerCycle(true)")
	}
}
