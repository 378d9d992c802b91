package netlog

import "testing"

func TestSubscribeFilterAndUnsubscribe(t *testing.T) {
	b := NewBus(nil, 0)
	var got []Event
	tok := b.Subscribe(Filter{Source: "sw1", MinLevel: LevelWarn}, func(e Event) {
		got = append(got, e)
	})

	b.Info("sw1", "port.up", "port came up")
	b.Warn("sw2", "port.down", "wrong source")
	b.Warn("sw1", "port.down", "port went down")

	if len(got) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(got))
	}
	if got[0].EventName != "port.down" {
		t.Fatalf("unexpected event: %+v", got[0])
	}

	b.Unsubscribe(tok)
	b.Warn("sw1", "port.down", "after unsubscribe")
	if len(got) != 1 {
		t.Fatalf("expected no more events after unsubscribe, got %d", len(got))
	}
}

func TestRingBufferHalvesOnOverflow(t *testing.T) {
	b := NewBus(nil, 4)
	for i := 0; i < 5; i++ {
		b.Info("h1", "test.event", "msg")
	}
	snap := b.Snapshot()
	if len(snap) == 0 || len(snap) > 4 {
		t.Fatalf("unexpected ring size %d", len(snap))
	}
}

func TestEventPrefixFilter(t *testing.T) {
	b := NewBus(nil, 0)
	var n int
	b.Subscribe(Filter{EventPrefix: "dhcp."}, func(Event) { n++ })
	b.Info("h1", "dhcp.bound", "bound")
	b.Info("h1", "arp.reply", "reply")
	if n != 1 {
		t.Fatalf("expected 1 match, got %d", n)
	}
}
