package clitrie

import (
	"reflect"
	"testing"
)

type ctx struct{ out string }

func noop(ctx *ctx, args []string) string { return "ok" }

func buildShowTrie() *Trie[*ctx] {
	t := New[*ctx]()
	t.Register([]string{"show", "version"}, "show version info", noop)
	t.Register([]string{"show", "vlan"}, "show vlan database", noop)
	t.Register([]string{"show", "vlan", "brief"}, "show brief vlan table", noop)
	t.Register([]string{"show", "mac", "address-table"}, "show MAC table", noop)
	t.Register([]string{"show", "interfaces"}, "show interfaces", noop)
	t.Register([]string{"show", "spanning-tree"}, "show STP state", noop)
	t.Register([]string{"configure", "terminal"}, "enter config mode", noop)
	t.RegisterGreedy([]string{"hostname"}, "set device hostname", noop)
	return t
}

func TestMatchOKOnExactPath(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"show", "version"})
	if m.Kind != MatchOK || m.Action == nil {
		t.Fatalf("expected ok match, got %+v", m)
	}
}

func TestMatchUniquePrefixResolvesLikeCiscoConfT(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"conf", "t"})
	if m.Kind != MatchOK {
		t.Fatalf("expected 'conf t' to resolve to configure terminal, got %+v", m)
	}
}

func TestMatchBareShowIsAmbiguousAmongManyShowCommands(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"sh"})
	if m.Kind != MatchAmbiguous {
		t.Fatalf("expected ambiguous match on bare 'sh', got %+v", m)
	}
}

func TestMatchShowVerResolvesToShowVersion(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"show", "ver"})
	if m.Kind != MatchOK {
		t.Fatalf("expected 'show ver' to resolve uniquely, got %+v", m)
	}
}

func TestMatchAmbiguousWhenTwoSiblingsSharePrefix(t *testing.T) {
	tr := New[*ctx]()
	tr.Register([]string{"write"}, "write running config", noop)
	tr.Register([]string{"wr", "not", "a", "real", "path"}, "decoy", noop)
	m := tr.Match([]string{"w"})
	if m.Kind != MatchAmbiguous {
		t.Fatalf("expected ambiguous between write/wr, got %+v", m)
	}
	want := []string{"wr", "write"}
	if !reflect.DeepEqual(m.Candidates, want) {
		t.Fatalf("expected candidates %v, got %v", want, m.Candidates)
	}
}

func TestMatchIncompleteOnSingleChildDeadEnd(t *testing.T) {
	tr := New[*ctx]()
	tr.Register([]string{"clear", "counters"}, "clear interface counters", noop)
	m := tr.Match([]string{"clear"})
	if m.Kind != MatchIncomplete {
		t.Fatalf("expected incomplete on single-child dead end, got %+v", m)
	}
}

func TestMatchInvalidReportsFirstUnknownTokenPosition(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"show", "bogus", "thing"})
	if m.Kind != MatchInvalid || m.Position != 1 {
		t.Fatalf("expected invalid at position 1, got %+v", m)
	}
}

func TestGreedyActionConsumesTrailingFreeformArgs(t *testing.T) {
	tr := buildShowTrie()
	m := tr.Match([]string{"hostname", "Switch-3750"})
	if m.Kind != MatchOK || !reflect.DeepEqual(m.Args, []string{"hostname", "Switch-3750"}) {
		t.Fatalf("expected greedy match to return full trailing args, got %+v", m)
	}
}

func TestTabCompleteReturnsLongestUnambiguousExtension(t *testing.T) {
	tr := buildShowTrie()
	completion, ok := tr.TabComplete([]string{"show", "ver"})
	if !ok || completion != "version" {
		t.Fatalf("expected tab completion 'version', got %q ok=%v", completion, ok)
	}
}

func TestTabCompleteFailsOnAmbiguousLastToken(t *testing.T) {
	tr := buildShowTrie()
	_, ok := tr.TabComplete([]string{"show", "v"})
	if ok {
		t.Fatalf("expected tab completion to fail on ambiguous 'v' (vlan vs version)")
	}
}

func TestGetCompletionsListsKeywordAndDescription(t *testing.T) {
	tr := buildShowTrie()
	completions := tr.GetCompletions([]string{"show", "vl"})
	if len(completions) != 1 || completions[0].Keyword != "vlan" {
		t.Fatalf("expected a single 'vlan' completion, got %+v", completions)
	}
	if completions[0].Description != "show vlan database" {
		t.Fatalf("unexpected description: %q", completions[0].Description)
	}
}

func TestGetCompletionsOnEmptyPrefixListsAllChildren(t *testing.T) {
	tr := New[*ctx]()
	tr.Register([]string{"show", "vlan"}, "vlan", noop)
	tr.Register([]string{"show", "version"}, "version", noop)
	completions := tr.GetCompletions([]string{"show", ""})
	if len(completions) != 2 {
		t.Fatalf("expected two completions under show, got %+v", completions)
	}
}
