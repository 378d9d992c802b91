// Package huawei implements the Huawei VRP-style vendor shell over a
// switchengine.Switch: the {user, system, interface, vlan} mode FSM
// and its per-mode command tries. It mirrors cli/cisco's structure
// (Session/Mode/trieForMode/dispatch) with VRP's own keyword set
// (system-view/quit/return, display, undo, sysname, port link-type)
// in place of Cisco IOS's.
package huawei

import (
	"strings"

	"github.com/netsimlab/netsim/clitrie"
	"github.com/netsimlab/netsim/switchengine"
)

// Mode is a position in the VRP shell's mode FSM.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeSystem
	ModeInterface
	ModeVlan
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModeSystem:
		return "system"
	case ModeInterface:
		return "interface"
	case ModeVlan:
		return "vlan"
	default:
		return "unknown"
	}
}

// Session is one operator's connection to a switch.
type Session struct {
	Switch *switchengine.Switch

	Mode Mode

	currentIface string
	currentVlan  uint16
}

// NewSession creates a session starting in user view.
func NewSession(sw *switchengine.Switch) *Session {
	return &Session{Switch: sw, Mode: ModeUser}
}

// Prompt renders the mode-appropriate VRP prompt, e.g. "<Switch>" in
// user view or "[Switch-GigabitEthernet0/0/1]" in interface view.
func (s *Session) Prompt() string {
	name := s.Switch.Hostname
	switch s.Mode {
	case ModeUser:
		return "<" + name + ">"
	case ModeSystem:
		return "[" + name + "]"
	case ModeInterface:
		return "[" + name + "-" + s.currentIface + "]"
	case ModeVlan:
		return "[" + name + "-vlan" + itoa(int(s.currentVlan)) + "]"
	default:
		return "<" + name + ">"
	}
}

// Execute runs one command line against the session's current mode.
// VRP's `display ... | include/exclude <pattern>` filtering reuses the
// same pipe-clause shape as the Cisco shell, implemented independently
// here (see pipe.go) since the two vendor packages share no code.
func (s *Session) Execute(line string) string {
	command, filter, hasFilter := splitPipe(line)
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return ""
	}

	out := s.dispatch(tokens)
	if hasFilter {
		out = applyFilter(out, filter)
	}
	return out
}

func (s *Session) dispatch(tokens []string) string {
	tr := s.trieForMode()
	m := tr.Match(tokens)
	switch m.Kind {
	case clitrie.MatchOK:
		return m.Action(s, m.Args)
	case clitrie.MatchAmbiguous:
		return "Error: Ambiguous command found at '^1' position."
	case clitrie.MatchIncomplete:
		return "Error: Incomplete command found at '^1' position."
	default:
		return "Error: Unrecognized command found at '^1' position."
	}
}

func (s *Session) trieForMode() *clitrie.Trie[*Session] {
	switch s.Mode {
	case ModeUser:
		return userTrie
	case ModeSystem:
		return systemTrie
	case ModeInterface:
		return interfaceTrie
	case ModeVlan:
		return vlanTrie
	default:
		return userTrie
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
