// Package cisco implements the Cisco IOS-style vendor shell over a
// switchengine.Switch: the {user, privileged, config, config-if,
// config-vlan} mode FSM, its per-mode command tries, interface-name
// abbreviation resolution, and pipe filtering.
package cisco

import (
	"strings"

	"github.com/netsimlab/netsim/clitrie"
	"github.com/netsimlab/netsim/switchengine"
)

// Mode is a position in the Cisco shell's mode FSM.
type Mode uint8

const (
	ModeUser Mode = iota
	ModePrivileged
	ModeConfig
	ModeConfigIf
	ModeConfigVlan
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModePrivileged:
		return "privileged"
	case ModeConfig:
		return "config"
	case ModeConfigIf:
		return "config-if"
	case ModeConfigVlan:
		return "config-vlan"
	default:
		return "unknown"
	}
}

// Session is one operator's connection to a switch: current mode plus
// whatever context that mode needs (the interface or VLAN being
// configured).
type Session struct {
	Switch *switchengine.Switch

	Mode Mode

	currentIface string
	currentVlan  uint16

	ifaceRangeQueue []string // remaining interfaces for "interface range"
}

// NewSession creates a session starting in user mode.
func NewSession(sw *switchengine.Switch) *Session {
	return &Session{Switch: sw, Mode: ModeUser}
}

// Prompt renders the mode-appropriate Cisco prompt, e.g. "Switch>" or
// "Switch(config-if)#".
func (s *Session) Prompt() string {
	name := s.Switch.Hostname
	switch s.Mode {
	case ModeUser:
		return name + ">"
	case ModePrivileged:
		return name + "#"
	case ModeConfig:
		return name + "(config)#"
	case ModeConfigIf:
		return name + "(config-if)#"
	case ModeConfigVlan:
		return name + "(config-vlan)#"
	default:
		return name + "#"
	}
}

// Execute runs one command line against the session's current mode,
// returning the text the shell would print. A line containing a pipe
// (`| include foo`, `| exclude bar`, `| grep`/`findstr` as include
// aliases) filters the underlying command's output line-by-line,
// case-insensitively, before returning it.
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
		return "% Ambiguous command: \"" + strings.Join(tokens, " ") + "\""
	case clitrie.MatchIncomplete:
		return "% Incomplete command."
	default:
		return "% Invalid input detected at '^' marker."
	}
}

func (s *Session) trieForMode() *clitrie.Trie[*Session] {
	switch s.Mode {
	case ModeUser:
		return userTrie
	case ModePrivileged:
		return privilegedTrie
	case ModeConfig:
		return configTrie
	case ModeConfigIf:
		return configIfTrie
	case ModeConfigVlan:
		return configVlanTrie
	default:
		return privilegedTrie
	}
}
