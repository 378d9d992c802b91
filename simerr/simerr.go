// Package simerr defines the error taxonomy shared across the
// simulator: the kind of failure (not a type per kind), so callers can
// branch on Kind() while errors.Is/As keep working against the
// wrapped cause the way the rest of the stdlib expects.
package simerr

import "fmt"

// Kind classifies a simulator error into one of the six families the
// vendor CLIs and the rest of the engine need to tell apart.
type Kind uint8

const (
	_ Kind = iota // non-initialized kind
	// ParseError indicates malformed MAC/IP/mask/hex input.
	ParseError
	// ValidationError indicates an out-of-range value (MAC octet,
	// VLAN id, cable length, MTU, port speed).
	ValidationError
	// ConfigurationError indicates an unreachable next-hop, a VLAN-1
	// deletion attempt, an unknown interface, or an ambiguous/
	// incomplete CLI command.
	ConfigurationError
	// LinkError indicates a send attempted on a down/disconnected
	// port, a down cable, or a packet-loss event.
	LinkError
	// ProtocolError indicates an ARP resolution timeout, a DHCP NAK,
	// no DHCP offers received, or an IPv4 checksum mismatch on
	// receive.
	ProtocolError
	// PolicyError indicates a port-security violation, an
	// STP-blocked egress, or a trunk-disallowed VLAN.
	PolicyError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case ValidationError:
		return "ValidationError"
	case ConfigurationError:
		return "ConfigurationError"
	case LinkError:
		return "LinkError"
	case ProtocolError:
		return "ProtocolError"
	case PolicyError:
		return "PolicyError"
	default:
		return "UnknownError"
	}
}

// Error is a simulator error tagged with a Kind and wrapping an
// optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an *Error of the given kind with message msg.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an *Error of the given kind wrapping cause, with an
// additional msg prefix.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so
// callers can write `errors.Is(err, simerr.New(simerr.LinkError, ""))`
// -- or more idiomatically, compare with simerr.KindOf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error,
// returning ok=false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var se *Error
	for err != nil {
		if e, match := err.(*Error); match {
			se = e
			break
		}
		u, unwrappable := err.(interface{ Unwrap() error })
		if !unwrappable {
			break
		}
		err = u.Unwrap()
	}
	if se == nil {
		return 0, false
	}
	return se.Kind, true
}
