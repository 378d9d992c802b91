package equipment

import (
	"log/slog"

	"github.com/netsimlab/netsim/iface"
	"github.com/netsimlab/netsim/netlog"
)

// Role distinguishes the kind of device an Equipment represents.
// Behavior specific to a role (switch MAC learning, host ARP/routing,
// router forwarding) lives in the corresponding package and is
// composed onto Equipment rather than mixed in, per the
// composition-over-mixin-factory approach this codebase otherwise
// follows.
type Role uint8

const (
	RoleHub Role = iota
	RoleSwitch
	RoleHost
	RoleRouter
)

func (r Role) String() string {
	switch r {
	case RoleHub:
		return "hub"
	case RoleSwitch:
		return "switch"
	case RoleHost:
		return "host"
	case RoleRouter:
		return "router"
	default:
		return "unknown"
	}
}

// PowerState is the device's simulated power state; switching it off
// and back on is what drives DRAM-loss semantics in the switch engine.
type PowerState uint8

const (
	PowerOn PowerState = iota
	PowerOff
)

// logger is the embeddable helper this codebase's lower layers use to
// route structured events through both the World bus and a
// console-facing slog.Logger, instead of calling either directly at
// every call site.
type logger struct {
	bus    *netlog.Bus
	source string
}

func (l logger) debug(event, msg string, attrs ...slog.Attr) {
	if l.bus != nil {
		l.bus.Debug(l.source, event, msg, attrs...)
	}
}
func (l logger) info(event, msg string, attrs ...slog.Attr) {
	if l.bus != nil {
		l.bus.Info(l.source, event, msg, attrs...)
	}
}
func (l logger) warn(event, msg string, attrs ...slog.Attr) {
	if l.bus != nil {
		l.bus.Warn(l.source, event, msg, attrs...)
	}
}
func (l logger) error(event, msg string, attrs ...slog.Attr) {
	if l.bus != nil {
		l.bus.Error(l.source, event, msg, attrs...)
	}
}

// Equipment is the abstract base every device type embeds: identity,
// position, power state, and the port map. The role-specific logic
// layered on top installs its frame handler on each port it adds
// (iface.Port.SetHandler).
type Equipment struct {
	ID       string
	Name     string
	Hostname string
	Position string
	Power    PowerState
	Role     Role

	World *World

	ports map[string]*iface.Port

	logger
}

// NewEquipment registers a new Equipment of the given role into w and
// returns it. Registration happens here, at construction, matching
// the lifecycle the registry's shared-resource policy describes.
func NewEquipment(w *World, id, name string, role Role) *Equipment {
	e := &Equipment{
		ID:       id,
		Name:     name,
		Hostname: name,
		Power:    PowerOn,
		Role:     role,
		World:    w,
		ports:    make(map[string]*iface.Port),
		logger:   logger{bus: w.Bus, source: id},
	}
	w.register(e)
	return e
}

// Destroy removes e from its World's registry.
func (e *Equipment) Destroy() {
	e.World.Unregister(e)
}

// Debug, Info, Warn, and Error publish a structured event on this
// equipment's World bus. Exported so role-specific packages built on
// top of Equipment (switchengine, host, router, ...) can log through
// the same embeddable helper without reaching into unexported state.
func (e *Equipment) Debug(event, msg string, attrs ...slog.Attr) { e.logger.debug(event, msg, attrs...) }
func (e *Equipment) Info(event, msg string, attrs ...slog.Attr)  { e.logger.info(event, msg, attrs...) }
func (e *Equipment) Warn(event, msg string, attrs ...slog.Attr)  { e.logger.warn(event, msg, attrs...) }
func (e *Equipment) Error(event, msg string, attrs ...slog.Attr) { e.logger.error(event, msg, attrs...) }

// AddPort creates and attaches a new port under name, returning it.
func (e *Equipment) AddPort(name string) *iface.Port {
	p := iface.NewPort(name, [6]byte{}, e.World.Bus)
	e.ports[name] = p
	return p
}

// Port looks up a previously added port by name.
func (e *Equipment) Port(name string) (*iface.Port, bool) {
	p, ok := e.ports[name]
	return p, ok
}

// Ports returns every port keyed by name. Callers must not retain the
// returned map past structural changes to the equipment's port set.
func (e *Equipment) Ports() map[string]*iface.Port {
	return e.ports
}

// PowerCycle sets the power state (on=false simulates a power-down,
// on=true a power-up) and logs the transition; role-specific DRAM-loss behavior
// is implemented by the owning device (e.g. switchengine.Switch),
// which observes this transition via PowerState.
func (e *Equipment) PowerCycle(on bool) {
	if on {
		e.Power = PowerOn
		e.info("equipment:power-on", "equipment powered on")
	} else {
		e.Power = PowerOff
		e.info("equipment:power-off", "equipment powered off")
	}
}
