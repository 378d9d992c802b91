package dhcp

import "github.com/netsimlab/netsim/addr"

// Pool is a named block of addresses a Server can offer, plus the
// options it hands out alongside a lease.
type Pool struct {
	Name                 string
	Network              addr.IPv4
	Mask                 addr.SubnetMask
	DefaultRouter        addr.IPv4
	HasDefaultRouter     bool
	DNSServers           []addr.IPv4
	DomainName           string
	LeaseDurationSeconds int64
	DenyPatterns         []string

	excluded []ExcludedRange
}

// ExcludedRange is an inclusive range of addresses within a pool's
// network that the server will never offer, independent of whether
// they're currently bound.
type ExcludedRange struct {
	From, To addr.IPv4
}

// Exclude adds an excluded range to the pool.
func (p *Pool) Exclude(from, to addr.IPv4) {
	p.excluded = append(p.excluded, ExcludedRange{From: from, To: to})
}

func (p *Pool) isExcluded(ip addr.IPv4) bool {
	v := ip.Uint32()
	for _, r := range p.excluded {
		if v >= r.From.Uint32() && v <= r.To.Uint32() {
			return true
		}
	}
	return false
}

// usable reports whether the pool is eligible to serve at all: both
// network and mask must be configured.
func (p *Pool) usable() bool {
	return p.Network != (addr.IPv4{}) && p.Mask != (addr.SubnetMask{})
}

// BindingType distinguishes how a binding entered the table.
type BindingType uint8

const (
	BindingDynamic BindingType = iota
	BindingStatic
)

func (t BindingType) String() string {
	if t == BindingStatic {
		return "static"
	}
	return "dynamic"
}

// Binding is one allocated (or reserved) address.
type Binding struct {
	IPAddress       addr.IPv4
	ClientID        string
	LeaseStart      int64
	LeaseExpiration int64
	PoolName        string
	Type            BindingType
}
