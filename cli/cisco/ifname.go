package cisco

import "strings"

// interfacePrefixes maps every accepted abbreviation (longest first
// within a family so e.g. "fastethernet" isn't shadowed by "fas") to
// the canonical name this shell uses as the underlying port name.
var interfacePrefixes = []struct {
	abbrev    string
	canonical string
}{
	{"fastethernet", "FastEthernet"},
	{"fastether", "FastEthernet"},
	{"fasteth", "FastEthernet"},
	{"fas", "FastEthernet"},
	{"fa", "FastEthernet"},
	{"gigabitethernet", "GigabitEthernet"},
	{"gigabit", "GigabitEthernet"},
	{"gig", "GigabitEthernet"},
	{"gi", "GigabitEthernet"},
	{"ethernet", "Ethernet"},
	{"eth", "eth"},
}

// resolveInterfaceName normalizes a CLI interface token (e.g. "fa0/1",
// "Gi0/1", "eth0") into the canonical port name the switch was
// configured with. It returns ok=false if token carries no recognized
// prefix or no numeric slot/port suffix.
func resolveInterfaceName(token string) (name string, ok bool) {
	lower := strings.ToLower(token)
	for _, p := range interfacePrefixes {
		if !strings.HasPrefix(lower, p.abbrev) {
			continue
		}
		suffix := token[len(p.abbrev):]
		if suffix == "" || suffix[0] < '0' || suffix[0] > '9' {
			continue
		}
		if p.canonical == "eth" {
			return "eth" + suffix, true
		}
		return p.canonical + suffix, true
	}
	return "", false
}
