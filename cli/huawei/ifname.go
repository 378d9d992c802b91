package huawei

import "strings"

// interfacePrefixes maps every accepted abbreviation (longest first
// within a family) to the canonical port name VRP addresses it by.
var interfacePrefixes = []struct {
	abbrev    string
	canonical string
}{
	{"gigabitethernet", "GigabitEthernet"},
	{"gige", "GigabitEthernet"},
	{"gi", "GigabitEthernet"},
	{"ge", "GigabitEthernet"},
	{"ethernet", "Ethernet"},
	{"eth", "Ethernet"},
	{"e", "Ethernet"},
}

// resolveInterfaceName normalizes a CLI interface token (e.g.
// "GE0/0/1", "gi0/0/1", "Ethernet0/0/1") into the canonical port name
// the switch was configured with.
func resolveInterfaceName(token string) (name string, ok bool) {
	lower := strings.ToLower(token)
	for _, p := range interfacePrefixes {
		if !strings.HasPrefix(lower, p.abbrev) {
			continue
		}
		suffix := token[len(p.abbrev):]
		if suffix == "" {
			continue
		}
		return p.canonical + suffix, true
	}
	return "", false
}
