package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netsimlab/netsim/addr"
	"github.com/netsimlab/netsim/host"
)

// cmdPing implements `ping [-c <count>] [-t <ttl>] <destination>`.
func (s *Session) cmdPing(args []string) string {
	count := 4
	var ttl uint8
	var dest string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c":
			if i+1 >= len(args) {
				return "ping: option requires an argument -- 'c'"
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return "ping: invalid count"
			}
			count = n
		case "-t":
			if i+1 >= len(args) {
				return "ping: option requires an argument -- 't'"
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 || n > 255 {
				return "ping: invalid ttl"
			}
			ttl = uint8(n)
		default:
			dest = args[i]
		}
	}
	if dest == "" {
		return "ping: usage error: Destination address required"
	}
	dst, err := addr.ParseIPv4(dest)
	if err != nil {
		return "ping: " + dest + ": Name or service not known"
	}

	results := make([]host.PingResult, count)
	got := make([]bool, count)
	s.Host.Ping(dst, count, ttl, func(seq int, r host.PingResult) {
		results[seq] = r
		got[seq] = true
	})
	s.advance(250, 40, func() bool {
		for _, g := range got {
			if !g {
				return false
			}
		}
		return true
	})

	var b strings.Builder
	fmt.Fprintf(&b, "PING %s (%s) 56(84) bytes of data.\n", dest, dst.String())
	sent, received := 0, 0
	for seq, r := range results {
		sent++
		if !got[seq] {
			fmt.Fprintf(&b, "Request timeout for icmp_seq %d\n", seq)
			continue
		}
		if r.Success {
			received++
			fmt.Fprintf(&b, "64 bytes from %s: icmp_seq=%d ttl=%d time=%.1f ms\n", r.FromIP.String(), seq, r.TTL, r.RTTMs)
			continue
		}
		if r.Error != "" {
			fmt.Fprintf(&b, "%s\n", r.Error)
		} else {
			fmt.Fprintf(&b, "Request timeout for icmp_seq %d\n", seq)
		}
	}
	loss := 100.0
	if sent > 0 {
		loss = 100.0 * float64(sent-received) / float64(sent)
	}
	fmt.Fprintf(&b, "\n--- %s ping statistics ---\n", dest)
	fmt.Fprintf(&b, "%d packets transmitted, %d received, %.0f%% packet loss\n", sent, received, loss)
	return strings.TrimRight(b.String(), "\n")
}
