package pdu

// ComputeIPv4Checksum computes the one's-complement sum of the 10
// 16-bit header words of pkt's (no-options, IHL=5) header, with the
// checksum field treated as zero, per RFC 791 section 3.1.
// Since pdu models headers semantically rather than as a byte buffer,
// the 10 words are synthesized directly from the struct fields in the
// same order they would appear on the wire.
func ComputeIPv4Checksum(pkt IPv4Packet) uint16 {
	words := ipv4HeaderWords(pkt)
	var sum uint32
	for _, w := range words {
		sum += uint32(w)
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// VerifyIPv4Checksum reports whether pkt's stored HeaderChecksum
// matches ComputeIPv4Checksum(pkt) with the checksum field zeroed.
// The core never calls this on receive; it is exposed for consumers
// (router ACLs, tests) that want to check it.
func VerifyIPv4Checksum(pkt IPv4Packet) bool {
	want := pkt.HeaderChecksum
	pkt.HeaderChecksum = 0
	return ComputeIPv4Checksum(pkt) == want
}

func ipv4HeaderWords(pkt IPv4Packet) [10]uint16 {
	src := pkt.SourceIP.Uint32()
	dst := pkt.DestinationIP.Uint32()
	return [10]uint16{
		uint16(pkt.Version())<<12 | uint16(pkt.IHL)<<8 | uint16(pkt.ToS),
		pkt.TotalLength,
		pkt.Identification,
		uint16(pkt.Flags)<<13 | pkt.FragmentOffset,
		uint16(pkt.TTL)<<8 | uint16(pkt.Protocol),
		0, // checksum field, always zeroed for this computation
		uint16(src >> 16),
		uint16(src),
		uint16(dst >> 16),
		uint16(dst),
	}
}
