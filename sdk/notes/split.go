package notes

// Split breaks a transport packet into individual messages. Each status byte
// (high bit set) starts a new message; leading data bytes without a status
// are dropped. Running status is not reconstructed.
func Split(packet []byte) [][]byte {
	var out [][]byte
	start := -1
	for i, b := range packet {
		if b&0x80 == 0 {
			continue
		}
		if start >= 0 {
			out = append(out, packet[start:i])
		}
		start = i
	}
	if start >= 0 {
		out = append(out, packet[start:])
	}
	return out
}
