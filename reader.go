package mgsp

// readFrame reads one message from the transport. The wire format is
// ambiguous: a first byte above 4 is taken as an explicit message length
// (clamped to FrameLength), anything else means the standard 37-byte frame.
// Most command bytes exceed 4, so e.g. a 0x10 acknowledgement reads back as
// 16 bytes; that is how the panels behave and is preserved as-is. A nil
// result with a nil error means nothing arrived. Short reads are returned
// short for the caller to reject via checksum.
func readFrame(t Transport) ([]byte, error) {
	var first [1]byte
	n, err := t.Read(first[:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	length := FrameLength
	if first[0] > 4 {
		length = int(first[0])
		if length > FrameLength {
			length = FrameLength
		}
	}

	frame := make([]byte, length)
	frame[0] = first[0]
	got := 1
	for got < length {
		n, err := t.Read(frame[got:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		got += n
	}
	return frame[:got], nil
}
