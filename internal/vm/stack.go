package vm

// callStack holds subroutine return addresses. It grows as needed.
type callStack struct {
	addrs []uint16
}

func (s *callStack) push(addr uint16) {
	s.addrs = append(s.addrs, addr)
}

func (s *callStack) pop() (uint16, bool) {
	n := len(s.addrs)
	if n == 0 {
		return 0, false
	}

	addr := s.addrs[n-1]
	s.addrs = s.addrs[:n-1]
	return addr, true
}

func (s *callStack) len() int {
	return len(s.addrs)
}

func (s *callStack) reset() {
	s.addrs = s.addrs[:0]
}
