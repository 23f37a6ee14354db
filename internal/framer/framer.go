package framer

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Status reports what a Framer needs next after a Poll call.
type Status int

const (
	// StatusPoll means no complete packet is available; wait for the
	// descriptor to become readable again before calling Poll.
	StatusPoll Status = iota

	// StatusMore means a packet was decoded and the caller should call
	// Poll again immediately, since additional already-buffered packets
	// may be waiting on the same descriptor.
	StatusMore

	// StatusFinal means the descriptor is done: it was closed, errored,
	// or sent a malformed length prefix, and should be removed from the
	// reactor.
	StatusFinal
)

// stackBufferSize mirrors the source's BUFSIZ-sized stack buffer: most
// packets fit here, so only oversized or split-across-Poll-calls packets
// need a heap allocation.
const stackBufferSize = 8192

type lengthState int

const (
	lengthState0 lengthState = iota
	lengthState1
	lengthState2
	lengthState3
	lengthState4
	lengthOverflow
	dataState
)

// Framer decodes one non-blocking descriptor's packet stream. It is not
// safe for concurrent use; the reactor drives at most one goroutine
// through a given connection's Framer at a time.
type Framer struct {
	maxPacketSize int

	state      lengthState
	packetSize int
	readSize   int
	overflow   []byte
	stack      [stackBufferSize]byte
}

// New returns a Framer with no packet size limit. Use SetMaxPacketSize to
// bound it.
func New() *Framer { return &Framer{state: lengthState0} }

// SetMaxPacketSize bounds the declared packet length Poll will accept; 0
// (the default) disables the check.
func (f *Framer) SetMaxPacketSize(n int) { f.maxPacketSize = n }

// MaxPacketSize reports the current bound.
func (f *Framer) MaxPacketSize() int { return f.maxPacketSize }

// Poll reads as much as is immediately available from fd (a non-blocking
// descriptor) and drives the framing state machine forward. It returns
// StatusMore with the decoded packet body as soon as one completes,
// StatusPoll once the descriptor would block, and StatusFinal once the
// descriptor is unusable (closed, errored, or sent a malformed length).
// Once StatusFinal is returned, every subsequent Poll call returns it
// again without touching fd.
func (f *Framer) Poll(fd int) (Status, []byte, error) {
	for {
		switch f.state {
		case lengthState0, lengthState1, lengthState2, lengthState3, lengthState4:
			i := int(f.state - lengthState0)
			var b [1]byte
			n, err := unix.Read(fd, b[:])
			if n != 1 {
				st, p, rerr := classifyReadResult(n, err)
				if st == StatusFinal {
					f.state = lengthOverflow
				}
				return st, p, rerr
			}
			cur := b[0]
			f.packetSize |= (int(cur) & 0x7f) << uint(i*7)
			if cur&0x80 == 0 {
				if f.packetSize == 0 {
					f.state = lengthOverflow
					return StatusFinal, nil, errors.WithStack(ErrZeroLengthPacket)
				}
				if f.maxPacketSize > 0 && f.packetSize > f.maxPacketSize {
					f.state = lengthOverflow
					return StatusFinal, nil, errors.WithStack(ErrPacketTooLarge)
				}
				f.state = dataState
				continue
			}
			if i == 4 {
				f.state = lengthOverflow
				return StatusFinal, nil, errors.WithStack(ErrMalformedLength)
			}
			f.state++
			continue

		case dataState:
			target := f.targetBuffer()
			n, err := unix.Read(fd, target[f.readSize:f.packetSize])
			if n <= 0 {
				st, p, rerr := classifyReadResult(n, err)
				if st == StatusFinal {
					f.state = lengthOverflow
				}
				return st, p, rerr
			}
			f.readSize += n
			if f.readSize < f.packetSize {
				if f.overflow == nil {
					f.overflow = make([]byte, f.packetSize)
					copy(f.overflow, target[:f.readSize])
				}
				return StatusPoll, nil, nil
			}
			packet := append([]byte(nil), target[:f.packetSize]...)
			f.reset()
			return StatusMore, packet, nil

		case lengthOverflow:
			return StatusFinal, nil, nil
		}
	}
}

func (f *Framer) targetBuffer() []byte {
	if f.overflow != nil {
		return f.overflow
	}
	if f.packetSize > stackBufferSize {
		f.overflow = make([]byte, f.packetSize)
		return f.overflow
	}
	return f.stack[:f.packetSize]
}

func (f *Framer) reset() {
	f.state = lengthState0
	f.packetSize = 0
	f.readSize = 0
	f.overflow = nil
}

func classifyReadResult(n int, err error) (Status, []byte, error) {
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return StatusPoll, nil, nil
		}
		return StatusFinal, nil, errors.WithStack(err)
	}
	if n == 0 {
		return StatusFinal, nil, io.EOF
	}
	return StatusPoll, nil, nil
}
