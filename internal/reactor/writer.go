package reactor

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type nodeKind int

const (
	nodeWrite nodeKind = iota
	nodeSendfile
)

type writeNode struct {
	kind nodeKind

	buf []byte // nodeWrite: unsent tail of an owned copy of the buffer

	sendFd     int // nodeSendfile
	sendOffset int64
	sendSize   int
}

// WriteQueue decorates a writable file descriptor with a FIFO of pending
// output: plain byte buffers and zero-copy sendfile regions. A write that
// cannot complete in one non-blocking syscall is copied (for buffers) or
// recorded by offset (for sendfile) and retried from HandleWrite once the
// descriptor reports EventOut again.
//
// WriteQueue does not register itself with a Reactor; Write and
// WriteSendfile report queued=true when the caller must arm EventOut on
// its descriptor (via Reactor.UpdateEvent) to get a follow-up HandleWrite
// call.
type WriteQueue struct {
	fd             int
	nodes          []writeNode
	closeIndicated bool
}

// NewWriteQueue returns a queue that writes to fd.
func NewWriteQueue(fd int) *WriteQueue { return &WriteQueue{fd: fd} }

// Write sends buf, copying and enqueuing whatever the non-blocking
// descriptor didn't immediately accept. A fatal kernel error on the
// immediate attempt wraps ErrPeerClosed; the caller must tear the
// descriptor down the same way a HandleWrite StatusFinal would.
func (q *WriteQueue) Write(buf []byte) (queued bool, err error) {
	if len(buf) == 0 || q.closeIndicated {
		return false, nil
	}
	if len(q.nodes) > 0 {
		q.enqueueWrite(buf)
		return true, nil
	}
	n, werr := unix.Write(q.fd, buf)
	if werr == nil && n == len(buf) {
		return false, nil
	}
	if werr != nil {
		if errors.Is(werr, unix.EAGAIN) {
			n = 0
		} else {
			return false, errors.Wrap(ErrPeerClosed, werr.Error())
		}
	}
	q.enqueueWrite(buf[n:])
	return true, nil
}

func (q *WriteQueue) enqueueWrite(tail []byte) {
	owned := append([]byte(nil), tail...)
	q.nodes = append(q.nodes, writeNode{kind: nodeWrite, buf: owned})
}

// WriteSendfile queues a zero-copy transfer of size bytes from sendFd
// starting at offset. Like Write, it attempts the syscall immediately
// and only enqueues the remainder.
func (q *WriteQueue) WriteSendfile(sendFd int, offset int64, size int) (queued bool, err error) {
	if size == 0 || q.closeIndicated {
		return false, nil
	}
	if len(q.nodes) > 0 {
		q.nodes = append(q.nodes, writeNode{kind: nodeSendfile, sendFd: sendFd, sendOffset: offset, sendSize: size})
		return true, nil
	}
	off := offset
	n, werr := unix.Sendfile(q.fd, sendFd, &off, size)
	if werr == nil && n == size {
		return false, nil
	}
	if werr != nil {
		if errors.Is(werr, unix.EAGAIN) {
			n = 0
		} else {
			return false, errors.Wrap(ErrPeerClosed, werr.Error())
		}
	}
	q.nodes = append(q.nodes, writeNode{kind: nodeSendfile, sendFd: sendFd, sendOffset: off, sendSize: size - n})
	return true, nil
}

// IndicateClose marks the queue as draining: no further Write or
// WriteSendfile calls will be accepted, but anything already queued is
// still flushed by HandleWrite before it reports StatusFinal.
func (q *WriteQueue) IndicateClose() { q.closeIndicated = true }

// Pending reports whether any queued output remains.
func (q *WriteQueue) Pending() bool { return len(q.nodes) > 0 }

// HandleWrite drains as much of the queue as the descriptor accepts
// without blocking. When active lacks EventOut it writes nothing and
// returns StatusFinal if IndicateClose was called and the queue is
// empty, StatusPoll otherwise.
func (q *WriteQueue) HandleWrite(active Event) (Status, error) {
	if active&EventOut == 0 {
		if q.closeIndicated && len(q.nodes) == 0 {
			return StatusFinal, nil
		}
		return StatusPoll, nil
	}

	for len(q.nodes) > 0 {
		node := &q.nodes[0]
		var n int
		var err error
		switch node.kind {
		case nodeWrite:
			n, err = unix.Write(q.fd, node.buf)
		case nodeSendfile:
			n, err = unix.Sendfile(q.fd, node.sendFd, &node.sendOffset, node.sendSize)
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return StatusPoll, nil
			}
			return StatusFinal, errors.Wrap(ErrPeerClosed, err.Error())
		}
		if n == 0 {
			return StatusFinal, errors.WithStack(io.ErrClosedPipe)
		}
		switch node.kind {
		case nodeWrite:
			node.buf = node.buf[n:]
			if len(node.buf) > 0 {
				return StatusPoll, nil
			}
		case nodeSendfile:
			node.sendSize -= n
			if node.sendSize > 0 {
				return StatusPoll, nil
			}
		}
		q.nodes = q.nodes[1:]
	}

	if q.closeIndicated {
		return StatusFinal, nil
	}
	return StatusPoll, nil
}
