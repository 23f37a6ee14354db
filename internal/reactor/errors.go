// Package reactor implements a single-threaded, edge-triggered I/O event
// loop over epoll: descriptors register once, are handed to their Handle
// method exactly once per readiness edge, and re-arm themselves by
// returning StatusPoll. A periodic tick (50ms by default) wakes the loop
// even when no descriptor is ready, so Run notices a cancelled context;
// descriptors get no per-tick callback.
package reactor

import "github.com/pkg/errors"

var (
	// ErrAlreadyRegistered is returned by Insert when the descriptor's fd
	// is already known to this Reactor.
	ErrAlreadyRegistered = errors.New("reactor: descriptor already registered")

	// ErrNotRegistered is returned by UpdateEvent or Remove when the
	// descriptor's fd is not currently managed by this Reactor.
	ErrNotRegistered = errors.New("reactor: descriptor not registered")

	// ErrClosed is returned by Insert once Close has been called; the
	// other methods do not check for it.
	ErrClosed = errors.New("reactor: reactor is closed")

	// ErrPeerClosed is the cause wrapped into any error a WriteQueue
	// returns for a fatal kernel write error, from either the fast path
	// (Write, WriteSendfile) or the drain path (HandleWrite) — any
	// return other than a positive count, EAGAIN, or 0. Callers should
	// check for it with errors.Is to tear the descriptor down the same
	// way a HandleWrite StatusFinal does.
	ErrPeerClosed = errors.New("reactor: peer closed")
)
