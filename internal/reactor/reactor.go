package reactor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Event is a bitmask of I/O readiness conditions a Descriptor can listen
// for and be handed on a readiness edge.
type Event uint32

const (
	EventNone Event = 0
	EventIn   Event = 1 << 0
	EventOut  Event = 1 << 1
)

// Status is what a Descriptor's Handle call returns to tell the Reactor
// what to do with it next.
type Status int

const (
	// StatusPoll re-arms the descriptor for its currently listened events
	// and returns it to epoll's watch set.
	StatusPoll Status = iota

	// StatusMore means Handle made progress and should be called again
	// immediately without waiting for a fresh readiness edge, because
	// more work is already buffered (e.g. the framer decoded a packet
	// but the socket may hold another one already read into userspace).
	StatusMore

	// StatusFinal removes the descriptor from the Reactor and closes it.
	StatusFinal
)

// Descriptor is a single registered file descriptor. Handle is invoked
// with the events that just became ready; the descriptor was removed
// from epoll's watch set (edge-triggered, one-shot) before the call, so
// it must read or write until EAGAIN before returning StatusPoll.
type Descriptor interface {
	Fd() int
	Handle(event Event) (Status, error)
}

const maxEpollEvents = 16

const (
	defaultTick          = 50 * time.Millisecond
	nanosecondLowerBound = time.Millisecond
)

type entry struct {
	descriptor    Descriptor
	listening     Event
	active        Event
	executing     bool
	markedRemoval bool
}

// Reactor is a single-threaded epoll loop. It is not safe for concurrent
// use; Insert, Remove, UpdateEvent and Run must all be called from the
// same goroutine (Run itself calls back into descriptors, so it is fine
// for a Descriptor's Handle method to call Remove or UpdateEvent on
// itself or on a sibling descriptor).
type Reactor struct {
	epollFd int
	timerFd int
	closed  bool

	entries map[int]*entry
	active  []*entry
}

// New creates a Reactor with the given tick interval. A tick interval of
// zero uses the default of 50 milliseconds, matching the game's default
// simulation tick.
func New(tick time.Duration) (*Reactor, error) {
	if tick == 0 {
		tick = defaultTick
	}
	if tick < nanosecondLowerBound {
		return nil, errors.Errorf("reactor: tick %s is too small", tick)
	}

	epollFd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, errors.Wrap(err, "reactor: create epoll")
	}
	timerFd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK)
	if err != nil {
		unix.Close(epollFd)
		return nil, errors.Wrap(err, "reactor: create timerfd")
	}

	r := &Reactor{epollFd: epollFd, timerFd: timerFd, entries: make(map[int]*entry)}
	if err := r.SetTick(tick); err != nil {
		unix.Close(epollFd)
		unix.Close(timerFd)
		return nil, err
	}
	if err := unix.EpollCtl(epollFd, unix.EPOLL_CTL_ADD, timerFd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET | unix.EPOLLONESHOT,
		Fd:     int32(timerFd),
	}); err != nil {
		unix.Close(epollFd)
		unix.Close(timerFd)
		return nil, errors.Wrap(err, "reactor: watch timerfd")
	}
	return r, nil
}

// SetTick rearms the periodic timer to fire every interval.
func (r *Reactor) SetTick(interval time.Duration) error {
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(r.timerFd, 0, &spec, nil); err != nil {
		return errors.Wrap(err, "reactor: set tick")
	}
	return nil
}

// Insert registers a descriptor with the given initial listened events.
func (r *Reactor) Insert(d Descriptor, initial Event) error {
	if r.closed {
		return errors.WithStack(ErrClosed)
	}
	fd := d.Fd()
	if _, ok := r.entries[fd]; ok {
		return errors.WithStack(ErrAlreadyRegistered)
	}
	e := &entry{descriptor: d, listening: initial}
	if err := unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_ADD, fd, epollEventFor(fd, initial)); err != nil {
		return errors.Wrap(err, "reactor: watch descriptor")
	}
	r.entries[fd] = e
	return nil
}

// UpdateEvent changes which events a registered descriptor listens for.
// It is safe to call from inside the descriptor's own Handle method.
func (r *Reactor) UpdateEvent(d Descriptor, newEvent Event) error {
	e, ok := r.entries[d.Fd()]
	if !ok {
		return errors.WithStack(ErrNotRegistered)
	}
	old := e.listening
	e.listening = newEvent
	if e.executing {
		// The epoll_ctl call happens once handle() returns and the
		// descriptor is put back in the watch set.
		return nil
	}
	if err := unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_MOD, d.Fd(), epollEventFor(d.Fd(), newEvent)); err != nil {
		e.listening = old
		return errors.Wrap(err, "reactor: update descriptor")
	}
	return nil
}

// Remove unregisters and closes a descriptor. If called while the
// descriptor is inside its own Handle method, the removal is deferred
// until Handle returns.
func (r *Reactor) Remove(d Descriptor) error {
	e, ok := r.entries[d.Fd()]
	if !ok {
		return errors.WithStack(ErrNotRegistered)
	}
	if e.executing {
		e.markedRemoval = true
		return nil
	}
	r.erase(e)
	return nil
}

func (r *Reactor) erase(e *entry) {
	fd := e.descriptor.Fd()
	unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(r.entries, fd)
	unix.Close(fd)
}

// Close tears down the epoll and timer file descriptors. Registered
// descriptors are not individually closed; call Remove on each first if
// that matters to the caller.
func (r *Reactor) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	unix.Close(r.timerFd)
	return unix.Close(r.epollFd)
}

// Run drives the event loop until ctx is cancelled or a fatal epoll
// error occurs. Each iteration waits for readiness (or the next tick),
// dispatches every ready descriptor's Handle exactly once, and repeats.
func (r *Reactor) Run(ctx context.Context) error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		timeout := -1
		if len(r.active) > 0 {
			timeout = 0
		}
		n, err := unix.EpollWait(r.epollFd, events, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return errors.Wrap(err, "reactor: epoll_wait")
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)
			if fd == r.timerFd {
				r.drainTimer()
				continue
			}
			e, ok := r.entries[fd]
			if !ok {
				continue
			}
			if ev.Events&unix.EPOLLERR != 0 {
				r.erase(e)
				continue
			}
			e.active = eventFromEpoll(ev.Events)
			r.active = append(r.active, e)
		}

		r.drainActive()
	}
}

func (r *Reactor) drainTimer() {
	var buf [8]byte
	for {
		_, err := unix.Read(r.timerFd, buf[:])
		if err != nil {
			break
		}
	}
	// The timerfd is watched one-shot; put it back in the watch set so
	// the next tick wakes the loop again.
	unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_MOD, r.timerFd, epollEventFor(r.timerFd, EventIn))
}

func (r *Reactor) drainActive() {
	pending := r.active
	r.active = nil
	for _, e := range pending {
		if r.entries[e.descriptor.Fd()] != e {
			// An earlier handler in this pass already removed it.
			continue
		}
		if e.markedRemoval {
			r.erase(e)
			continue
		}
		e.executing = true
		status, err := safeHandle(e.descriptor, e.active)
		e.executing = false
		_ = err // descriptors report fatal conditions via StatusFinal

		if e.markedRemoval {
			status = StatusFinal
		}
		switch status {
		case StatusFinal:
			r.erase(e)
		case StatusPoll:
			if uerr := unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_MOD, e.descriptor.Fd(), epollEventFor(e.descriptor.Fd(), e.listening)); uerr != nil {
				r.erase(e)
			}
		case StatusMore:
			r.active = append(r.active, e)
		}
	}
}

func safeHandle(d Descriptor, event Event) (status Status, err error) {
	defer func() {
		if p := recover(); p != nil {
			status, err = StatusFinal, errors.Errorf("reactor: descriptor panicked: %v", p)
		}
	}()
	return d.Handle(event)
}

func epollEventFor(fd int, e Event) *unix.EpollEvent {
	var mask uint32 = unix.EPOLLET | unix.EPOLLONESHOT
	if e&EventIn != 0 {
		mask |= unix.EPOLLIN
	}
	if e&EventOut != 0 {
		mask |= unix.EPOLLOUT
	}
	return &unix.EpollEvent{Events: mask, Fd: int32(fd)}
}

func eventFromEpoll(mask uint32) Event {
	var e Event
	if mask&unix.EPOLLIN != 0 {
		e |= EventIn
	}
	if mask&unix.EPOLLOUT != 0 {
		e |= EventOut
	}
	return e
}
