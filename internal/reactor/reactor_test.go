package reactor

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

type recordingDescriptor struct {
	fd       int
	received chan []byte
	final    bool
}

func (d *recordingDescriptor) Fd() int { return d.fd }

func (d *recordingDescriptor) Handle(event Event) (Status, error) {
	if event&EventIn == 0 {
		return StatusPoll, nil
	}
	buf := make([]byte, 4096)
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return StatusPoll, nil
		}
		return StatusFinal, err
	}
	if n == 0 {
		return StatusFinal, nil
	}
	d.received <- append([]byte(nil), buf[:n]...)
	if d.final {
		return StatusFinal, nil
	}
	return StatusPoll, nil
}

func nonblockingReadEnd(t *testing.T) (readFd int, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	fd := int(r.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		t.Fatal(err)
	}
	return fd, w
}

func TestReactorDispatchesReadableDescriptor(t *testing.T) {
	fd, w := nonblockingReadEnd(t)
	defer w.Close()

	r, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	desc := &recordingDescriptor{fd: fd, received: make(chan []byte, 1)}
	if err := r.Insert(desc, EventIn); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if _, err := w.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-desc.received:
		if string(got) != "ping" {
			t.Fatalf("got %q, want %q", got, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for descriptor dispatch")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}

func TestReactorRemovesDescriptorOnStatusFinal(t *testing.T) {
	fd, w := nonblockingReadEnd(t)
	defer w.Close()

	r, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	desc := &recordingDescriptor{fd: fd, received: make(chan []byte, 1), final: true}
	if err := r.Insert(desc, EventIn); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if _, err := w.Write([]byte("bye")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-desc.received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for descriptor dispatch")
	}

	cancel()
	<-done

	if _, ok := r.entries[fd]; ok {
		t.Fatalf("descriptor should have been removed after StatusFinal")
	}
}

// selfRemovingDescriptor calls Reactor.Remove on itself from inside its
// own Handle, exercising the executing/markedRemoval reentrancy guard.
type selfRemovingDescriptor struct {
	fd      int
	reactor *Reactor
	removed chan struct{}
	callErr error
}

func (d *selfRemovingDescriptor) Fd() int { return d.fd }

func (d *selfRemovingDescriptor) Handle(event Event) (Status, error) {
	d.callErr = d.reactor.Remove(d)
	close(d.removed)
	// Returning StatusPoll here should be overridden to StatusFinal by
	// the pending markedRemoval flag once Handle returns.
	return StatusPoll, nil
}

func TestReactorSelfRemovalDuringOwnHandleIsDeferred(t *testing.T) {
	fd, w := nonblockingReadEnd(t)
	defer w.Close()

	r, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	desc := &selfRemovingDescriptor{removed: make(chan struct{})}
	desc.fd = fd
	desc.reactor = r
	if err := r.Insert(desc, EventIn); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-desc.removed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for descriptor's own Handle to run")
	}

	cancel()
	<-done

	if desc.callErr != nil {
		t.Fatalf("Remove called from within Handle returned %v, want nil (deferred, not an error)", desc.callErr)
	}
	if _, ok := r.entries[fd]; ok {
		t.Fatalf("descriptor should have been erased once its own Handle returned")
	}
	// A second Remove must report ErrNotRegistered rather than panicking
	// or double-erasing an already-removed entry.
	if err := r.Remove(desc); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered on double Remove, got %v", err)
	}
}

func TestReactorInsertRejectsDuplicateFd(t *testing.T) {
	fd, w := nonblockingReadEnd(t)
	defer w.Close()

	r, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	desc := &recordingDescriptor{fd: fd, received: make(chan []byte, 1)}
	if err := r.Insert(desc, EventIn); err != nil {
		t.Fatal(err)
	}
	if err := r.Insert(desc, EventIn); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}
