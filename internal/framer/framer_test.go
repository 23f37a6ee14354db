package framer

import (
	"errors"
	"os"
	"testing"

	"github.com/aegistudio/libminecraft/internal/wire"
	"golang.org/x/sys/unix"
)

func nonblockingPipe(t *testing.T) (readFd int, w *os.File) {
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

func framedPacket(t *testing.T, body []byte) []byte {
	t.Helper()
	var lenBuf [5]byte
	n := wire.WriteVarInt32(lenBuf[:], int32(len(body)))
	return append(lenBuf[:n], body...)
}

func TestFramerPollSinglePacket(t *testing.T) {
	fd, w := nonblockingPipe(t)
	defer w.Close()

	body := []byte("hello, world")
	if _, err := w.Write(framedPacket(t, body)); err != nil {
		t.Fatal(err)
	}

	f := New()
	status, packet, err := f.Poll(fd)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusMore {
		t.Fatalf("status = %v, want StatusMore", status)
	}
	if string(packet) != string(body) {
		t.Fatalf("packet = %q, want %q", packet, body)
	}

	status, _, err = f.Poll(fd)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusPoll {
		t.Fatalf("status = %v, want StatusPoll once drained", status)
	}
}

func TestFramerPollSplitAcrossWrites(t *testing.T) {
	fd, w := nonblockingPipe(t)
	defer w.Close()

	body := make([]byte, 20000) // exceeds the stack buffer, forces overflow path
	for i := range body {
		body[i] = byte(i)
	}
	framed := framedPacket(t, body)

	f := New()
	if _, err := w.Write(framed[:3]); err != nil {
		t.Fatal(err)
	}
	status, _, err := f.Poll(fd)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusPoll {
		t.Fatalf("status = %v, want StatusPoll after the length prefix alone", status)
	}

	if _, err := w.Write(framed[3:]); err != nil {
		t.Fatal(err)
	}
	status, packet, err := f.Poll(fd)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusMore {
		t.Fatalf("status = %v, want StatusMore", status)
	}
	if len(packet) != len(body) {
		t.Fatalf("packet length = %d, want %d", len(packet), len(body))
	}
	for i := range body {
		if packet[i] != body[i] {
			t.Fatalf("packet mismatch at %d", i)
		}
	}
}

func TestFramerRejectsZeroLength(t *testing.T) {
	fd, w := nonblockingPipe(t)
	defer w.Close()

	if _, err := w.Write([]byte{0}); err != nil {
		t.Fatal(err)
	}
	f := New()
	status, _, err := f.Poll(fd)
	if status != StatusFinal || !errors.Is(err, ErrZeroLengthPacket) {
		t.Fatalf("status=%v err=%v, want StatusFinal/ErrZeroLengthPacket", status, err)
	}

	// Once final, Poll must not touch fd again.
	status, _, err = f.Poll(fd)
	if status != StatusFinal || err != nil {
		t.Fatalf("status=%v err=%v after final, want StatusFinal/nil", status, err)
	}
}

func TestFramerRejectsOversizePacket(t *testing.T) {
	fd, w := nonblockingPipe(t)
	defer w.Close()

	if _, err := w.Write(framedPacket(t, make([]byte, 100))); err != nil {
		t.Fatal(err)
	}
	f := New()
	f.SetMaxPacketSize(10)
	status, _, err := f.Poll(fd)
	if status != StatusFinal || !errors.Is(err, ErrPacketTooLarge) {
		t.Fatalf("status=%v err=%v, want StatusFinal/ErrPacketTooLarge", status, err)
	}
}

func TestFramerDrainsMultiplePacketsInOnePoll(t *testing.T) {
	fd, w := nonblockingPipe(t)
	defer w.Close()

	if _, err := w.Write(framedPacket(t, []byte("a"))); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(framedPacket(t, []byte("bb"))); err != nil {
		t.Fatal(err)
	}

	f := New()
	status, p1, err := f.Poll(fd)
	if err != nil || status != StatusMore || string(p1) != "a" {
		t.Fatalf("first packet: %v %q %v", status, p1, err)
	}
	status, p2, err := f.Poll(fd)
	if err != nil || status != StatusMore || string(p2) != "bb" {
		t.Fatalf("second packet: %v %q %v", status, p2, err)
	}
	status, _, err = f.Poll(fd)
	if err != nil || status != StatusPoll {
		t.Fatalf("expected StatusPoll once drained, got %v %v", status, err)
	}
}
