package main

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/aegistudio/libminecraft/internal/framer"
	"github.com/aegistudio/libminecraft/internal/reactor"
	"github.com/aegistudio/libminecraft/internal/telemetry"
)

func TestListenTCPBindsAnAvailablePort(t *testing.T) {
	fd, err := listenTCP("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)

	sa, err := unix.Getsockname(fd)
	if err != nil {
		t.Fatal(err)
	}
	addr, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("expected an IPv4 socket address, got %T", sa)
	}
	if addr.Port == 0 {
		t.Fatalf("expected a concrete ephemeral port to be assigned")
	}
}

func TestListenTCPRejectsBadAddress(t *testing.T) {
	if _, err := listenTCP("not-an-address"); err == nil {
		t.Fatal("expected an error for a malformed listen address")
	}
}

func newTestConnection(t *testing.T) (*connection, int) {
	t.Helper()
	r, w := makeSocketPair(t)
	dir := t.TempDir()
	c := &connection{
		fd:       w,
		connID:   telemetry.NewConnectionID(),
		framer:   framer.New(),
		writer:   reactor.NewWriteQueue(w),
		connLog:  telemetry.NewConnectionLogger(dir),
		auditLog: telemetry.NewAuditLogger(dir),
	}
	return c, r
}

func makeSocketPair(t *testing.T) (r, w int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatal(err)
	}
	return fds[0], fds[1]
}

func TestDispatchRejectsUnknownPacketKind(t *testing.T) {
	c, r := newTestConnection(t)
	defer unix.Close(r)
	defer unix.Close(c.fd)
	defer c.connLog.Close()
	defer c.auditLog.Close()

	if err := c.dispatch([]byte{0xff, 1, 2, 3}); err == nil {
		t.Fatal("expected an error for an unrecognized packet kind byte")
	}
}

func TestDispatchRejectsEmptyPacket(t *testing.T) {
	c, r := newTestConnection(t)
	defer unix.Close(r)
	defer unix.Close(c.fd)
	defer c.connLog.Close()
	defer c.auditLog.Close()

	if err := c.dispatch(nil); err == nil {
		t.Fatal("expected an error for an empty packet")
	}
}

func TestDispatchChatJSONRepliesOverTheWire(t *testing.T) {
	c, r := newTestConnection(t)
	defer unix.Close(r)
	defer unix.Close(c.fd)
	defer c.connLog.Close()
	defer c.auditLog.Close()

	packet := append([]byte{kindChatJSON}, []byte(`{"text": "hi"}`)...)
	if err := c.dispatch(packet); err != nil {
		t.Fatal(err)
	}

	reply := make([]byte, 64)
	n, err := unix.Read(r, reply)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected a non-empty reply")
	}
}
