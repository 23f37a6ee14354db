// Command blockwired is a minimal demonstration server wiring the
// packet framer, the tag-tree and chat codecs, and the epoll reactor
// into one process: it accepts raw TCP connections, frames incoming
// packets, decodes their payload as either a tag-tree compound or a
// chat-compound JSON document depending on a one-byte discriminant, and
// acknowledges each with a short reply.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/aegistudio/libminecraft/internal/chat"
	"github.com/aegistudio/libminecraft/internal/config"
	"github.com/aegistudio/libminecraft/internal/framer"
	"github.com/aegistudio/libminecraft/internal/nbt"
	"github.com/aegistudio/libminecraft/internal/reactor"
	"github.com/aegistudio/libminecraft/internal/telemetry"
	"github.com/aegistudio/libminecraft/internal/wire"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a config.yaml (defaults embedded if unset)")
		logDir     = flag.String("logs", "logs", "telemetry output directory")
	)
	flag.Parse()

	logger := telemetry.NewConsoleLogger(os.Stdout, "blockwired")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *logDir != "" {
		cfg.Telemetry.Directory = *logDir
	}

	connLog := telemetry.NewConnectionLogger(cfg.Telemetry.Directory)
	defer connLog.Close()
	auditLog := telemetry.NewAuditLogger(cfg.Telemetry.Directory)
	defer auditLog.Close()

	rx, err := reactor.New(cfg.TickInterval())
	if err != nil {
		logger.Fatalf("reactor: %v", err)
	}
	defer rx.Close()

	listenFd, err := listenTCP(cfg.Listen)
	if err != nil {
		logger.Fatalf("listen %s: %v", cfg.Listen, err)
	}

	acc := &acceptor{
		fd:       listenFd,
		reactor:  rx,
		cfg:      cfg,
		logger:   logger,
		connLog:  connLog,
		auditLog: auditLog,
	}
	if err := rx.Insert(acc, reactor.EventIn); err != nil {
		logger.Fatalf("register listener: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Printf("listening on %s", cfg.Listen)
	if err := rx.Run(ctx); err != nil && err != context.Canceled {
		logger.Printf("reactor stopped: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// listenTCP binds a non-blocking TCP listening socket without routing
// through net.Listen, so the resulting fd can be handed directly to the
// reactor's raw epoll loop.
func listenTCP(addr string) (int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return -1, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	var ip [4]byte
	if host != "" {
		parsed := net.ParseIP(host)
		if parsed == nil {
			return -1, fmt.Errorf("invalid host %q", host)
		}
		v4 := parsed.To4()
		if v4 == nil {
			return -1, fmt.Errorf("only IPv4 listen addresses are supported, got %q", host)
		}
		copy(ip[:], v4)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: ip}); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// acceptor is the reactor.Descriptor for the listening socket: every
// readable edge means one or more pending connections to accept.
type acceptor struct {
	fd       int
	reactor  *reactor.Reactor
	cfg      config.Config
	logger   *log.Logger
	connLog  *telemetry.ConnectionLogger
	auditLog *telemetry.AuditLogger
}

func (a *acceptor) Fd() int { return a.fd }

func (a *acceptor) Handle(event reactor.Event) (reactor.Status, error) {
	for {
		fd, _, err := unix.Accept4(a.fd, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN {
				return reactor.StatusPoll, nil
			}
			return reactor.StatusFinal, err
		}

		id := telemetry.NewConnectionID()
		conn := &connection{
			fd:       fd,
			connID:   id,
			framer:   framer.New(),
			writer:   reactor.NewWriteQueue(fd),
			logger:   a.logger,
			connLog:  a.connLog,
			auditLog: a.auditLog,
		}
		conn.framer.SetMaxPacketSize(a.cfg.MaxPacketSize)
		if err := a.reactor.Insert(conn, reactor.EventIn); err != nil {
			a.logger.Printf("accept: register connection: %v", err)
			unix.Close(fd)
			continue
		}
		_ = a.connLog.Opened(id)
	}
}

const (
	kindNBTCompound uint8 = 1
	kindChatJSON    uint8 = 2
)

// connection is the reactor.Descriptor for one accepted client: it runs
// the framer over the raw socket, dispatches each decoded packet, and
// owns a WriteQueue for the short acknowledgement replies.
type connection struct {
	fd       int
	connID   string
	framer   *framer.Framer
	writer   *reactor.WriteQueue
	logger   *log.Logger
	connLog  *telemetry.ConnectionLogger
	auditLog *telemetry.AuditLogger
}

func (c *connection) Fd() int { return c.fd }

func (c *connection) Handle(event reactor.Event) (reactor.Status, error) {
	if event&reactor.EventOut != 0 {
		status, err := c.writer.HandleWrite(event)
		if status == reactor.StatusFinal {
			_ = c.connLog.Closed(c.connID, errString(err))
			return status, err
		}
	}
	if event&reactor.EventIn == 0 {
		return reactor.StatusPoll, nil
	}

	for {
		status, packet, err := c.framer.Poll(c.fd)
		switch status {
		case framer.StatusPoll:
			return reactor.StatusPoll, nil
		case framer.StatusFinal:
			_ = c.connLog.Closed(c.connID, errString(err))
			return reactor.StatusFinal, err
		case framer.StatusMore:
			_ = c.connLog.PacketIn(c.connID, len(packet))
			if derr := c.dispatch(packet); derr != nil {
				_ = c.auditLog.Write(c.connID, derr.Error())
				if errors.Is(derr, reactor.ErrPeerClosed) {
					_ = c.connLog.Closed(c.connID, derr.Error())
					return reactor.StatusFinal, derr
				}
			}
		}
	}
}

func (c *connection) dispatch(packet []byte) error {
	if len(packet) == 0 {
		return fmt.Errorf("empty packet")
	}
	switch packet[0] {
	case kindNBTCompound:
		buf := wire.NewInputBuffer(packet[1:])
		compound, err := nbt.ReadCompound(buf)
		if err != nil {
			return fmt.Errorf("tag tree: %w", err)
		}
		return c.reply(fmt.Sprintf("ok: compound with %d entries", len(compound.Entries)))

	case kindChatJSON:
		msg, err := chat.ReadCompound(packet[1:])
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		return c.reply(fmt.Sprintf("ok: chat content kind %d", msg.Content.Kind))

	default:
		return fmt.Errorf("unrecognized packet kind %d", packet[0])
	}
}

func (c *connection) reply(text string) error {
	body := []byte(text)
	var lenBuf [5]byte
	n := wire.WriteVarInt32(lenBuf[:], int32(len(body)))
	framed := append(lenBuf[:n], body...)

	queued, err := c.writer.Write(framed)
	if err != nil {
		return err
	}
	if queued {
		return nil // the reactor's next EventOut edge drains the queue
	}
	_ = c.connLog.PacketOut(c.connID, len(body))
	return nil
}

func errString(err error) string {
	if err == nil {
		return "eof"
	}
	return err.Error()
}
