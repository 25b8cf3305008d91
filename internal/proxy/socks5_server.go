package proxy

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"time"

	"github.com/die-net/socksd/internal/socks5"
)

// SOCKS5Server accepts client connections and serves the SOCKS5 protocol on
// each: negotiate, dial, reply, relay. One goroutine per connection;
// connections share nothing but the read-only configuration.
type SOCKS5Server struct {
	ctx     context.Context
	cfg     Config
	neg     socks5.Config
	verbose bool
}

func NewSOCKS5Server(ctx context.Context, cfg Config, verbose bool) *SOCKS5Server {
	return &SOCKS5Server{
		ctx: ctx,
		cfg: cfg,
		neg: socks5.Config{
			AllowNoAuth: cfg.AllowNoAuth,
			Validator:   cfg.Validator,
		},
		verbose: verbose,
	}
}

func (s *SOCKS5Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		go func() {
			if err := s.handleConn(c); err != nil && s.verbose {
				log.Printf("socks5: %s: %v", c.RemoteAddr(), err)
			}
		}()
	}
}

func (s *SOCKS5Server) handleConn(conn net.Conn) error {
	defer conn.Close()

	if s.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.NegotiationTimeout))
	}

	req, err := socks5.Negotiate(conn, s.neg)
	if err != nil {
		// Malformed handshakes and rejections are terminal; close without
		// any further protocol activity.
		return fmt.Errorf("negotiate: %w", err)
	}

	switch req.Cmd {
	case socks5.CmdConnect:
		return s.handleConnect(conn, req)
	case socks5.CmdUDPAssociate:
		return s.handleAssociate(conn, req)
	default:
		_ = socks5.WriteReply(conn, socks5.RepCommandNotSupported, socks5.Addr{})
		return fmt.Errorf("unsupported command: %v", req.Cmd)
	}
}

func (s *SOCKS5Server) handleConnect(conn net.Conn, req *socks5.Request) error {
	up, err := s.cfg.Dialer.DialContext(s.ctx, "tcp", req.Addr.HostPort())
	if err != nil {
		_ = socks5.WriteReply(conn, replyForDialError(err), socks5.Addr{})
		return fmt.Errorf("connect %s: %w", req.Addr, err)
	}
	defer up.Close()

	bnd, _ := socks5.FromNetAddr(up.LocalAddr())
	if err := socks5.WriteReply(conn, socks5.RepSucceeded, bnd); err != nil {
		return err
	}

	// Handshake done; the relay runs on its own timeout.
	if s.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Time{})
	}

	return CopyBidirectional(s.ctx, conn, up, s.cfg.IOTimeout)
}

// handleAssociate binds a relay socket and reports it to the client.
// Datagram forwarding is not implemented; the association exists only so
// clients probing for UDP support get a well-formed answer, and it ends
// when the client closes the control connection.
func (s *SOCKS5Server) handleAssociate(conn net.Conn, _ *socks5.Request) error {
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		host = "0.0.0.0"
	}

	pc, err := net.ListenPacket("udp", net.JoinHostPort(host, "0"))
	if err != nil {
		_ = socks5.WriteReply(conn, socks5.RepGeneralFailure, socks5.Addr{})
		return fmt.Errorf("udp associate: %w", err)
	}
	defer pc.Close()

	bnd, _ := socks5.FromNetAddr(pc.LocalAddr())
	if err := socks5.WriteReply(conn, socks5.RepSucceeded, bnd); err != nil {
		return err
	}

	if s.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Time{})
	}

	_, err = io.Copy(io.Discard, conn)
	return err
}

// replyForDialError maps an outbound dial failure onto the closest REP
// code. The net package doesn't expose these conditions as typed errors
// across platforms, so match on the message text.
func replyForDialError(err error) socks5.Rep {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "refused"):
		return socks5.RepConnectionRefused
	case strings.Contains(msg, "network is unreachable"):
		return socks5.RepNetworkUnreachable
	case strings.Contains(msg, "no such host"):
		return socks5.RepHostUnreachable
	default:
		return socks5.RepHostUnreachable
	}
}
