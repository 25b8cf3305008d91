package proxy

import (
	"net"
	"time"

	"github.com/die-net/socksd/internal/dialer"
)

type Config struct {
	// NegotiationTimeout bounds the whole handshake; the deadline is
	// cleared before relaying starts.
	NegotiationTimeout time.Duration

	// IOTimeout bounds the relay phase. Zero means no limit.
	IOTimeout time.Duration

	KeepAlive net.KeepAliveConfig

	// AllowNoAuth and Validator form the negotiation policy handed to
	// internal/socks5. At least one must be set or every client would be
	// rejected with "no acceptable methods".
	AllowNoAuth bool
	Validator   func(username, password string) bool

	Dialer dialer.Dialer
}
