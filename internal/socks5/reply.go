package socks5

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
)

/*
   Server connection reply (RFC 1928 section 6):

   +----+-----+-------+------+----------+----------+
   |VER | REP |  RSV  | ATYP | BND.ADDR | BND.PORT |
   +----+-----+-------+------+----------+----------+
   | 1  |  1  | X'00' |  1   | Variable |    2     |
   +----+-----+-------+------+----------+----------+
*/

// Rep is the REP status code of a connection reply. The nine codes are
// sequential from 0x00.
type Rep byte

const (
	RepSucceeded Rep = iota
	RepGeneralFailure
	RepConnectionNotAllowed
	RepNetworkUnreachable
	RepHostUnreachable
	RepConnectionRefused
	RepTTLExpired
	RepCommandNotSupported
	RepAddrTypeNotSupported
)

func (r Rep) String() string {
	switch r {
	case RepSucceeded:
		return "succeeded"
	case RepGeneralFailure:
		return "general SOCKS server failure"
	case RepConnectionNotAllowed:
		return "connection not allowed by ruleset"
	case RepNetworkUnreachable:
		return "network unreachable"
	case RepHostUnreachable:
		return "host unreachable"
	case RepConnectionRefused:
		return "connection refused"
	case RepTTLExpired:
		return "TTL expired"
	case RepCommandNotSupported:
		return "command not supported"
	case RepAddrTypeNotSupported:
		return "address type not supported"
	default:
		return fmt.Sprintf("REP(0x%02X)", byte(r))
	}
}

// Reply is a decoded connection reply. For CONNECT the bound address is by
// convention the local address of the outbound socket; for error replies it
// is a zero IPv4 address.
type Reply struct {
	Rep  Rep
	Addr Addr
}

// ParseReply decodes a connection reply from buf, for the client side. The
// REP byte must be one of the nine known codes.
func ParseReply(buf []byte) (*Reply, error) {
	if len(buf) < 4 {
		return nil, ErrReplyTooShort
	}

	rep := Rep(buf[1])
	if rep > RepAddrTypeNotSupported {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReplyCode, buf[1])
	}

	typ := AddrType(buf[3])
	switch typ {
	case AddrIPv4, AddrDomain, AddrIPv6:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddrType, buf[3])
	}

	addr, _, err := decodeAddr(buf[4:], typ)
	if err != nil {
		if errors.Is(err, errAddrTruncated) {
			return nil, ErrReplyTooShort
		}
		return nil, err
	}

	return &Reply{Rep: rep, Addr: addr}, nil
}

// Encode serializes the reply.
func (r *Reply) Encode() []byte {
	buf := append(make([]byte, 0, 22), Version, byte(r.Rep), 0x00, byte(r.Addr.Type))
	return appendAddr(buf, r.Addr)
}

// WriteReply encodes and writes a single connection reply. A zero-value bnd
// is sent as IPv4 0.0.0.0:0, the conventional filler for error replies and
// for commands where the bound address is meaningless.
func WriteReply(w io.Writer, rep Rep, bnd Addr) error {
	if bnd.Type == 0 {
		bnd = Addr{Type: AddrIPv4, IP: netip.IPv4Unspecified(), Port: 0}
	}
	r := Reply{Rep: rep, Addr: bnd}
	if _, err := w.Write(r.Encode()); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
