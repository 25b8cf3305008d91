package socks5

import (
	"errors"
	"fmt"
)

/*
   Client connection request (RFC 1928 section 4):

   +----+-----+-------+------+----------+----------+
   |VER | CMD |  RSV  | ATYP | DST.ADDR | DST.PORT |
   +----+-----+-------+------+----------+----------+
   | 1  |  1  | X'00' |  1   | Variable |    2     |
   +----+-----+-------+------+----------+----------+
*/

// Command is the CMD byte of a connection request.
type Command byte

const (
	CmdConnect      Command = 0x01
	CmdBind         Command = 0x02
	CmdUDPAssociate Command = 0x03
)

func (c Command) String() string {
	switch c {
	case CmdConnect:
		return "CONNECT"
	case CmdBind:
		return "BIND"
	case CmdUDPAssociate:
		return "UDP_ASSOCIATE"
	default:
		return fmt.Sprintf("CMD(0x%02X)", byte(c))
	}
}

// Request is a decoded connection request: the command and the destination
// the client wants it applied to. The reserved byte is parsed but not
// validated; clients that send a non-zero RSV are tolerated.
type Request struct {
	Cmd  Command
	Addr Addr
}

// ParseRequest decodes a connection request from buf.
func ParseRequest(buf []byte) (*Request, error) {
	if len(buf) < 4 {
		return nil, ErrRequestTooShort
	}

	cmd := Command(buf[1])
	switch cmd {
	case CmdConnect, CmdBind, CmdUDPAssociate:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCommand, buf[1])
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
			return nil, ErrRequestTooShort
		}
		return nil, err
	}

	return &Request{Cmd: cmd, Addr: addr}, nil
}

// Encode serializes the request for the client side of the handshake.
func (r *Request) Encode() []byte {
	buf := append(make([]byte, 0, 22), Version, byte(r.Cmd), 0x00, byte(r.Addr.Type))
	return appendAddr(buf, r.Addr)
}
