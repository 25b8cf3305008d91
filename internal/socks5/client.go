package socks5

import (
	"fmt"
	"io"
)

// Auth configures optional username/password credentials for the client
// side of the handshake.
type Auth struct {
	Username string
	Password string
}

// ClientDial runs the full client side of the handshake on an established
// connection to a SOCKS5 server: negotiation, then a CONNECT for address.
// On return the connection carries the destination's byte stream.
func ClientDial(conn io.ReadWriter, auth Auth, address string) error {
	if err := ClientNegotiate(conn, auth); err != nil {
		return err
	}
	return ClientConnect(conn, address)
}

// ClientNegotiate proposes no-auth (plus username/password when credentials
// are set) and completes whichever sub-negotiation the server selects.
func ClientNegotiate(conn io.ReadWriter, auth Auth) error {
	methods := []Method{MethodNoAuth}
	if auth.Username != "" {
		methods = append(methods, MethodUserPass)
	}

	if _, err := conn.Write(VersionMessage{Methods: methods}.Encode()); err != nil {
		return fmt.Errorf("write greeting: %w", err)
	}

	sel, err := readMethodSelection(conn)
	if err != nil {
		return fmt.Errorf("read method selection: %w", err)
	}

	switch sel.Method {
	case MethodNoAuth:
		return nil
	case MethodUserPass:
		if auth.Username == "" {
			return fmt.Errorf("server requires username/password")
		}
		return clientAuthenticate(conn, auth)
	default:
		return fmt.Errorf("server selected %v", sel.Method)
	}
}

func clientAuthenticate(conn io.ReadWriter, auth Auth) error {
	req, err := AuthRequest{Username: auth.Username, Password: auth.Password}.Encode()
	if err != nil {
		return err
	}
	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("write auth request: %w", err)
	}

	status, err := readAuthReply(conn)
	if err != nil {
		return fmt.Errorf("read auth reply: %w", err)
	}
	if status != AuthSuccess {
		return fmt.Errorf("%w: status %d", ErrAuthFailed, status)
	}
	return nil
}

// ClientConnect sends a CONNECT request for a "host:port" address and reads
// the server's reply, failing unless the reply is RepSucceeded.
func ClientConnect(conn io.ReadWriter, address string) error {
	dst, err := ParseHostPort(address)
	if err != nil {
		return err
	}

	req := Request{Cmd: CmdConnect, Addr: dst}
	if _, err := conn.Write(req.Encode()); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if reply.Rep != RepSucceeded {
		return fmt.Errorf("connect %s: %s", address, reply.Rep)
	}
	return nil
}

func readMethodSelection(r io.Reader) (MethodSelection, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return MethodSelection{}, err
	}
	return ParseMethodSelection(buf)
}

func readAuthReply(r io.Reader) (byte, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return ParseAuthReply(buf)
}

func readReply(r io.Reader) (*Reply, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	buf, err := readAddrTail(r, hdr)
	if err != nil {
		return nil, err
	}
	return ParseReply(buf)
}
