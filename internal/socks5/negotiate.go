package socks5

import (
	"fmt"
	"io"
)

// Config is the server-side negotiation policy. It is built once at server
// start and read concurrently by every connection, so it must not be
// mutated after the listener starts accepting.
type Config struct {
	// AllowNoAuth enables the no-authentication method.
	AllowNoAuth bool

	// Validator checks a username/password pair; a nil Validator disables
	// the username/password method.
	Validator func(username, password string) bool
}

// Negotiate runs the server side of the SOCKS5 handshake on rw: method
// selection, the optional username/password sub-negotiation, and the
// connection request. It returns the decoded request and leaves acting on
// it to the caller, which dials (or refuses) the destination and sends the
// one connection reply itself, via WriteReply.
//
// When both no-auth and username/password are enabled and proposed, no-auth
// wins; that is a server policy, not a function of the client's ordering.
//
// Any error is terminal for the connection. Two of them complete the wire
// protocol before failing: ErrNoAcceptableMethod is returned after the 0xFF
// selection is written, and ErrAuthFailed after the failure status is
// written. Everything else aborts mid-handshake and the caller just closes.
func Negotiate(rw io.ReadWriter, cfg Config) (*Request, error) {
	greeting, err := readVersionMessage(rw)
	if err != nil {
		return nil, fmt.Errorf("version message: %w", err)
	}

	selected := MethodNoAcceptable
	switch {
	case cfg.AllowNoAuth && greeting.Contains(MethodNoAuth):
		selected = MethodNoAuth
	case cfg.Validator != nil && greeting.Contains(MethodUserPass):
		selected = MethodUserPass
	}

	if _, err := rw.Write(MethodSelection{Method: selected}.Encode()); err != nil {
		return nil, fmt.Errorf("method selection: %w", err)
	}

	switch selected {
	case MethodNoAuth:
	case MethodUserPass:
		if err := authenticate(rw, cfg.Validator); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoAcceptableMethod
	}

	req, err := readRequest(rw)
	if err != nil {
		return nil, fmt.Errorf("connection request: %w", err)
	}
	return req, nil
}

// authenticate runs one username/password round trip. A rejected credential
// still gets its failure status on the wire before the error; the client is
// required by RFC 1929 to close on seeing it, and so does our caller.
func authenticate(rw io.ReadWriter, validator func(username, password string) bool) error {
	req, err := readAuthRequest(rw)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}

	if !validator(req.Username, req.Password) {
		_, _ = rw.Write(EncodeAuthReply(AuthFailure))
		return fmt.Errorf("%w for user %q", ErrAuthFailed, req.Username)
	}

	if _, err := rw.Write(EncodeAuthReply(AuthSuccess)); err != nil {
		return fmt.Errorf("auth reply: %w", err)
	}
	return nil
}

// The stream readers below assemble one complete message with io.ReadFull
// and hand it to the slice codecs. Length-prefixed reads mean a segmented
// TCP stream can never produce a spurious incomplete-message error; a peer
// that hangs up mid-message surfaces as io.ErrUnexpectedEOF instead.

func readVersionMessage(r io.Reader) (VersionMessage, error) {
	hdr := make([]byte, 2, 2+255)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return VersionMessage{}, err
	}
	if hdr[0] != Version {
		return VersionMessage{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr[0])
	}

	buf := hdr[:2+int(hdr[1])]
	if _, err := io.ReadFull(r, buf[2:]); err != nil {
		return VersionMessage{}, err
	}
	return ParseVersionMessage(buf)
}

func readAuthRequest(r io.Reader) (AuthRequest, error) {
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return AuthRequest{}, err
	}
	if hdr[0] != AuthVersion {
		return AuthRequest{}, fmt.Errorf("%w: %d", ErrUnsupportedAuthVersion, hdr[0])
	}

	// Username plus the password length byte, then the password.
	ulen := int(hdr[1])
	buf := make([]byte, 2+ulen+1, 2+ulen+1+255)
	copy(buf, hdr)
	if _, err := io.ReadFull(r, buf[2:]); err != nil {
		return AuthRequest{}, err
	}

	plen := int(buf[2+ulen])
	buf = buf[:2+ulen+1+plen]
	if _, err := io.ReadFull(r, buf[2+ulen+1:]); err != nil {
		return AuthRequest{}, err
	}
	return ParseAuthRequest(buf)
}

func readRequest(r io.Reader) (*Request, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	buf, err := readAddrTail(r, hdr)
	if err != nil {
		return nil, err
	}
	return ParseRequest(buf)
}

// readAddrTail reads the ATYP-dependent address and port bytes that follow
// a 4-byte request or reply header, returning the complete message.
// An unknown ATYP returns the header alone; the codec reports it.
func readAddrTail(r io.Reader, hdr []byte) ([]byte, error) {
	var rest int
	switch AddrType(hdr[3]) {
	case AddrIPv4:
		rest = 6
	case AddrIPv6:
		rest = 18
	case AddrDomain:
		n := make([]byte, 1)
		if _, err := io.ReadFull(r, n); err != nil {
			return nil, err
		}
		hdr = append(hdr, n[0])
		rest = int(n[0]) + 2
	default:
		return hdr, nil
	}

	buf := append(hdr, make([]byte, rest)...)
	if _, err := io.ReadFull(r, buf[len(buf)-rest:]); err != nil {
		return nil, err
	}
	return buf, nil
}
