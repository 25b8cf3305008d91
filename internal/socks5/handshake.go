package socks5

import "fmt"

// Version is the SOCKS protocol version this package speaks.
const Version = 5

/*
   Client greeting (RFC 1928 section 3):

   +----+----------+----------+
   |VER | NMETHODS | METHODS  |
   +----+----------+----------+
   | 1  |    1     | 1 to 255 |
   +----+----------+----------+
*/

// VersionMessage is the client's initial greeting listing the
// authentication methods it supports, in client preference order. The
// server is free to pick any proposed method; Negotiate selects by
// server-side priority, not list order.
type VersionMessage struct {
	Methods []Method
}

// ParseVersionMessage decodes a client greeting from buf.
func ParseVersionMessage(buf []byte) (VersionMessage, error) {
	if len(buf) < 2 {
		return VersionMessage{}, ErrVersionMessageTooShort
	}
	if buf[0] != Version {
		return VersionMessage{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[0])
	}
	n := int(buf[1])
	if len(buf) < 2+n {
		return VersionMessage{}, ErrIncompleteVersionMessage
	}
	methods := make([]Method, n)
	for i, b := range buf[2 : 2+n] {
		methods[i] = Method(b)
	}
	return VersionMessage{Methods: methods}, nil
}

// Contains reports whether the client proposed method m.
func (v VersionMessage) Contains(m Method) bool {
	for _, got := range v.Methods {
		if got == m {
			return true
		}
	}
	return false
}

// Encode serializes the greeting for the client side of the handshake.
func (v VersionMessage) Encode() []byte {
	buf := make([]byte, 2, 2+len(v.Methods))
	buf[0] = Version
	buf[1] = byte(len(v.Methods))
	for _, m := range v.Methods {
		buf = append(buf, byte(m))
	}
	return buf
}

/*
   Server method selection (RFC 1928 section 3):

   +----+--------+
   |VER | METHOD |
   +----+--------+
   | 1  |   1    |
   +----+--------+
*/

// MethodSelection is the server's answer to the greeting: the single method
// the handshake will continue with, or MethodNoAcceptable.
type MethodSelection struct {
	Method Method
}

// Encode serializes the fixed 2-byte selection message.
func (s MethodSelection) Encode() []byte {
	return []byte{Version, byte(s.Method)}
}

// ParseMethodSelection decodes a method selection, for the client side.
func ParseMethodSelection(buf []byte) (MethodSelection, error) {
	if len(buf) < 2 {
		return MethodSelection{}, ErrVersionMessageTooShort
	}
	if buf[0] != Version {
		return MethodSelection{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[0])
	}
	return MethodSelection{Method: Method(buf[1])}, nil
}
