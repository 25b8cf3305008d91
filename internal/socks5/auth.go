package socks5

import (
	"fmt"
	"unicode/utf8"
)

/*
   Username/password sub-negotiation (RFC 1929):

   +----+------+----------+------+----------+
   |VER | ULEN |  UNAME   | PLEN |  PASSWD  |
   +----+------+----------+------+----------+
   | 1  |  1   | 1 to 255 |  1   | 1 to 255 |
   +----+------+----------+------+----------+

   +----+--------+
   |VER | STATUS |
   +----+--------+
   | 1  |   1    |
   +----+--------+
*/

// AuthVersion is the sub-negotiation version, distinct from the SOCKS
// version byte.
const AuthVersion = 1

// Auth reply status values. Any non-zero status means failure; 0x01 is the
// canonical value this server sends.
const (
	AuthSuccess byte = 0x00
	AuthFailure byte = 0x01
)

// AuthRequest is the client's credential submission.
type AuthRequest struct {
	Username string
	Password string
}

// ParseAuthRequest decodes a credential submission from buf. Username and
// password must be valid UTF-8; unlike domain names there is no lenient
// fallback here, since the bytes are compared against stored credentials.
func ParseAuthRequest(buf []byte) (AuthRequest, error) {
	if len(buf) < 2 {
		return AuthRequest{}, ErrAuthMessageTooShort
	}
	if buf[0] != AuthVersion {
		return AuthRequest{}, fmt.Errorf("%w: %d", ErrUnsupportedAuthVersion, buf[0])
	}

	ulen := int(buf[1])
	if len(buf) < 2+ulen+1 {
		return AuthRequest{}, fmt.Errorf("%w before username", ErrAuthTruncated)
	}
	username := string(buf[2 : 2+ulen])
	if !utf8.ValidString(username) {
		return AuthRequest{}, fmt.Errorf("%w in username", ErrInvalidEncoding)
	}

	plen := int(buf[2+ulen])
	if len(buf) < 2+ulen+1+plen {
		return AuthRequest{}, fmt.Errorf("%w before password", ErrAuthTruncated)
	}
	password := string(buf[2+ulen+1 : 2+ulen+1+plen])
	if !utf8.ValidString(password) {
		return AuthRequest{}, fmt.Errorf("%w in password", ErrInvalidEncoding)
	}

	return AuthRequest{Username: username, Password: password}, nil
}

// Encode serializes the credential submission for the client side. Both
// fields must fit their 1-byte length prefixes and be non-empty.
func (r AuthRequest) Encode() ([]byte, error) {
	if len(r.Username) == 0 || len(r.Username) > 255 {
		return nil, fmt.Errorf("username length %d outside 1-255", len(r.Username))
	}
	if len(r.Password) == 0 || len(r.Password) > 255 {
		return nil, fmt.Errorf("password length %d outside 1-255", len(r.Password))
	}

	buf := make([]byte, 0, 3+len(r.Username)+len(r.Password))
	buf = append(buf, AuthVersion, byte(len(r.Username)))
	buf = append(buf, r.Username...)
	buf = append(buf, byte(len(r.Password)))
	buf = append(buf, r.Password...)
	return buf, nil
}

// EncodeAuthReply serializes the server's 2-byte auth status reply.
func EncodeAuthReply(status byte) []byte {
	return []byte{AuthVersion, status}
}

// ParseAuthReply decodes the server's auth status, for the client side.
func ParseAuthReply(buf []byte) (byte, error) {
	if len(buf) < 2 {
		return 0, ErrAuthMessageTooShort
	}
	if buf[0] != AuthVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedAuthVersion, buf[0])
	}
	return buf[1], nil
}
