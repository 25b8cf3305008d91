package socks5

import "errors"

// Protocol errors, grouped by handshake phase. All of them are terminal for
// the connection: the caller logs and closes, nothing is retried.
var (
	// Version / method selection (RFC 1928 section 3).
	ErrUnsupportedVersion       = errors.New("unsupported SOCKS version")
	ErrVersionMessageTooShort   = errors.New("version message too short")
	ErrIncompleteVersionMessage = errors.New("incomplete version message")
	ErrNoAcceptableMethod       = errors.New("no acceptable authentication method")

	// Username/password sub-negotiation (RFC 1929).
	ErrUnsupportedAuthVersion = errors.New("unsupported auth version")
	ErrAuthMessageTooShort    = errors.New("auth message too short")
	ErrAuthTruncated          = errors.New("auth message truncated")
	ErrInvalidEncoding        = errors.New("invalid utf-8")
	ErrAuthFailed             = errors.New("authentication failed")

	// Connection request / reply (RFC 1928 sections 4-6).
	ErrRequestTooShort    = errors.New("connection request too short")
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrInvalidAddrType    = errors.New("invalid address type")
	ErrInvalidDomain      = errors.New("invalid domain name")
	ErrReplyTooShort      = errors.New("reply too short")
	ErrInvalidReplyCode   = errors.New("invalid reply code")
)

// errAddrTruncated is internal to the address codec; ParseRequest and
// ParseReply translate it to their own too-short errors.
var errAddrTruncated = errors.New("address truncated")
