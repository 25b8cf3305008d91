// Package socks5 implements the SOCKS5 wire protocol (RFC 1928) and the
// username/password sub-negotiation (RFC 1929) used by socksd.
//
// It contains the binary codecs for every handshake message and the
// server-side negotiation engine, Negotiate, which runs the handshake up to
// and including the client's connection request. The engine never dials the
// destination, never resolves names, and never writes the final connection
// reply; those belong to the caller (see internal/proxy), which keeps the
// protocol core free of network I/O beyond the handshake's own messages.
//
// The client side of the same handshake lives in client.go and is used by
// internal/dialer for socks5:// upstream chaining.
package socks5
