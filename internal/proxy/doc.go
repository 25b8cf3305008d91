// Package proxy implements the listener side of socksd: the SOCKS5 server
// that accepts client connections, runs the handshake via internal/socks5,
// dials destinations through internal/dialer, and relays bytes.
//
// It also holds shared connection plumbing: the keepalive listener and the
// bidirectional copy used to relay established connections.
package proxy
