// Package dialer provides outbound dialing implementations used by socksd.
//
// Dialers implement a small interface (DialContext) and are used by the
// SOCKS5 listener to establish outbound connections either directly or
// chained through an upstream SOCKS5 proxy.
package dialer
