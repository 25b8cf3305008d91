package socks5

import (
	"bytes"
	"errors"
	"net"
	"net/netip"
	"strings"
	"testing"
)

func TestAddrRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		addr Addr
	}{
		{name: "ipv4", addr: IPAddr(netip.MustParseAddr("127.0.0.1"), 8080)},
		{name: "ipv4 zero port", addr: IPAddr(netip.MustParseAddr("0.0.0.0"), 0)},
		{name: "ipv6", addr: IPAddr(netip.MustParseAddr("2001:db8::1"), 443)},
		{name: "ipv6 max port", addr: IPAddr(netip.MustParseAddr("::1"), 65535)},
		{name: "domain", addr: mustDomainAddr(t, "example.com", 80)},
		{name: "domain len 1", addr: mustDomainAddr(t, "a", 1)},
		{name: "domain len 255", addr: mustDomainAddr(t, strings.Repeat("x", 255), 65535)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := appendAddr(nil, tt.addr)
			got, n, err := decodeAddr(enc, tt.addr.Type)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(enc) {
				t.Fatalf("consumed %d of %d bytes", n, len(enc))
			}
			if got != tt.addr {
				t.Fatalf("got %+v want %+v", got, tt.addr)
			}
		})
	}
}

func TestDecodeAddrTruncated(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		typ     AddrType
		wantErr error
	}{
		{name: "ipv4 empty", buf: nil, typ: AddrIPv4, wantErr: errAddrTruncated},
		{name: "ipv4 missing port byte", buf: []byte{127, 0, 0, 1, 0}, typ: AddrIPv4, wantErr: errAddrTruncated},
		{name: "ipv6 short", buf: make([]byte, 17), typ: AddrIPv6, wantErr: errAddrTruncated},
		{name: "domain empty", buf: nil, typ: AddrDomain, wantErr: ErrInvalidDomain},
		{name: "domain shorter than length", buf: []byte{5, 'a', 'b'}, typ: AddrDomain, wantErr: ErrInvalidDomain},
		{name: "domain missing port", buf: []byte{2, 'a', 'b', 0}, typ: AddrDomain, wantErr: ErrInvalidDomain},
		{name: "unknown atyp", buf: []byte{0, 0, 0, 0, 0, 0}, typ: 0x02, wantErr: ErrInvalidAddrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeAddr(tt.buf, tt.typ)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeAddrDomainLossyUTF8(t *testing.T) {
	// Invalid UTF-8 in a domain name is replaced, not rejected.
	buf := []byte{3, 'a', 0xFF, 'b', 0x00, 0x50}
	addr, n, err := decodeAddr(buf, AddrDomain)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d bytes", n, len(buf))
	}
	if addr.Domain != "a�b" {
		t.Fatalf("got %q", addr.Domain)
	}
	if addr.Port != 80 {
		t.Fatalf("got port %d", addr.Port)
	}
}

func TestDomainAddrBounds(t *testing.T) {
	if _, err := DomainAddr("", 80); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := DomainAddr(strings.Repeat("x", 256), 80); err == nil {
		t.Fatal("expected error for 256-byte name")
	}
	if _, err := DomainAddr(strings.Repeat("x", 255), 80); err != nil {
		t.Fatal(err)
	}
}

func TestIPAddrUnmaps4In6(t *testing.T) {
	a := IPAddr(netip.MustParseAddr("::ffff:192.0.2.1"), 80)
	if a.Type != AddrIPv4 {
		t.Fatalf("got type %v", a.Type)
	}
	want := []byte{192, 0, 2, 1, 0, 80}
	if got := appendAddr(nil, a); !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		wantType AddrType
		wantErr  bool
	}{
		{name: "ipv4", address: "127.0.0.1:80", wantType: AddrIPv4},
		{name: "ipv6", address: "[::1]:80", wantType: AddrIPv6},
		{name: "domain", address: "example.com:443", wantType: AddrDomain},
		{name: "no port", address: "example.com", wantErr: true},
		{name: "bad port", address: "example.com:http", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseHostPort(tt.address)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if addr.Type != tt.wantType {
				t.Fatalf("got type %v want %v", addr.Type, tt.wantType)
			}
			if addr.HostPort() != tt.address {
				t.Fatalf("got %q want %q", addr.HostPort(), tt.address)
			}
		})
	}
}

func TestFromNetAddr(t *testing.T) {
	a, ok := FromNetAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345})
	if !ok {
		t.Fatal("expected conversion")
	}
	if a.Type != AddrIPv4 || a.Port != 12345 {
		t.Fatalf("got %+v", a)
	}

	u, ok := FromNetAddr(&net.UDPAddr{IP: net.ParseIP("::1"), Port: 53})
	if !ok {
		t.Fatal("expected conversion")
	}
	if u.Type != AddrIPv6 || u.Port != 53 {
		t.Fatalf("got %+v", u)
	}

	if _, ok := FromNetAddr(&net.UnixAddr{Name: "/tmp/sock"}); ok {
		t.Fatal("expected failure for unix addr")
	}
}

func mustDomainAddr(t *testing.T, name string, port uint16) Addr {
	t.Helper()
	a, err := DomainAddr(name, port)
	if err != nil {
		t.Fatal(err)
	}
	return a
}
