package socks5

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

/*
   Address encoding shared by requests and replies (RFC 1928 section 5):

   ATYP 0x01: 4-byte IPv4 address, then 2-byte port
   ATYP 0x03: 1-byte length, length bytes of domain name, then 2-byte port
   ATYP 0x04: 16-byte IPv6 address, then 2-byte port

   Ports are big-endian. The port is part of the containing message but is
   decoded here because its offset depends on the address length.
*/

// AddrType is the ATYP tag selecting the wire encoding of an address.
type AddrType byte

const (
	AddrIPv4   AddrType = 0x01
	AddrDomain AddrType = 0x03
	AddrIPv6   AddrType = 0x04
)

func (t AddrType) String() string {
	switch t {
	case AddrIPv4:
		return "IPv4"
	case AddrDomain:
		return "Domain"
	case AddrIPv6:
		return "IPv6"
	default:
		return fmt.Sprintf("ATYP(0x%02X)", byte(t))
	}
}

// Addr is a destination or bound address in a SOCKS5 message: an IPv4 or
// IPv6 address or a domain name, plus a port.
type Addr struct {
	Type   AddrType
	IP     netip.Addr // set for AddrIPv4 and AddrIPv6
	Domain string     // set for AddrDomain
	Port   uint16
}

// IPAddr builds an Addr from an IP, tagging it AddrIPv4 or AddrIPv6.
// 4-in-6 mapped addresses are unmapped so they encode as 4 bytes.
func IPAddr(ip netip.Addr, port uint16) Addr {
	ip = ip.Unmap()
	typ := AddrIPv6
	if ip.Is4() {
		typ = AddrIPv4
	}
	return Addr{Type: typ, IP: ip, Port: port}
}

// DomainAddr builds a domain-name Addr. The name must fit the 1-byte wire
// length prefix; validating here means encoding can never truncate.
func DomainAddr(name string, port uint16) (Addr, error) {
	if len(name) == 0 || len(name) > 255 {
		return Addr{}, fmt.Errorf("%w: %d bytes", ErrInvalidDomain, len(name))
	}
	return Addr{Type: AddrDomain, Domain: name, Port: port}, nil
}

// ParseHostPort converts a dialable "host:port" string into an Addr,
// classifying host as IPv4, IPv6, or domain.
func ParseHostPort(address string) (Addr, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return Addr{}, fmt.Errorf("parse address %q: %w", address, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Addr{}, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return IPAddr(ip, uint16(port)), nil
	}
	return DomainAddr(host, uint16(port))
}

// FromNetAddr converts a *net.TCPAddr or *net.UDPAddr into an Addr,
// typically to report a bound address back to the client. Returns false for
// other net.Addr implementations.
func FromNetAddr(na net.Addr) (Addr, bool) {
	switch a := na.(type) {
	case *net.TCPAddr:
		if ip, ok := netip.AddrFromSlice(a.IP); ok {
			return IPAddr(ip, uint16(a.Port)), true
		}
	case *net.UDPAddr:
		if ip, ok := netip.AddrFromSlice(a.IP); ok {
			return IPAddr(ip, uint16(a.Port)), true
		}
	}
	return Addr{}, false
}

// String formats the address for logs and error messages.
func (a Addr) String() string {
	if a.Type == AddrDomain {
		return net.JoinHostPort(a.Domain, strconv.Itoa(int(a.Port)))
	}
	return netip.AddrPortFrom(a.IP, a.Port).String()
}

// HostPort returns a string suitable for net.Dial.
func (a Addr) HostPort() string {
	if a.Type == AddrDomain {
		return net.JoinHostPort(a.Domain, strconv.Itoa(int(a.Port)))
	}
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(int(a.Port)))
}

// decodeAddr decodes an address of the given type from buf, returning the
// number of bytes consumed. IPv4 and IPv6 truncation yield errAddrTruncated;
// a domain that doesn't fit its declared length yields ErrInvalidDomain.
//
// Domain bytes are decoded permissively: invalid UTF-8 sequences are
// replaced, never rejected. Hostnames seen in the wild are not always clean,
// and the name is only ever handed to a resolver.
func decodeAddr(buf []byte, typ AddrType) (Addr, int, error) {
	switch typ {
	case AddrIPv4:
		if len(buf) < 6 {
			return Addr{}, 0, errAddrTruncated
		}
		ip := netip.AddrFrom4([4]byte(buf[:4]))
		port := binary.BigEndian.Uint16(buf[4:6])
		return Addr{Type: AddrIPv4, IP: ip, Port: port}, 6, nil

	case AddrIPv6:
		if len(buf) < 18 {
			return Addr{}, 0, errAddrTruncated
		}
		ip := netip.AddrFrom16([16]byte(buf[:16]))
		port := binary.BigEndian.Uint16(buf[16:18])
		return Addr{Type: AddrIPv6, IP: ip, Port: port}, 18, nil

	case AddrDomain:
		if len(buf) < 1 {
			return Addr{}, 0, ErrInvalidDomain
		}
		n := int(buf[0])
		if len(buf) < 1+n+2 {
			return Addr{}, 0, ErrInvalidDomain
		}
		name := strings.ToValidUTF8(string(buf[1:1+n]), "�")
		port := binary.BigEndian.Uint16(buf[1+n : 1+n+2])
		return Addr{Type: AddrDomain, Domain: name, Port: port}, 1 + n + 2, nil

	default:
		return Addr{}, 0, fmt.Errorf("%w: %d", ErrInvalidAddrType, typ)
	}
}

// appendAddr appends the wire encoding of a to dst. It cannot fail: domain
// lengths are bounded at construction by DomainAddr.
func appendAddr(dst []byte, a Addr) []byte {
	switch a.Type {
	case AddrIPv4:
		b := a.IP.As4()
		dst = append(dst, b[:]...)
	case AddrIPv6:
		b := a.IP.As16()
		dst = append(dst, b[:]...)
	case AddrDomain:
		dst = append(dst, byte(len(a.Domain)))
		dst = append(dst, a.Domain...)
	}
	return binary.BigEndian.AppendUint16(dst, a.Port)
}
