package socks5

import "fmt"

// Method is an authentication method identifier from the version
// negotiation (RFC 1928 section 3). Every byte value is a valid Method:
// 0x00-0x02 and 0xFF are fixed by the RFC, 0x03-0x7F are IANA-assigned, and
// 0x80-0xFE are reserved for private use. Decoding is the identity on the
// raw byte and never fails.
type Method byte

const (
	MethodNoAuth       Method = 0x00
	MethodGSSAPI       Method = 0x01
	MethodUserPass     Method = 0x02
	MethodNoAcceptable Method = 0xFF
)

// IANAAssigned reports whether m is in the IANA-assigned range 0x03-0x7F.
func (m Method) IANAAssigned() bool {
	return m >= 0x03 && m <= 0x7F
}

// Private reports whether m is in the private-use range 0x80-0xFE.
func (m Method) Private() bool {
	return m >= 0x80 && m <= 0xFE
}

func (m Method) String() string {
	switch m {
	case MethodNoAuth:
		return "NO AUTHENTICATION REQUIRED"
	case MethodGSSAPI:
		return "GSSAPI"
	case MethodUserPass:
		return "USERNAME/PASSWORD"
	case MethodNoAcceptable:
		return "NO ACCEPTABLE METHODS"
	}
	if m.Private() {
		return fmt.Sprintf("PRIVATE METHOD 0x%02X", byte(m))
	}
	return fmt.Sprintf("IANA ASSIGNED METHOD 0x%02X", byte(m))
}
