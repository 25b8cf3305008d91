package socks5

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		want    Reply
		wantErr error
	}{
		{name: "empty", buf: nil, wantErr: ErrReplyTooShort},
		{name: "header only", buf: []byte{5, 0, 0}, wantErr: ErrReplyTooShort},
		{name: "rep out of range", buf: []byte{5, 9, 0, 1, 0, 0, 0, 0, 0, 0}, wantErr: ErrInvalidReplyCode},
		{name: "bad atyp", buf: []byte{5, 0, 0, 5, 0, 0, 0, 0, 0, 0}, wantErr: ErrInvalidAddrType},
		{name: "ipv4 truncated", buf: []byte{5, 0, 0, 1, 127, 0}, wantErr: ErrReplyTooShort},
		{name: "domain truncated", buf: []byte{5, 0, 0, 3, 4, 'h'}, wantErr: ErrInvalidDomain},
		{
			name: "succeeded",
			buf:  []byte{5, 0, 0, 1, 127, 0, 0, 1, 0x30, 0x39},
			want: Reply{Rep: RepSucceeded, Addr: IPAddr(netip.MustParseAddr("127.0.0.1"), 12345)},
		},
		{
			name: "refused with zero addr",
			buf:  []byte{5, 5, 0, 1, 0, 0, 0, 0, 0, 0},
			want: Reply{Rep: RepConnectionRefused, Addr: IPAddr(netip.MustParseAddr("0.0.0.0"), 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.buf)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if *got != tt.want {
				t.Fatalf("got %+v want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseReplyAllKnownCodes(t *testing.T) {
	for rep := RepSucceeded; rep <= RepAddrTypeNotSupported; rep++ {
		buf := []byte{5, byte(rep), 0, 1, 0, 0, 0, 0, 0, 0}
		got, err := ParseReply(buf)
		if err != nil {
			t.Fatalf("rep %d: %v", rep, err)
		}
		if got.Rep != rep {
			t.Fatalf("got %v want %v", got.Rep, rep)
		}
	}
}

func TestReplyEncodeRoundTrip(t *testing.T) {
	r := &Reply{Rep: RepSucceeded, Addr: IPAddr(netip.MustParseAddr("2001:db8::1"), 1080)}
	back, err := ParseReply(r.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if *back != *r {
		t.Fatalf("got %+v want %+v", *back, *r)
	}
}

func TestWriteReplyZeroAddr(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReply(&buf, RepCommandNotSupported, Addr{}); err != nil {
		t.Fatal(err)
	}
	want := []byte{5, 7, 0, 1, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %v want %v", buf.Bytes(), want)
	}
}
