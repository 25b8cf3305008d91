package socks5

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseAuthRequest(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		wantUser string
		wantPass string
		wantErr  error
	}{
		{name: "empty", buf: nil, wantErr: ErrAuthMessageTooShort},
		{name: "one byte", buf: []byte{1}, wantErr: ErrAuthMessageTooShort},
		{name: "bad version", buf: []byte{2, 1, 'a', 1, 'b'}, wantErr: ErrUnsupportedAuthVersion},
		{name: "truncated username", buf: []byte{1, 5, 'a', 'b'}, wantErr: ErrAuthTruncated},
		{name: "missing password length", buf: []byte{1, 2, 'a', 'b'}, wantErr: ErrAuthTruncated},
		{name: "truncated password", buf: []byte{1, 1, 'a', 4, 'x', 'y'}, wantErr: ErrAuthTruncated},
		{name: "invalid utf8 username", buf: []byte{1, 1, 0xFF, 1, 'b'}, wantErr: ErrInvalidEncoding},
		{name: "invalid utf8 password", buf: []byte{1, 1, 'a', 1, 0xFE}, wantErr: ErrInvalidEncoding},
		{
			name:     "admin/admin",
			buf:      []byte{1, 5, 'a', 'd', 'm', 'i', 'n', 5, 'a', 'd', 'm', 'i', 'n'},
			wantUser: "admin",
			wantPass: "admin",
		},
		{
			name:     "utf8 credentials",
			buf:      append(append([]byte{1, 4}, "héo"...), append([]byte{3}, "pwd"...)...),
			wantUser: "héo",
			wantPass: "pwd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuthRequest(tt.buf)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.Username != tt.wantUser || got.Password != tt.wantPass {
				t.Fatalf("got %q/%q want %q/%q", got.Username, got.Password, tt.wantUser, tt.wantPass)
			}
		})
	}
}

func TestAuthRequestEncode(t *testing.T) {
	req := AuthRequest{Username: "user", Password: "pass"}
	buf, err := req.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 4, 'u', 's', 'e', 'r', 4, 'p', 'a', 's', 's'}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got %v want %v", buf, want)
	}

	back, err := ParseAuthRequest(buf)
	if err != nil {
		t.Fatal(err)
	}
	if back != req {
		t.Fatalf("got %+v want %+v", back, req)
	}
}

func TestAuthRequestEncodeBounds(t *testing.T) {
	long := strings.Repeat("x", 256)
	tests := []struct {
		name string
		req  AuthRequest
	}{
		{name: "empty username", req: AuthRequest{Username: "", Password: "p"}},
		{name: "empty password", req: AuthRequest{Username: "u", Password: ""}},
		{name: "long username", req: AuthRequest{Username: long, Password: "p"}},
		{name: "long password", req: AuthRequest{Username: "u", Password: long}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.Encode(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAuthReply(t *testing.T) {
	if got := EncodeAuthReply(AuthSuccess); !bytes.Equal(got, []byte{1, 0}) {
		t.Fatalf("got %v", got)
	}
	if got := EncodeAuthReply(AuthFailure); !bytes.Equal(got, []byte{1, 1}) {
		t.Fatalf("got %v", got)
	}

	status, err := ParseAuthReply([]byte{1, 0})
	if err != nil || status != AuthSuccess {
		t.Fatalf("got %d, %v", status, err)
	}
	// Any non-zero status is a failure.
	status, err = ParseAuthReply([]byte{1, 0x7F})
	if err != nil || status == AuthSuccess {
		t.Fatalf("got %d, %v", status, err)
	}

	if _, err := ParseAuthReply([]byte{1}); !errors.Is(err, ErrAuthMessageTooShort) {
		t.Fatalf("got %v", err)
	}
	if _, err := ParseAuthReply([]byte{5, 0}); !errors.Is(err, ErrUnsupportedAuthVersion) {
		t.Fatalf("got %v", err)
	}
}
