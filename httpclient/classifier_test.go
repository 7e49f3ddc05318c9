package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "operation timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "given nil, then false", err: nil, want: false},
		{name: "given cancelled context, then false", err: context.Canceled, want: false},
		{name: "given deadline exceeded, then true", err: context.DeadlineExceeded, want: true},
		{name: "given net timeout, then true", err: &net.OpError{Op: "read", Err: timeoutError{}}, want: true},
		{name: "given connection refused, then true", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), want: true},
		{name: "given connection reset, then true", err: syscall.ECONNRESET, want: true},
		{name: "given unexpected EOF, then true", err: io.ErrUnexpectedEOF, want: true},
		{
			name: "given temporary DNS failure, then true",
			err:  &net.DNSError{Err: "server misbehaving", Name: "connpass.com", IsTemporary: true},
			want: true,
		},
		{
			name: "given unknown host, then false",
			err:  &net.DNSError{Err: "no such host", Name: "connpass.invalid", IsNotFound: true},
			want: false,
		},
		{
			name: "given certificate error, then false",
			err:  &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}},
			want: false,
		},
		{name: "given wrapped message only, then matches pattern", err: errors.New("read: connection reset by peer"), want: true},
		{name: "given unrelated error, then false", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "given nil, then false", err: nil, want: false},
		{
			name: "given certificate verification error, then true",
			err:  &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}},
			want: true,
		},
		{
			name: "given unknown host, then true",
			err:  &net.DNSError{Err: "no such host", Name: "connpass.invalid", IsNotFound: true},
			want: true,
		},
		{name: "given permission denied, then true", err: syscall.EACCES, want: true},
		{name: "given x509 message, then true", err: errors.New("x509: certificate has expired"), want: true},
		{name: "given timeout, then false", err: context.DeadlineExceeded, want: false},
		{name: "given connection refused, then false", err: syscall.ECONNREFUSED, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}
