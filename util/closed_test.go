package util

import (
	"fmt"
	"io"
	"net"
	"os"
	"testing"
)

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net closed", net.ErrClosed, true},
		{"os closed", fmt.Errorf("read rfcomm: %w", os.ErrClosed), true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"op error", &net.OpError{Op: "read", Net: "tcp", Err: net.ErrClosed}, true},
		{"eof is a remote hangup", io.EOF, false},
		{"other", fmt.Errorf("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsClosed_Pipe(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	a.Close()

	_, err := a.Read(make([]byte, 1))
	if !IsClosed(err) {
		t.Errorf("read after local close: IsClosed(%v) = false", err)
	}
}
