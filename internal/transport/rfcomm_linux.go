//go:build linux

package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// pollSlice bounds each wait for a pending connect so a cancelled
// context is noticed promptly.
const pollSlice = 100 * time.Millisecond

// Dial opens an RFCOMM link to dev.Address, trying each candidate
// channel in order.  Every failed socket is closed before the next
// attempt.
func (d *RFCOMMDialer) Dial(ctx context.Context, dev Device) (Conn, error) {
	addr, err := bdaddr(dev.Address)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}

	var errs []error
	for _, ch := range d.channels(dev) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := d.dialChannel(ctx, addr, ch)
		if err == nil {
			return f, nil
		}
		errs = append(errs, fmt.Errorf("channel %d: %w", ch, err))
	}
	return nil, fmt.Errorf("service %s: %w", d.service(), errors.Join(errs...))
}

// dialChannel performs a non-blocking connect and hands the socket to
// the runtime poller, so closing the returned file unblocks a Read in
// another goroutine.
func (d *RFCOMMDialer) dialChannel(ctx context.Context, addr [6]byte, ch uint8) (*os.File, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: ch}
	err = unix.Connect(fd, sa)
	if err != nil && !errors.Is(err, unix.EINPROGRESS) {
		unix.Close(fd)
		return nil, os.NewSyscallError("connect", err)
	}
	if err != nil {
		if err := awaitConnect(ctx, fd); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	return os.NewFile(uintptr(fd), fmt.Sprintf("rfcomm:%d", ch)), nil
}

func awaitConnect(ctx context.Context, fd int) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, int(pollSlice/time.Millisecond))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return os.NewSyscallError("poll", err)
		}
		if n == 0 {
			continue
		}
		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return os.NewSyscallError("getsockopt", err)
		}
		if soErr != 0 {
			return os.NewSyscallError("connect", unix.Errno(soErr))
		}
		return nil
	}
}
