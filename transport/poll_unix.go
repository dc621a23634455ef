//go:build unix

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// socketFD extracts the raw file descriptor behind a net.Conn, for use
// with unix.Poll. The descriptor stays owned by conn; it is only valid
// as long as conn is open.
func socketFD(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1, errNoRawConn
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	if ctrlErr := rc.Control(func(ptr uintptr) { fd = int(ptr) }); ctrlErr != nil {
		return -1, ctrlErr
	}
	return fd, nil
}

// pollReadable performs a single non-blocking (or timeoutMs-bounded)
// readiness check on fd, the low-level building block behind
// Transport.IsReady. The dispatch package's multi-socket readiness loop
// uses WaitAny instead.
func pollReadable(fd int, timeoutMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}

// WaitAny blocks until at least one of fds becomes readable or enters an
// error state, then returns the subset that did. timeoutMs of -1 waits
// forever. This is the multi-socket readiness primitive behind the
// Two-Stage dispatcher's readiness loop: it lets one goroutine multiplex
// many in-flight calls instead of spawning one waiter per endpoint.
func WaitAny(fds []int, timeoutMs int) ([]int, error) {
	pollFds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pollFds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}
	for {
		n, err := unix.Poll(pollFds, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		ready := make([]int, 0, n)
		for i, pf := range pollFds {
			if pf.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
				ready = append(ready, fds[i])
			}
		}
		return ready, nil
	}
}
