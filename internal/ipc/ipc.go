// Package ipc provides helpers for the local unix-socket channel used by CLI
// tools (copy/paste/history/status/trigger) to talk to a running watch
// daemon instead of opening the store and clipboard themselves.
//
// The socket carries newline-delimited JSON messages (see internal/wire).
// CLI sub-commands probe for it and fall back to direct store access if it
// is absent. No auth — the socket is local and owner-restricted by the OS.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path for the IPC socket.
//
// $XDG_RUNTIME_DIR/snipstash.sock when set, else $TMPDIR/snipstash.sock.
// Override with $SNIPSTASH_SOCKET.
func SocketPath() string {
	if s := os.Getenv("SNIPSTASH_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "snipstash.sock")
	}
	return filepath.Join(os.TempDir(), "snipstash.sock")
}

// IsRunning reports whether a watch daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the IPC socket path, removing
// any stale socket file first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the daemon's IPC socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
