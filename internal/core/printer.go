package core

import (
	"bytes"
	"fmt"
	"io"

	"bluepad/internal/session"
	"bluepad/util"
)

var (
	_ session.Listener      = (*Printer)(nil)
	_ session.ErrorListener = (*Printer)(nil)
)

// Printer is the session listener of the CLI.  Device messages go to
// Out one per line; link events are logged.
type Printer struct {
	Out    io.Writer
	Logger *util.Logger
}

func (p *Printer) OnConnected(name string)     { p.Logger.Debug("event: connected %s", name) }
func (p *Printer) OnConnectFailed(name string) { p.Logger.Debug("event: connect failed %s", name) }
func (p *Printer) OnDisconnected()             { p.Logger.Debug("event: disconnected") }
func (p *Printer) OnError(err error)           { p.Logger.Verbose("%v", err) }

func (p *Printer) OnMessage(text string) {
	fmt.Fprintln(p.Out, text)
}

// crlfWriter turns LF into CRLF for a terminal in raw mode.
type crlfWriter struct{ w io.Writer }

func (c crlfWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return c.w.Write(p)
	}
	var buf bytes.Buffer
	for i, b := range p {
		if b == '\n' && (i == 0 || p[i-1] != '\r') {
			buf.WriteByte('\r')
		}
		buf.WriteByte(b)
	}
	if _, err := c.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
