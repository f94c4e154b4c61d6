package capability

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"bluepad/internal/transmit"
)

// DefaultReleaseAfter outlasts the usual terminal autorepeat delay, so
// a key held down stays pressed between its first and second repeat.
const DefaultReleaseAfter = 550 * time.Millisecond

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// arrows maps the final byte of an ESC [ x sequence to a command.
var arrows = map[byte]byte{
	'A': 'F', // up
	'B': 'B', // down
	'C': 'R', // right
	'D': 'L', // left
}

// Keys drives the pad from a keyboard.  A terminal only reports key
// presses, never releases, so a command stays held while the key's
// autorepeat keeps arriving and is released ReleaseAfter after the
// last one.  Space releases at once; q or Ctrl-C quits.
type Keys struct {
	ReleaseAfter time.Duration
}

// Handle puts io.In into raw mode when it is a terminal and translates
// keystrokes until the user quits or the link ends.
func (k Keys) Handle(ctx context.Context, pad Pad, kio IO) error {
	releaseAfter := k.ReleaseAfter
	if releaseAfter <= 0 {
		releaseAfter = DefaultReleaseAfter
	}

	if f, ok := kio.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), old) //nolint:errcheck
	}
	if kio.Out != nil {
		fmt.Fprint(kio.Out, "keys: U F B D L R S C W O, arrows move, space releases, q quits\r\n")
	}

	// The reader goroutine stays blocked on In after Handle returns;
	// stdin cannot be unblocked portably.
	keys := make(chan byte, 64)
	go readKeys(kio.In, keys)

	release := time.NewTimer(releaseAfter)
	release.Stop()
	defer release.Stop()

	var held byte
	letGo := func() {
		if held != 0 {
			pad.Release() //nolint:errcheck
			held = 0
		}
	}
	defer letGo()

	var esc []byte
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pad.Done():
			return nil

		case <-release.C:
			letGo()

		case b, ok := <-keys:
			if !ok {
				return nil
			}

			// Collect ESC [ x arrow sequences.
			if len(esc) > 0 || b == keyEsc {
				esc = append(esc, b)
				cmd, complete := arrow(esc)
				if !complete {
					continue
				}
				bare := esc[1] != '['
				esc = esc[:0]
				switch {
				case bare && b == keyEsc:
					// Esc Esc: the second one may open a sequence.
					esc = append(esc, b)
					continue
				case bare:
					// A lone Esc; b is an ordinary key.
				case cmd == 0:
					continue
				default:
					b = cmd
				}
			}

			switch b {
			case 'q', 'Q', keyCtrlC:
				return nil
			case ' ':
				release.Stop()
				letGo()
				continue
			}

			cmd, ok := transmit.ParseCommand(string(b))
			if !ok {
				continue
			}
			if cmd != held {
				if err := pad.Press(cmd); err != nil {
					return err
				}
				held = cmd
			}
			release.Reset(releaseAfter)
		}
	}
}

// arrow classifies a partial escape sequence.  Sequences other than
// the four arrows complete with cmd 0.  An Esc not followed by '['
// completes after two bytes, leaving the second for the caller.
func arrow(seq []byte) (cmd byte, complete bool) {
	switch {
	case len(seq) == 1:
		return 0, false
	case seq[1] != '[':
		return 0, true
	case len(seq) == 2:
		return 0, false
	default:
		return arrows[seq[2]], true
	}
}

func readKeys(r io.Reader, out chan<- byte) {
	defer close(out)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			out <- b
		}
		if err != nil {
			return
		}
	}
}
