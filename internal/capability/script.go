package capability

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	linkerr "bluepad/internal/errors"
	"bluepad/internal/transmit"
)

// Script reads one instruction per line:
//
//	F               press F (letters or button names such as "forward")
//	press F         same
//	release         release the held command
//	hold F 350ms    press, wait, release
//	wait 1s         pause
//	send AT+NAME    write a raw line to the device
//	quit            stop reading
//
// Blank lines and lines starting with '#' are ignored.  The held
// command is released when the script ends.
type Script struct{}

type opKind int

const (
	opPress opKind = iota
	opRelease
	opHold
	opWait
	opSend
	opQuit
)

type step struct {
	op   opKind
	cmd  byte
	dur  time.Duration
	text string
}

// Handle executes the script from io.In.
func (s Script) Handle(ctx context.Context, pad Pad, sio IO) error {
	defer pad.Release() //nolint:errcheck

	sc := bufio.NewScanner(sio.In)
	for line := 1; sc.Scan(); line++ {
		st, ok, err := parseStep(sc.Text())
		if err != nil {
			return fmt.Errorf("script line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if sio.Logger != nil {
			sio.Logger.Debug("script %d: %s", line, strings.TrimSpace(sc.Text()))
		}
		done, err := s.run(ctx, pad, st)
		if err != nil {
			return fmt.Errorf("script line %d: %w", line, err)
		}
		if done {
			return nil
		}
	}
	return sc.Err()
}

func (Script) run(ctx context.Context, pad Pad, st step) (bool, error) {
	switch st.op {
	case opPress:
		return false, pad.Press(st.cmd)
	case opRelease:
		return false, pad.Release()
	case opHold:
		if err := pad.Press(st.cmd); err != nil {
			return false, err
		}
		if err := wait(ctx, pad, st.dur); err != nil {
			return false, err
		}
		return false, pad.Release()
	case opWait:
		return false, wait(ctx, pad, st.dur)
	case opSend:
		return false, pad.SendRaw(transmit.Frame(st.text))
	case opQuit:
		return true, nil
	}
	return false, nil
}

// wait sleeps for d unless the link ends or ctx is cancelled first.
func wait(ctx context.Context, pad Pad, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-pad.Done():
		return linkerr.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseStep returns ok=false for blank and comment lines.
func parseStep(line string) (step, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return step{}, false, nil
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(verb) {
	case "press":
		if len(args) != 1 {
			return step{}, false, fmt.Errorf("usage: press <command>")
		}
		cmd, err := command(args[0])
		return step{op: opPress, cmd: cmd}, err == nil, err
	case "release":
		return step{op: opRelease}, true, nil
	case "hold":
		if len(args) != 2 {
			return step{}, false, fmt.Errorf("usage: hold <command> <duration>")
		}
		cmd, err := command(args[0])
		if err != nil {
			return step{}, false, err
		}
		d, err := duration(args[1])
		return step{op: opHold, cmd: cmd, dur: d}, err == nil, err
	case "wait", "sleep":
		if len(args) != 1 {
			return step{}, false, fmt.Errorf("usage: wait <duration>")
		}
		d, err := duration(args[0])
		return step{op: opWait, dur: d}, err == nil, err
	case "send":
		if rest == "" {
			return step{}, false, fmt.Errorf("usage: send <text>")
		}
		return step{op: opSend, text: rest}, true, nil
	case "quit", "exit":
		return step{op: opQuit}, true, nil
	}

	if len(args) == 0 {
		if cmd, ok := transmit.ParseCommand(verb); ok {
			return step{op: opPress, cmd: cmd}, true, nil
		}
	}
	return step{}, false, fmt.Errorf("unknown instruction %q", line)
}

func command(s string) (byte, error) {
	cmd, ok := transmit.ParseCommand(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", linkerr.ErrUnknownCommand, s)
	}
	return cmd, nil
}

func duration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
