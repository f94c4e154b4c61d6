package transmit

import "strings"

// Command names as printed on the controller buttons.
var commandNames = map[string]byte{
	"up":        'U',
	"forward":   'F',
	"back":      'B',
	"down":      'D',
	"left":      'L',
	"right":     'R',
	"startstop": 'S',
	"cw":        'C',
	"ccw":       'W',
	"option":    'O',
}

// ParseCommand accepts a single command letter in either case or a
// button name such as "forward" or "ccw".
func ParseCommand(s string) (byte, bool) {
	if len(s) == 1 {
		c := strings.ToUpper(s)[0]
		return c, Valid(c)
	}
	c, ok := commandNames[strings.ToLower(s)]
	return c, ok
}

// CommandName returns the button name of cmd, or "" if cmd is invalid.
func CommandName(cmd byte) string {
	for name, c := range commandNames {
		if c == cmd {
			return name
		}
	}
	return ""
}
