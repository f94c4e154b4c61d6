package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"bluepad/internal/bluez"
	"bluepad/util"
)

// ListMode prints the devices paired with the adapter, marking those
// that advertise Service.
type ListMode struct {
	Adapter string
	Service uuid.UUID
	Source  func(ctx context.Context, adapter string) ([]bluez.DeviceInfo, error)
	Logger  *util.Logger

	Stdout io.Writer
}

func (m *ListMode) Run(ctx context.Context) error {
	devs, err := m.Source(ctx, m.Adapter)
	if err != nil {
		return fmt.Errorf("list paired devices: %w", err)
	}
	if len(devs) == 0 {
		m.Logger.Info("no paired devices on %s", m.Adapter)
		return nil
	}

	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tNAME\tSPP\tCONNECTED")
	for _, d := range devs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Address, d.DisplayName(),
			yesNo(d.Supports(m.Service)), yesNo(d.Connected))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
