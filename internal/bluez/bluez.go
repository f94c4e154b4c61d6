// Package bluez reads what the BlueZ daemon knows about a device over
// the system D-Bus: its alias, pairing state and advertised services.
// It never scans or pairs; it only describes devices the user already
// paired.
package bluez

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

const (
	busName           = "org.bluez"
	deviceInterface   = "org.bluez.Device1"
	propertiesGetAll  = "org.freedesktop.DBus.Properties.GetAll"
	getManagedObjects = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	unknownObject     = "org.freedesktop.DBus.Error.UnknownObject"
)

// DeviceInfo is the subset of org.bluez.Device1 a link cares about.
type DeviceInfo struct {
	Address   string
	Name      string
	Alias     string
	Paired    bool
	Trusted   bool
	Connected bool
	UUIDs     []uuid.UUID
}

// DisplayName prefers the user-set alias, then the remote name.
func (d DeviceInfo) DisplayName() string {
	switch {
	case d.Alias != "":
		return d.Alias
	case d.Name != "":
		return d.Name
	default:
		return d.Address
	}
}

// Supports reports whether the device advertises the service class.
func (d DeviceInfo) Supports(service uuid.UUID) bool {
	for _, u := range d.UUIDs {
		if u == service {
			return true
		}
	}
	return false
}

// DevicePath returns the object path BlueZ uses for address on adapter.
func DevicePath(adapter, address string) dbus.ObjectPath {
	mangled := strings.ReplaceAll(strings.ToUpper(address), ":", "_")
	return dbus.ObjectPath("/org/bluez/" + adapter + "/dev_" + mangled)
}

// Client is a connection to the system bus.
type Client struct {
	conn *dbus.Conn
}

// Connect opens a private connection to the system bus.
func Connect(ctx context.Context) (*Client, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fault.Wrap(err,
			fctx.With(ctx, "error_at", "system-bus"),
			ftag.With(ftag.Internal),
			fmsg.With("Cannot connect to the system D-Bus"),
		)
	}
	return &Client{conn: conn}, nil
}

// Close releases the bus connection.
func (c *Client) Close() error { return c.conn.Close() }

// Lookup reads the properties of one device.
func (c *Client) Lookup(ctx context.Context, adapter, address string) (DeviceInfo, error) {
	path := DevicePath(adapter, address)
	ctx = fctx.WithMeta(ctx, "adapter", adapter, "address", address)

	var props map[string]dbus.Variant
	err := c.conn.Object(busName, path).
		CallWithContext(ctx, propertiesGetAll, 0, deviceInterface).
		Store(&props)
	if err != nil {
		tag := ftag.Internal
		msg := "Cannot read device properties from BlueZ"
		if errorName(err) == unknownObject {
			tag = ftag.NotFound
			msg = "Device is not known to BlueZ, pair it first"
		}
		return DeviceInfo{}, fault.Wrap(err,
			fctx.With(ctx, "error_at", "device-properties"),
			ftag.With(tag),
			fmsg.With(msg),
		)
	}

	info := parseDevice(props)
	if info.Address == "" {
		info.Address = strings.ToUpper(address)
	}
	return info, nil
}

// Paired lists the paired devices of adapter, sorted by address.
func (c *Client) Paired(ctx context.Context, adapter string) ([]DeviceInfo, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := c.conn.Object(busName, "/").
		CallWithContext(ctx, getManagedObjects, 0).
		Store(&objects)
	if err != nil {
		return nil, fault.Wrap(err,
			fctx.With(ctx, "error_at", "managed-objects", "adapter", adapter),
			ftag.With(ftag.Internal),
			fmsg.With("Cannot list BlueZ devices"),
		)
	}

	prefix := "/org/bluez/" + adapter + "/dev_"
	var out []DeviceInfo
	for path, ifaces := range objects {
		if !strings.HasPrefix(string(path), prefix) {
			continue
		}
		props, ok := ifaces[deviceInterface]
		if !ok {
			continue
		}
		if info := parseDevice(props); info.Paired {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// Lookup connects to the system bus, reads one device and disconnects.
func Lookup(ctx context.Context, adapter, address string) (DeviceInfo, error) {
	c, err := Connect(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	defer c.Close()
	return c.Lookup(ctx, adapter, address)
}

// ListPaired connects to the system bus, lists the paired devices of
// adapter and disconnects.
func ListPaired(ctx context.Context, adapter string) ([]DeviceInfo, error) {
	c, err := Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Paired(ctx, adapter)
}

// IsNotFound reports whether err means BlueZ has no such device.
func IsNotFound(err error) bool { return ftag.Get(err) == ftag.NotFound }

func parseDevice(props map[string]dbus.Variant) DeviceInfo {
	var info DeviceInfo
	info.Address, _ = props["Address"].Value().(string)
	info.Name, _ = props["Name"].Value().(string)
	info.Alias, _ = props["Alias"].Value().(string)
	info.Paired, _ = props["Paired"].Value().(bool)
	info.Trusted, _ = props["Trusted"].Value().(bool)
	info.Connected, _ = props["Connected"].Value().(bool)

	ids, _ := props["UUIDs"].Value().([]string)
	for _, s := range ids {
		if u, err := uuid.Parse(s); err == nil {
			info.UUIDs = append(info.UUIDs, u)
		}
	}
	return info
}

func errorName(err error) string {
	var byValue dbus.Error
	if errors.As(err, &byValue) {
		return byValue.Name
	}
	var byPtr *dbus.Error
	if errors.As(err, &byPtr) {
		return byPtr.Name
	}
	return ""
}
