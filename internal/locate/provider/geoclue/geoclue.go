// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoclue

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/godbus/dbus/v5"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

const (
	name = "geoclue"

	DefaultDesktopID = "location-finder"

	busName         = "org.freedesktop.GeoClue2"
	managerPath     = "/org/freedesktop/GeoClue2/Manager"
	managerIface    = "org.freedesktop.GeoClue2.Manager"
	clientIface     = "org.freedesktop.GeoClue2.Client"
	locationIface   = "org.freedesktop.GeoClue2.Location"
	locationUpdated = "LocationUpdated"

	dbusListNames            = "org.freedesktop.DBus.ListNames"
	dbusListActivatableNames = "org.freedesktop.DBus.ListActivatableNames"
	dbusAccessDenied         = "org.freedesktop.DBus.Error.AccessDenied"

	accuracyLevelStreet = uint32(6)
	accuracyLevelExact  = uint32(8)

	signalBufferSize = 4
)

var (
	ErrServiceNotFound = errors.New("GeoClue2 service is not available on the system bus")
	ErrInvalidSignal   = errors.New("received malformed LocationUpdated signal")
)

// GeolocationGeoClueProvider requests a single position fix from the GeoClue2 D-Bus service.
type GeolocationGeoClueProvider struct {
	name      string
	desktopID string
	locateFn  func(ctx context.Context, opts locate.Options) (locate.Coordinates, error)
	checkFn   func(ctx context.Context) error
}

// NewGeolocationGeoClueProvider returns a provider that registers with GeoClue2 under the given
// desktop ID. An empty ID selects DefaultDesktopID.
func NewGeolocationGeoClueProvider(desktopID string) *GeolocationGeoClueProvider {
	if desktopID == "" {
		desktopID = DefaultDesktopID
	}
	provider := &GeolocationGeoClueProvider{
		name:      name,
		desktopID: desktopID,
	}
	provider.locateFn = provider.locate
	provider.checkFn = provider.checkAvailable
	return provider
}

func (p *GeolocationGeoClueProvider) Name() string {
	return p.name
}

// CheckAvailable reports whether the GeoClue2 service is running or activatable on the system bus.
func (p *GeolocationGeoClueProvider) CheckAvailable(ctx context.Context) error {
	return p.checkFn(ctx)
}

// Acquire starts a GeoClue2 client and waits for the first LocationUpdated signal.
func (p *GeolocationGeoClueProvider) Acquire(ctx context.Context, opts locate.Options) (locate.Coordinates, error) {
	coords, err := p.locateFn(ctx, opts)
	if err != nil {
		switch {
		case isAccessDenied(err):
			return locate.Coordinates{}, locate.NewPositionError(locate.CodePermissionDenied, err)
		case ctx.Err() != nil:
			return locate.Coordinates{}, locate.NewPositionError(locate.CodeTimeout, err)
		default:
			return locate.Coordinates{}, locate.NewPositionError(locate.CodePositionUnavailable, err)
		}
	}
	return coords, nil
}

func (p *GeolocationGeoClueProvider) checkAvailable(ctx context.Context) (err error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	for _, method := range []string{dbusListNames, dbusListActivatableNames} {
		var names []string
		if err = conn.BusObject().CallWithContext(ctx, method, 0).Store(&names); err != nil {
			return fmt.Errorf("failed to call %s: %w", method, err)
		}
		if slices.Contains(names, busName) {
			return nil
		}
	}
	return ErrServiceNotFound
}

func (p *GeolocationGeoClueProvider) locate(ctx context.Context, opts locate.Options) (coords locate.Coordinates, err error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return coords, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	manager := conn.Object(busName, managerPath)
	var clientPath dbus.ObjectPath
	if err = manager.CallWithContext(ctx, managerIface+".CreateClient", 0).Store(&clientPath); err != nil {
		return coords, fmt.Errorf("failed to create GeoClue2 client: %w", err)
	}
	defer func() {
		// The client is bound to our bus connection, removing it is best effort.
		_ = manager.Call(managerIface+".DeleteClient", 0, clientPath).Err
	}()

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(p.desktopID)); err != nil {
		return coords, fmt.Errorf("failed to set desktop id: %w", err)
	}
	level := accuracyLevelStreet
	if opts.HighAccuracy {
		level = accuracyLevelExact
	}
	if err = client.SetProperty(clientIface+".RequestedAccuracyLevel", dbus.MakeVariant(level)); err != nil {
		return coords, fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	if err = conn.AddMatchSignal(dbus.WithMatchObjectPath(clientPath), dbus.WithMatchInterface(clientIface),
		dbus.WithMatchMember(locationUpdated)); err != nil {
		return coords, fmt.Errorf("failed to subscribe to LocationUpdated: %w", err)
	}
	sigCh := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(sigCh)
	defer conn.RemoveSignal(sigCh)

	if err = client.CallWithContext(ctx, clientIface+".Start", 0).Err; err != nil {
		return coords, fmt.Errorf("failed to start GeoClue2 client: %w", err)
	}
	defer func() {
		_ = client.Call(clientIface+".Stop", 0).Err
	}()

	for {
		select {
		case <-ctx.Done():
			return coords, ctx.Err()
		case sig, ok := <-sigCh:
			if !ok {
				return coords, errors.New("system bus connection closed")
			}
			if sig.Path != clientPath || sig.Name != clientIface+"."+locationUpdated {
				continue
			}
			locationPath, err := newLocationPath(sig)
			if err != nil {
				return coords, err
			}
			return readLocation(conn.Object(busName, locationPath))
		}
	}
}

// newLocationPath returns the object path of the new location from a LocationUpdated signal.
func newLocationPath(sig *dbus.Signal) (dbus.ObjectPath, error) {
	if len(sig.Body) != 2 {
		return "", ErrInvalidSignal
	}
	path, ok := sig.Body[1].(dbus.ObjectPath)
	if !ok || !path.IsValid() {
		return "", ErrInvalidSignal
	}
	return path, nil
}

func readLocation(location dbus.BusObject) (locate.Coordinates, error) {
	values := make(map[string]float64, 3)
	for _, property := range []string{"Latitude", "Longitude", "Accuracy"} {
		variant, err := location.GetProperty(locationIface + "." + property)
		if err != nil {
			return locate.Coordinates{}, fmt.Errorf("failed to read location %s: %w", property, err)
		}
		value, ok := variant.Value().(float64)
		if !ok {
			return locate.Coordinates{}, fmt.Errorf("location %s has unexpected type %s", property,
				variant.Signature())
		}
		values[property] = value
	}
	return locate.NewCoordinates(values["Latitude"], values["Longitude"], values["Accuracy"]), nil
}

func isAccessDenied(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == dbusAccessDenied
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == dbusAccessDenied
	}
	return false
}
