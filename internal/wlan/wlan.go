// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package wlan scans nearby Wi-Fi access points for network based positioning.
package wlan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"
)

// AccessPoint is a single access point as submitted to network positioning services.
type AccessPoint struct {
	MACAddress string
	// SignalStrength is in dBm.
	SignalStrength int32
	LastSeen       time.Duration
}

// Scanner returns the currently visible access points.
type Scanner interface {
	AccessPoints(ctx context.Context) ([]AccessPoint, error)
}

// Client scans access points via nl80211.
type Client struct {
	wlan *wifi.Client
}

// New returns a Client backed by the nl80211 interface of the kernel.
func New() (*Client, error) {
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}
	return &Client{wlan: wlan}, nil
}

// Close releases the netlink socket.
func (c *Client) Close() error {
	return c.wlan.Close()
}

// AccessPoints returns the access points visible to all station interfaces. Hidden networks and
// networks that opted out of positioning with the "_nomap" suffix are skipped.
func (c *Client) AccessPoints(ctx context.Context) ([]AccessPoint, error) {
	ifaces, err := c.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var list []AccessPoint
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		bss, err := c.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		list = append(list, filter(bss)...)
	}
	return list, nil
}

func filter(bss []*wifi.BSS) []AccessPoint {
	var list []AccessPoint
	for _, ap := range bss {
		if ap == nil || ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
			continue
		}
		list = append(list, AccessPoint{
			MACAddress:     ap.BSSID.String(),
			SignalStrength: ap.Signal / 100,
			LastSeen:       ap.LastSeen,
		})
	}
	return list
}
