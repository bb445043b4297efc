// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package wgpu_engine

import (
	"fmt"
	"log/slog"

	"honnef.co/go/wgpu"
)

// NewHeadless creates a WebGPU instance, adapter and device without a surface
// and returns an engine owning them together with the device's queue. It
// fails on machines without a usable adapter.
func NewHeadless(logger *slog.Logger) (*Engine, *wgpu.Queue, error) {
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		instance.Release()
		return nil, nil, fmt.Errorf("request adapter: %w", err)
	}
	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "tilegen"})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, nil, fmt.Errorf("request device: %w", err)
	}

	eng := New(dev, logger)
	eng.instance = instance
	eng.adapter = adapter
	eng.logger.Info("created headless device")
	return eng, dev.GetQueue(), nil
}
