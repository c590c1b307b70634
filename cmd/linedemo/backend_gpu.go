//go:build !nogpu

package main

import (
	"fmt"
	"log"

	"github.com/gogpu/debugdraw/backend/wgpu"
)

func openGPU(name string, width, height uint32) (frameDevice, error) {
	cfg := wgpu.Config{Width: width, Height: height}
	var (
		dev *wgpu.Device
		err error
	)
	switch name {
	case "noop":
		dev, err = wgpu.OpenNoop(cfg)
	case "vulkan":
		dev, err = wgpu.Open(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("GPU: %s", dev.Info())
	return dev, nil
}
