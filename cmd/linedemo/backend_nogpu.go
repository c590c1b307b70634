//go:build nogpu

package main

import "fmt"

func openGPU(name string, _, _ uint32) (frameDevice, error) {
	return nil, fmt.Errorf("backend %q unavailable: built with nogpu", name)
}
