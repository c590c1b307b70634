// Command linedemo draws a debug line scene for a number of frames.
//
// The recording backend prints the device trace and can write a PNG preview
// of the last frame; the noop and vulkan backends run the same scene through
// gogpu/wgpu.
//
//	linedemo -scene scenes/demo.yaml -frames 3 -trace -output demo.png
package main

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/cache"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/recording"
)

//go:embed scenes/demo.yaml
var demoScene []byte

// frameDevice is a device that can finish frames.
type frameDevice interface {
	gpucore.Device
	gpucore.Allocator
	EndFrame() error
	Destroy()
}

// recordingDevice adapts recording.Device to frameDevice.
type recordingDevice struct {
	*recording.Device
}

func (d recordingDevice) EndFrame() error {
	d.Device.EndFrame()
	return nil
}

func (recordingDevice) Destroy() {}

type config struct {
	scene   string
	backend string
	frames  int
	trace   bool
	output  string
	verbose bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.scene, "scene", "", "scene file (YAML); empty draws the built-in demo")
	flag.StringVar(&cfg.backend, "backend", "recording", "device backend: recording, noop or vulkan")
	flag.IntVar(&cfg.frames, "frames", 1, "number of frames to render")
	flag.BoolVar(&cfg.trace, "trace", false, "print the device event trace (recording backend)")
	flag.StringVar(&cfg.output, "output", "", "write a PNG preview of the last frame (recording backend)")
	flag.BoolVar(&cfg.verbose, "v", false, "enable debug logging")
	flag.Parse()

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("linedemo: %v", err)
	}
}

func run(cfg config, stdout io.Writer) error {
	if cfg.frames < 1 {
		return errors.New("-frames must be at least 1")
	}
	if cfg.verbose {
		debugdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	sc, err := loadScene(cfg.scene)
	if err != nil {
		return err
	}

	var rec *recording.Device
	var dev frameDevice
	if cfg.backend == "recording" {
		rec = recording.NewDevice(sc.Width, sc.Height)
		dev = recordingDevice{rec}
	} else {
		if dev, err = openGPU(cfg.backend, sc.Width, sc.Height); err != nil {
			return err
		}
	}
	defer dev.Destroy()

	rc := cache.NewResources(dev)
	defer rc.Close()
	lines, err := debugdraw.NewLineRenderer(dev, rc)
	if err != nil {
		return err
	}
	defer lines.Destroy()

	for range cfg.frames {
		frame := dev.FrameCounter()
		if err := sc.Draw(lines); err != nil {
			return err
		}
		n := lines.Len()
		if err := lines.Flush(sc.ViewProj(frame)); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := dev.EndFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		log.Printf("frame %d: %d vertices", frame, n)
	}

	if rec == nil {
		if cfg.trace || cfg.output != "" {
			log.Printf("-trace and -output need the recording backend")
		}
		return nil
	}
	if cfg.trace {
		for _, ev := range rec.Events() {
			fmt.Fprintln(stdout, ev)
		}
	}
	if cfg.output != "" {
		if err := writePreview(rec, cfg.output, int(sc.Width), int(sc.Height)); err != nil {
			return err
		}
		log.Printf("preview saved to %s (%dx%d)", cfg.output, sc.Width, sc.Height)
	}
	return nil
}

func loadScene(path string) (*Scene, error) {
	if path == "" {
		return ParseScene(demoScene)
	}
	return LoadScene(path)
}

func writePreview(rec *recording.Device, path string, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rec.WritePNG(f, width, height); err != nil {
		f.Close()
		return fmt.Errorf("write preview: %w", err)
	}
	return f.Close()
}
