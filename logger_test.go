package debugdraw

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw/cache"
	"github.com/gogpu/debugdraw/recording"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	if h.Enabled(context.Background(), slog.LevelError) {
		t.Error("nopHandler should never be enabled")
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle returned %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("k", 1)}).(nopHandler); !ok {
		t.Error("WithAttrs should return nopHandler")
	}
	if _, ok := h.WithGroup("g").(nopHandler); !ok {
		t.Error("WithGroup should return nopHandler")
	}
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(l)
	if Logger() != l {
		t.Fatal("Logger did not return the configured logger")
	}
	Logger().Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("log output = %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(l)
		}()
		go func() {
			defer wg.Done()
			_ = Logger()
		}()
	}
	wg.Wait()
}

// loggingDevice wraps a recording device to observe logger propagation.
type loggingDevice struct {
	*recording.Device
	got *slog.Logger
}

func (d *loggingDevice) SetLogger(l *slog.Logger) {
	d.got = l
	d.Device.SetLogger(l)
}

func TestLoggerPropagatesToDevice(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(l)

	dev := &loggingDevice{Device: recording.NewDevice(64, 64)}
	rc := cache.NewResources(dev)
	lr, err := NewLineRenderer(dev, rc)
	if err != nil {
		t.Fatal(err)
	}
	defer lr.Destroy()
	if dev.got != l {
		t.Fatal("renderer did not hand its logger to the device")
	}

	lr.AddLine(V(mgl32.Vec3{}, White), V(mgl32.Vec3{1, 0, 0}, White))
	if err := lr.Flush(mgl32.Ident4()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"line resources created", "lines flushed"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q:\n%s", want, out)
		}
	}
	dev.SetLogger(nil)
}

func TestPropagateLoggerIgnoresPlainValues(t *testing.T) {
	// Must not panic on values without SetLogger.
	propagateLogger(struct{}{}, Logger())
	propagateLogger(nil, Logger())
}
