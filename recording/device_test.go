package recording

import (
	"errors"
	"testing"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
)

const testWGSL = "@vertex fn vs_main() {}"

func newTestPipeline(t *testing.T, d *Device, vertices uint32) (*PipelineState, *Buffer) {
	t.Helper()
	vs, err := d.LoadShaderFromString(gpucore.ShaderStageVertex, testWGSL, "vs")
	if err != nil {
		t.Fatalf("LoadShaderFromString failed: %v", err)
	}
	ps, err := d.LoadShaderFromString(gpucore.ShaderStagePixel, testWGSL, "ps")
	if err != nil {
		t.Fatalf("LoadShaderFromString failed: %v", err)
	}
	layout, err := d.CreateInputLayout(vs, gpucore.VertexLayout{Stride: 28, Attributes: []gpucore.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 12},
	}})
	if err != nil {
		t.Fatalf("CreateInputLayout failed: %v", err)
	}
	vb, err := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "vb", Size: 56, Stride: 28, Dynamic: true})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}

	sm := d.StateMachine()
	sm.Reset()
	sm.SetPrimitiveTopology(gputypes.PrimitiveTopologyLineList)
	sm.SetViewport(gpucore.NewViewport(gpucore.ViewportInfo{Width: 8, Height: 8, MaxZ: 1}))
	sm.SetVertexShader(vs)
	sm.SetPixelShader(ps)
	sm.SetInputLayout(layout)
	sm.SetVertexBuffer(0, vb)
	pipe, err := sm.MakeDrawCall(vertices, 0)
	if err != nil {
		t.Fatalf("MakeDrawCall failed: %v", err)
	}
	return pipe.(*PipelineState), vb.(*Buffer)
}

func TestDeviceBufferGrowth(t *testing.T) {
	d := NewDevice(64, 64)
	buf, err := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "LineBuffer", Size: 100, Dynamic: true})
	if err != nil {
		t.Fatal(err)
	}

	if err := buf.UpdateData(make([]byte, 80)); err != nil {
		t.Fatalf("UpdateData failed: %v", err)
	}
	if buf.Size() != 100 {
		t.Errorf("Size = %d, want 100", buf.Size())
	}

	if err := buf.UpdateData(make([]byte, 150)); err != nil {
		t.Fatalf("UpdateData failed: %v", err)
	}
	if buf.Size() != 200 {
		t.Errorf("Size = %d after growth, want 200 (doubled)", buf.Size())
	}

	if err := buf.UpdateData(make([]byte, 1000)); err != nil {
		t.Fatalf("UpdateData failed: %v", err)
	}
	if buf.Size() != 1000 {
		t.Errorf("Size = %d after large growth, want 1000", buf.Size())
	}

	uploads := Filter[UpdateBuffer](d.Events())
	if len(uploads) != 3 {
		t.Fatalf("got %d uploads, want 3", len(uploads))
	}
	if uploads[0].Grew || !uploads[1].Grew || !uploads[2].Grew {
		t.Errorf("unexpected Grew flags: %+v", uploads)
	}
	if uploads[1].Bytes != 150 {
		t.Errorf("upload bytes = %d, want 150", uploads[1].Bytes)
	}
}

func TestDeviceStaticBufferTooSmall(t *testing.T) {
	d := NewDevice(64, 64)
	buf, _ := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "LineCB", Size: 64})
	if err := buf.UpdateData(make([]byte, 65)); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("err = %v, want ErrBufferTooSmall", err)
	}
	if err := buf.UpdateData(make([]byte, 64)); err != nil {
		t.Errorf("exact-size upload failed: %v", err)
	}
}

func TestDeviceBufferDestroy(t *testing.T) {
	d := NewDevice(64, 64)
	buf, _ := d.CreateBuffer(&gpucore.BufferDescriptor{Label: "b", Size: 4})
	if d.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", d.LiveBuffers())
	}
	buf.Destroy()
	buf.Destroy()
	if d.LiveBuffers() != 0 {
		t.Errorf("LiveBuffers = %d, want 0", d.LiveBuffers())
	}
	if d.Count(EvDestroyBuffer) != 1 {
		t.Errorf("DestroyBuffer events = %d, want 1", d.Count(EvDestroyBuffer))
	}
	if err := buf.UpdateData([]byte{1}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

func TestDeviceShaderDedup(t *testing.T) {
	d := NewDevice(64, 64)
	a, err := d.LoadShaderFromString(gpucore.ShaderStageVertex, testWGSL, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := d.LoadShaderFromString(gpucore.ShaderStageVertex, testWGSL, "b")
	c, _ := d.LoadShaderFromString(gpucore.ShaderStagePixel, testWGSL, "c")
	if a != b {
		t.Error("same source and stage compiled twice")
	}
	if a == c {
		t.Error("different stages share a shader")
	}
	compiles := Filter[CompileShader](d.Events())
	if len(compiles) != 3 || compiles[0].Cached || !compiles[1].Cached || compiles[2].Cached {
		t.Errorf("unexpected compile events: %+v", compiles)
	}

	if _, err := d.LoadShaderFromString(gpucore.ShaderStageVertex, "  ", "empty"); !errors.Is(err, ErrEmptyShader) {
		t.Errorf("err = %v, want ErrEmptyShader", err)
	}
}

func TestDeviceShaderLanguageMismatch(t *testing.T) {
	wgsl := NewDevice(8, 8)
	glsl := NewDevice(8, 8, WithShaderLanguage(gpucore.ShaderLanguageGLSL))
	if glsl.ShaderLanguage() != gpucore.ShaderLanguageGLSL {
		t.Fatalf("ShaderLanguage = %v", glsl.ShaderLanguage())
	}

	p, _ := newTestPipeline(t, wgsl, 2)
	glsl.StateMachine().SetFromPipelineState(p)
	if _, err := glsl.StateMachine().MakeDrawCall(2, 0); err == nil {
		t.Error("expected error for shaders of another device")
	}
}

func TestDeviceQueueAndEndFrame(t *testing.T) {
	d := NewDevice(64, 64)
	pipe, vb := newTestPipeline(t, d, 2)
	if err := vb.UpdateData(make([]byte, 56)); err != nil {
		t.Fatal(err)
	}

	q := d.AcquireRenderQueue(false, "Line Queue")
	if q2 := d.AcquireRenderQueue(false, "Line Queue"); q2 != q {
		t.Errorf("same name returned queues %d and %d", q, q2)
	}
	if err := d.QueuePipelineState(pipe, q); err != nil {
		t.Fatalf("QueuePipelineState failed: %v", err)
	}
	if len(d.Pending()) != 1 {
		t.Fatalf("Pending = %d draws, want 1", len(d.Pending()))
	}

	d.EndFrame()
	if d.FrameCounter() != 1 {
		t.Errorf("FrameCounter = %d, want 1", d.FrameCounter())
	}
	last := d.LastFrame()
	if len(last) != 1 || last[0].Queue != "Line Queue" || len(last[0].Vertices) != 56 {
		t.Errorf("LastFrame = %+v", last)
	}
	if len(d.Pending()) != 0 {
		t.Error("pending draws survived EndFrame")
	}

	// Queue IDs do not survive the frame.
	if err := d.QueuePipelineState(pipe, q); !errors.Is(err, ErrUnknownQueue) {
		t.Errorf("err = %v, want ErrUnknownQueue", err)
	}
}

func TestDeviceQueueDestroyedPipeline(t *testing.T) {
	d := NewDevice(64, 64)
	pipe, _ := newTestPipeline(t, d, 2)
	pipe.Destroy()
	q := d.AcquireRenderQueue(false, "q")
	if err := d.QueuePipelineState(pipe, q); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

func TestDeviceFailNext(t *testing.T) {
	d := NewDevice(64, 64)
	boom := errors.New("boom")
	d.FailNext(EvCreateBuffer, boom)

	if _, err := d.CreateBuffer(&gpucore.BufferDescriptor{Size: 4}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := d.CreateBuffer(&gpucore.BufferDescriptor{Size: 4}); err != nil {
		t.Fatalf("fault fired twice: %v", err)
	}
	if d.Count(EvCreateBuffer) != 1 {
		t.Errorf("failed call was recorded")
	}
}

func TestEventStrings(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{CreateBuffer{Frame: 1, Label: "LineBuffer", Size: 1008, Dynamic: true}, `[1] CreateBuffer "LineBuffer" size=1008 dynamic=true`},
		{UpdateBuffer{Frame: 5, Label: "LineBuffer", Bytes: 672, Capacity: 1008}, `[5] UpdateBuffer "LineBuffer" bytes=672 capacity=1008`},
		{QueuePipeline{Frame: 5, Queue: "Line Queue", Pipeline: 2, NumVertices: 24}, `[5] QueuePipeline "Line Queue" #2 vertices=24`},
		{EndFrame{Frame: 5, Draws: 1}, `[5] EndFrame draws=1`},
	}
	for _, tt := range tests {
		if got := tt.ev.(interface{ String() string }).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if EvQueuePipeline.String() != "QueuePipeline" || EventType(200).String() != "Unknown" {
		t.Error("EventType.String mismatch")
	}
}
