package gpucore

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

type fakeShader struct {
	stage ShaderStage
}

func (s *fakeShader) Label() string      { return s.stage.String() }
func (s *fakeShader) Destroy()           {}
func (s *fakeShader) Stage() ShaderStage { return s.stage }

type fakeBuffer struct {
	size uint64
}

func (b *fakeBuffer) Label() string               { return "fake" }
func (b *fakeBuffer) Destroy()                    {}
func (b *fakeBuffer) Size() uint64                { return b.size }
func (b *fakeBuffer) Stride() uint32              { return 4 }
func (b *fakeBuffer) UpdateData(data []byte) error { return nil }

type fakePipeline struct {
	desc PipelineDesc
}

func (p *fakePipeline) Label() string      { return "pipeline" }
func (p *fakePipeline) Destroy()           {}
func (p *fakePipeline) Desc() PipelineDesc { return p.desc }

type fakeBuilder struct {
	calls int
	err   error
}

func (b *fakeBuilder) CreatePipelineState(desc *PipelineDesc) (PipelineState, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &fakePipeline{desc: *desc}, nil
}

func bindComplete(sm *StateMachine) {
	sm.SetPrimitiveTopology(gputypes.PrimitiveTopologyLineList)
	sm.SetViewport(NewViewport(ViewportInfo{Width: 64, Height: 32, MaxZ: 1}))
	sm.SetVertexShader(&fakeShader{stage: ShaderStageVertex})
	sm.SetPixelShader(&fakeShader{stage: ShaderStagePixel})
	sm.SetInputLayout(NewInputLayout(VertexLayout{Stride: 12, Attributes: []VertexAttribute{
		{Name: "POSITION", Format: gputypes.VertexFormatFloat32x3},
	}}))
	sm.SetVertexBuffer(0, &fakeBuffer{size: 120})
}

func TestStateMachineMakeDrawCall(t *testing.T) {
	b := &fakeBuilder{}
	sm := NewStateMachine(b)
	bindComplete(sm)

	ps, err := sm.MakeDrawCall(24, 0)
	if err != nil {
		t.Fatalf("MakeDrawCall failed: %v", err)
	}
	desc := ps.Desc()
	if desc.NumVertices != 24 {
		t.Errorf("NumVertices = %d, want 24", desc.NumVertices)
	}
	if desc.Topology != gputypes.PrimitiveTopologyLineList {
		t.Errorf("Topology = %v, want line list", desc.Topology)
	}
	if b.calls != 1 {
		t.Errorf("builder calls = %d, want 1", b.calls)
	}
}

func TestStateMachineIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		unset func(sm *StateMachine)
	}{
		{"vertex shader", func(sm *StateMachine) { sm.SetVertexShader(nil) }},
		{"pixel shader", func(sm *StateMachine) { sm.SetPixelShader(nil) }},
		{"input layout", func(sm *StateMachine) { sm.SetInputLayout(nil) }},
		{"vertex buffer", func(sm *StateMachine) { sm.SetVertexBuffer(0, nil) }},
		{"viewport", func(sm *StateMachine) { sm.SetViewport(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBuilder{}
			sm := NewStateMachine(b)
			bindComplete(sm)
			tt.unset(sm)
			if _, err := sm.MakeDrawCall(2, 0); !errors.Is(err, ErrIncompleteState) {
				t.Errorf("err = %v, want ErrIncompleteState", err)
			}
			if b.calls != 0 {
				t.Errorf("builder called %d times on incomplete state", b.calls)
			}
		})
	}
}

func TestStateMachineNoBuilder(t *testing.T) {
	sm := NewStateMachine(nil)
	bindComplete(sm)
	if _, err := sm.MakeDrawCall(2, 0); !errors.Is(err, ErrNoBuilder) {
		t.Errorf("err = %v, want ErrNoBuilder", err)
	}
}

func TestStateMachineBuilderError(t *testing.T) {
	boom := errors.New("boom")
	sm := NewStateMachine(&fakeBuilder{err: boom})
	bindComplete(sm)
	if _, err := sm.MakeDrawCall(2, 0); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped builder error", err)
	}
}

func TestStateMachineSetFromPipelineState(t *testing.T) {
	sm := NewStateMachine(&fakeBuilder{})
	bindComplete(sm)
	cb := &fakeBuffer{size: 64}
	sm.SetConstantBuffer(ShaderStageVertex, 0, cb)

	first, err := sm.MakeDrawCall(2, 0)
	if err != nil {
		t.Fatalf("MakeDrawCall failed: %v", err)
	}

	sm.Reset()
	if sm.Desc().VertexShader != nil {
		t.Fatal("Reset kept the vertex shader")
	}

	sm.SetFromPipelineState(first)
	second, err := sm.MakeDrawCall(10, 0)
	if err != nil {
		t.Fatalf("MakeDrawCall after reload failed: %v", err)
	}
	d := second.Desc()
	if d.NumVertices != 10 {
		t.Errorf("NumVertices = %d, want 10", d.NumVertices)
	}
	if d.ConstantBuffer(ShaderStageVertex, 0) != cb {
		t.Error("constant buffer binding lost across SetFromPipelineState")
	}
	if first.Desc().NumVertices != 2 {
		t.Errorf("first state mutated: NumVertices = %d", first.Desc().NumVertices)
	}
}

func TestStateMachineIgnoresOutOfRangeSlots(t *testing.T) {
	sm := NewStateMachine(&fakeBuilder{})
	b := &fakeBuffer{}
	sm.SetVertexBuffer(MaxVertexBufferSlots, b)
	sm.SetVertexBuffer(-1, b)
	sm.SetConstantBuffer(ShaderStagePixel, MaxConstantBufferSlots, b)
	sm.SetConstantBuffer(ShaderStage(9), 0, b)

	d := sm.Desc()
	for i, vb := range d.VertexBuffers {
		if vb != nil {
			t.Errorf("vertex slot %d bound", i)
		}
	}
	if d.ConstantBuffer(ShaderStage(9), 0) != nil {
		t.Error("ConstantBuffer returned a buffer for an invalid stage")
	}
}
