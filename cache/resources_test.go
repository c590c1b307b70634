package cache

import (
	"errors"
	"testing"

	"github.com/gogpu/debugdraw/gpucore"
)

type testBuffer struct {
	label     string
	size      uint64
	destroyed int
}

func (b *testBuffer) Label() string                { return b.label }
func (b *testBuffer) Destroy()                     { b.destroyed++ }
func (b *testBuffer) Size() uint64                 { return b.size }
func (b *testBuffer) Stride() uint32               { return 1 }
func (b *testBuffer) UpdateData(data []byte) error { return nil }

type testAllocator struct {
	created []*testBuffer
	err     error
}

func (a *testAllocator) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.Buffer, error) {
	if a.err != nil {
		return nil, a.err
	}
	b := &testBuffer{label: desc.Label, size: desc.Size}
	a.created = append(a.created, b)
	return b, nil
}

type testResource struct {
	destroyed int
}

func (r *testResource) Label() string { return "test" }
func (r *testResource) Destroy()      { r.destroyed++ }

func TestResourcesCreateAndDeleteBuffer(t *testing.T) {
	alloc := &testAllocator{}
	rc := NewResources(alloc)

	buf, err := rc.CreateBuffer(&gpucore.BufferDescriptor{Label: "LineBuffer", Size: 64})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	if rc.OwnedLen() != 1 {
		t.Errorf("OwnedLen = %d, want 1", rc.OwnedLen())
	}

	rc.DeleteResource(buf)
	if rc.OwnedLen() != 0 {
		t.Errorf("OwnedLen = %d after delete, want 0", rc.OwnedLen())
	}
	if alloc.created[0].destroyed != 1 {
		t.Errorf("buffer destroyed %d times, want 1", alloc.created[0].destroyed)
	}
}

func TestResourcesCreateBufferErrors(t *testing.T) {
	if _, err := NewResources(nil).CreateBuffer(&gpucore.BufferDescriptor{}); !errors.Is(err, ErrNoAllocator) {
		t.Errorf("expected ErrNoAllocator, got %v", err)
	}

	boom := errors.New("out of memory")
	rc := NewResources(&testAllocator{err: boom})
	if _, err := rc.CreateBuffer(&gpucore.BufferDescriptor{Label: "x"}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped allocator error, got %v", err)
	}
	if rc.OwnedLen() != 0 {
		t.Error("failed allocation was tracked")
	}
}

func TestResourcesRefCounting(t *testing.T) {
	rc := NewResources(nil)
	vp, err := rc.CreateViewport(gpucore.ViewportInfo{Width: 800, Height: 600, MaxZ: 1})
	if err != nil {
		t.Fatalf("CreateViewport failed: %v", err)
	}
	h := vp.Hash()

	if _, ok := rc.CachedObject(h); ok {
		t.Fatal("viewport cached before AddToCache")
	}
	rc.AddToCache(h, vp)

	got, ok := gpucore.Cached[*gpucore.Viewport](rc, h)
	if !ok || got != vp {
		t.Fatalf("Cached returned %v, %v", got, ok)
	}
	if rc.RefCount(h) != 2 {
		t.Errorf("RefCount = %d, want 2", rc.RefCount(h))
	}

	rc.ReleaseCached(h)
	if rc.SharedLen() != 1 {
		t.Errorf("SharedLen = %d after first release, want 1", rc.SharedLen())
	}
	rc.ReleaseCached(h)
	if rc.SharedLen() != 0 || rc.RefCount(h) != 0 {
		t.Errorf("viewport still cached after last release")
	}

	// Unknown hashes are ignored.
	rc.ReleaseCached(h)
}

func TestResourcesCachedWrongType(t *testing.T) {
	rc := NewResources(nil)
	res := &testResource{}
	rc.AddToCache(7, res)

	if _, ok := gpucore.Cached[*gpucore.Viewport](rc, 7); ok {
		t.Fatal("typed lookup accepted the wrong type")
	}
	if rc.RefCount(7) != 1 {
		t.Errorf("RefCount = %d after mismatched lookup, want 1", rc.RefCount(7))
	}
}

func TestResourcesAddToCacheDuplicate(t *testing.T) {
	rc := NewResources(nil)
	first := &testResource{}
	second := &testResource{}

	if got := rc.AddToCache(1, first); got != first {
		t.Fatalf("AddToCache = %v, want the added object", got)
	}
	if got := rc.AddToCache(1, second); got != first {
		t.Errorf("AddToCache on a taken hash = %v, want the stored object", got)
	}

	if second.destroyed != 1 {
		t.Error("duplicate was not destroyed")
	}
	if first.destroyed != 0 {
		t.Error("stored object was destroyed")
	}
	if rc.RefCount(1) != 2 {
		t.Errorf("RefCount = %d, want 2", rc.RefCount(1))
	}
}

func TestResourcesDeleteSharedReleasesReference(t *testing.T) {
	rc := NewResources(nil)
	res := &testResource{}
	rc.AddToCache(3, res)
	rc.CachedObject(3)

	rc.DeleteResource(res)
	if res.destroyed != 0 || rc.RefCount(3) != 1 {
		t.Fatalf("destroyed=%d refs=%d, want 0 and 1", res.destroyed, rc.RefCount(3))
	}
	rc.DeleteResource(res)
	if res.destroyed != 1 {
		t.Errorf("destroyed=%d after last reference, want 1", res.destroyed)
	}
}

func TestResourcesMakeDefaultStates(t *testing.T) {
	rc := NewResources(nil)

	a, err := rc.MakeDefaultStates()
	if err != nil {
		t.Fatalf("MakeDefaultStates failed: %v", err)
	}
	b, err := rc.MakeDefaultStates()
	if err != nil {
		t.Fatalf("second MakeDefaultStates failed: %v", err)
	}
	if a != b {
		t.Error("default states are not shared")
	}
	if rc.SharedLen() != 4 {
		t.Errorf("SharedLen = %d, want 4", rc.SharedLen())
	}
	if got := a.DepthStencil.Desc(); got != gpucore.DefaultDepthStencilDesc() {
		t.Errorf("depth-stencil desc = %+v", got)
	}

	ds, ok := gpucore.Cached[*gpucore.DepthStencilState](rc, a.DepthStencil.Hash())
	if !ok || ds != a.DepthStencil {
		t.Error("default depth-stencil state not reachable by hash")
	}
}

func TestResourcesCreateViewportInvalid(t *testing.T) {
	rc := NewResources(nil)
	if _, err := rc.CreateViewport(gpucore.ViewportInfo{Width: 0, Height: 10}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestResourcesClose(t *testing.T) {
	alloc := &testAllocator{}
	rc := NewResources(alloc)
	if _, err := rc.CreateBuffer(&gpucore.BufferDescriptor{Label: "b"}); err != nil {
		t.Fatal(err)
	}
	res := &testResource{}
	rc.AddToCache(9, res)
	rc.CachedObject(9)

	rc.Close()
	if alloc.created[0].destroyed != 1 || res.destroyed != 1 {
		t.Errorf("Close did not destroy everything: buffer=%d shared=%d",
			alloc.created[0].destroyed, res.destroyed)
	}
	if rc.SharedLen() != 0 || rc.OwnedLen() != 0 {
		t.Error("Close left tracked objects")
	}
}
