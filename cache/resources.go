package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/debugdraw/gpucore"
)

// ErrNoAllocator is returned by Resources.CreateBuffer when no allocator was
// configured.
var ErrNoAllocator = errors.New("cache: no buffer allocator")

// Resources is a gpucore.ResourceCache. Buffers are created through an
// Allocator and tracked until deleted; shared objects (viewports, state
// objects) are stored by content hash with a reference count.
//
// Resources is safe for concurrent use.
type Resources struct {
	mu       sync.Mutex
	alloc    gpucore.Allocator
	shared   map[uint64]*sharedEntry
	owned    map[gpucore.Resource]struct{}
	defaults *gpucore.DefaultStates
}

type sharedEntry struct {
	res  gpucore.Resource
	refs int
}

var _ gpucore.ResourceCache = (*Resources)(nil)

// NewResources creates a resource cache that allocates buffers with alloc.
func NewResources(alloc gpucore.Allocator) *Resources {
	return &Resources{
		alloc:  alloc,
		shared: make(map[uint64]*sharedEntry),
		owned:  make(map[gpucore.Resource]struct{}),
	}
}

// CreateBuffer allocates a buffer.
func (r *Resources) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.Buffer, error) {
	if r.alloc == nil {
		return nil, ErrNoAllocator
	}
	buf, err := r.alloc.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("cache: create buffer %q: %w", desc.Label, err)
	}
	r.mu.Lock()
	r.owned[buf] = struct{}{}
	r.mu.Unlock()
	return buf, nil
}

// CreateViewport creates a viewport object.
func (r *Resources) CreateViewport(info gpucore.ViewportInfo) (*gpucore.Viewport, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("cache: invalid viewport size %vx%v", info.Width, info.Height)
	}
	return gpucore.NewViewport(info), nil
}

// CachedObject returns the object stored under hash and acquires a
// reference to it.
func (r *Resources) CachedObject(hash uint64) (gpucore.Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.shared[hash]
	if !ok {
		return nil, false
	}
	e.refs++
	return e.res, true
}

// AddToCache stores res under hash with one reference and returns the
// stored object. If hash is already taken the stored object gains the
// reference instead and is returned, and res is destroyed unless it is that
// same object.
func (r *Resources) AddToCache(hash uint64, res gpucore.Resource) gpucore.Resource {
	if res == nil {
		return nil
	}
	r.mu.Lock()
	delete(r.owned, res)
	e, ok := r.shared[hash]
	if !ok {
		r.shared[hash] = &sharedEntry{res: res, refs: 1}
		r.mu.Unlock()
		return res
	}
	e.refs++
	stored := e.res
	r.mu.Unlock()

	if stored != res {
		res.Destroy()
	}
	return stored
}

// ReleaseCached drops one reference to the object stored under hash and
// destroys it when none remain. Unknown hashes are ignored.
func (r *Resources) ReleaseCached(hash uint64) {
	r.mu.Lock()
	e, ok := r.shared[hash]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.shared, hash)
	r.mu.Unlock()

	e.res.Destroy()
}

// DeleteResource destroys res. A shared object loses one reference instead.
func (r *Resources) DeleteResource(res gpucore.Resource) {
	if res == nil {
		return
	}
	r.mu.Lock()
	delete(r.owned, res)
	for hash, e := range r.shared {
		if e.res == res {
			r.mu.Unlock()
			r.ReleaseCached(hash)
			return
		}
	}
	r.mu.Unlock()

	res.Destroy()
}

// MakeDefaultStates returns the shared default state objects. They are
// created on the first call and held by the cache until Close.
func (r *Resources) MakeDefaultStates() (gpucore.DefaultStates, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defaults != nil {
		return *r.defaults, nil
	}
	ds := r.internLocked(gpucore.NewDepthStencilState(gpucore.DefaultDepthStencilDesc()))
	bs := r.internLocked(gpucore.NewBlendState(gpucore.DefaultBlendDesc()))
	rs := r.internLocked(gpucore.NewRasterizerState(gpucore.DefaultRasterizerDesc()))
	ss := r.internLocked(gpucore.NewSamplerState(gpucore.DefaultSamplerDesc()))

	defaults := gpucore.DefaultStates{}
	var ok bool
	if defaults.DepthStencil, ok = ds.(*gpucore.DepthStencilState); !ok {
		return gpucore.DefaultStates{}, fmt.Errorf("cache: hash collision on depth-stencil state")
	}
	if defaults.Blend, ok = bs.(*gpucore.BlendState); !ok {
		return gpucore.DefaultStates{}, fmt.Errorf("cache: hash collision on blend state")
	}
	if defaults.Rasterizer, ok = rs.(*gpucore.RasterizerState); !ok {
		return gpucore.DefaultStates{}, fmt.Errorf("cache: hash collision on rasterizer state")
	}
	if defaults.Sampler, ok = ss.(*gpucore.SamplerState); !ok {
		return gpucore.DefaultStates{}, fmt.Errorf("cache: hash collision on sampler state")
	}
	r.defaults = &defaults
	return defaults, nil
}

type hashed interface {
	gpucore.Resource
	Hash() uint64
}

// internLocked returns the object already stored under obj's hash, or
// stores obj. Caller must hold r.mu.
func (r *Resources) internLocked(obj hashed) gpucore.Resource {
	h := obj.Hash()
	if e, ok := r.shared[h]; ok {
		e.refs++
		return e.res
	}
	r.shared[h] = &sharedEntry{res: obj, refs: 1}
	return obj
}

// RefCount returns the reference count of the object stored under hash,
// or 0.
func (r *Resources) RefCount(hash uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.shared[hash]; ok {
		return e.refs
	}
	return 0
}

// SharedLen returns the number of shared objects.
func (r *Resources) SharedLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shared)
}

// OwnedLen returns the number of live buffers created by CreateBuffer and
// not yet deleted.
func (r *Resources) OwnedLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owned)
}

// Close destroys every tracked object regardless of reference counts.
func (r *Resources) Close() {
	r.mu.Lock()
	owned := r.owned
	shared := r.shared
	r.owned = make(map[gpucore.Resource]struct{})
	r.shared = make(map[uint64]*sharedEntry)
	r.defaults = nil
	r.mu.Unlock()

	for res := range owned {
		res.Destroy()
	}
	for _, e := range shared {
		e.res.Destroy()
	}
}
