package particles

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
)

// ErrStaleHandle is returned for handles whose particle was already released.
var ErrStaleHandle = errors.New("stale pool handle")

// Kind selects a pooled particle type.
type Kind uint8

const (
	KindDrop Kind = iota
	KindDrip
)

func (k Kind) String() string {
	switch k {
	case KindDrop:
		return "drop"
	case KindDrip:
		return "drip"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Poolable is a particle the pool can recycle.
type Poolable interface {
	Reset(x, y float64, params SpawnParams) error
	Recycle()
	IsDead() bool
}

// Handle identifies one acquisition. Entity generations make handles from
// an earlier acquisition of the same instance detectably stale.
type Handle struct {
	entity ecs.Entity
	kind   Kind
}

// Kind returns the particle kind the handle was acquired for.
func (h Handle) Kind() Kind { return h.kind }

// pooled is the component attached to every live entity.
type pooled struct {
	obj  Poolable
	kind Kind
}

// PoolStats counts pool traffic per kind.
type PoolStats struct {
	Acquired int
	Released int
	Misses   int
	Free     int
	Live     int
}

// Pool hands out recycled particles. An empty free list never blocks a
// spawn: a fresh instance is allocated and counted as a miss.
type Pool struct {
	world     *ecs.World
	slots     *ecs.Map1[pooled]
	filter    *ecs.Filter1[pooled]
	factories map[Kind]func() Poolable
	free      map[Kind][]Poolable
	stats     map[Kind]*PoolStats
}

// NewPool creates a pool and preallocates prealloc[k] instances of each kind.
func NewPool(prealloc map[Kind]int, factories map[Kind]func() Poolable) (*Pool, error) {
	world := ecs.NewWorld()
	p := &Pool{
		world:     world,
		slots:     ecs.NewMap1[pooled](world),
		filter:    ecs.NewFilter1[pooled](world),
		factories: make(map[Kind]func() Poolable, len(factories)),
		free:      make(map[Kind][]Poolable, len(factories)),
		stats:     make(map[Kind]*PoolStats, len(factories)),
	}
	for k, f := range factories {
		if f == nil {
			return nil, fmt.Errorf("pool: nil factory for %s", k)
		}
		p.factories[k] = f
		p.stats[k] = &PoolStats{}
	}
	for k, n := range prealloc {
		f, ok := p.factories[k]
		if !ok {
			return nil, fmt.Errorf("pool: prealloc for %s without a factory", k)
		}
		list := make([]Poolable, 0, n)
		for i := 0; i < n; i++ {
			list = append(list, f())
		}
		p.free[k] = list
	}
	return p, nil
}

// Acquire takes an instance of kind from the free list (or allocates one),
// resets it at (x, y) and returns it with a fresh handle.
func (p *Pool) Acquire(kind Kind, x, y float64, params SpawnParams) (Handle, Poolable, error) {
	f, ok := p.factories[kind]
	if !ok {
		return Handle{}, nil, fmt.Errorf("pool: no factory for %s", kind)
	}
	st := p.stats[kind]

	var obj Poolable
	if list := p.free[kind]; len(list) > 0 {
		obj = list[len(list)-1]
		list[len(list)-1] = nil
		p.free[kind] = list[:len(list)-1]
	} else {
		obj = f()
		st.Misses++
		slog.Debug("pool_miss", "kind", kind.String(), "misses", st.Misses)
	}

	if err := obj.Reset(x, y, params); err != nil {
		p.free[kind] = append(p.free[kind], obj)
		return Handle{}, nil, fmt.Errorf("pool: reset %s: %w", kind, err)
	}

	e := p.slots.NewEntity(&pooled{obj: obj, kind: kind})
	st.Acquired++
	st.Live++
	return Handle{entity: e, kind: kind}, obj, nil
}

// Get returns the instance behind a live handle.
func (p *Pool) Get(h Handle) (Poolable, error) {
	if h.entity.IsZero() || !p.world.Alive(h.entity) {
		return nil, ErrStaleHandle
	}
	return p.slots.Get(h.entity).obj, nil
}

// Release recycles the instance and parks it on the free list. The handle
// becomes stale. A parked instance reports dead and holds no references to
// other particles; Acquire resets the rest.
func (p *Pool) Release(h Handle) error {
	if h.entity.IsZero() || !p.world.Alive(h.entity) {
		return ErrStaleHandle
	}
	slot := p.slots.Get(h.entity)
	obj, kind := slot.obj, slot.kind
	p.world.RemoveEntity(h.entity)

	obj.Recycle()
	p.free[kind] = append(p.free[kind], obj)
	st := p.stats[kind]
	st.Released++
	st.Live--
	return nil
}

// ReleaseAll releases every live instance of kind and returns how many.
func (p *Pool) ReleaseAll(kind Kind) int {
	var toRelease []ecs.Entity
	query := p.filter.Query()
	for query.Next() {
		if query.Get().kind == kind {
			toRelease = append(toRelease, query.Entity())
		}
	}
	// Remove after iteration; the world is locked while a query runs.
	for _, e := range toRelease {
		_ = p.Release(Handle{entity: e, kind: kind})
	}
	return len(toRelease)
}

// Live returns the number of acquired, unreleased instances.
func (p *Pool) Live() int {
	n := 0
	for _, st := range p.stats {
		n += st.Live
	}
	return n
}

// Stats returns a snapshot of the counters for kind.
func (p *Pool) Stats(kind Kind) PoolStats {
	st, ok := p.stats[kind]
	if !ok {
		return PoolStats{}
	}
	out := *st
	out.Free = len(p.free[kind])
	return out
}
