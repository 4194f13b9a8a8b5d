package ecs

// EntityID packs a 32-bit slot index in the low bits and a 32-bit generation
// in the high bits. Generation 0 is never issued, so the zero ID is invalid.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out generational IDs and recycles freed slots FIFO, so
// the sequence of issued IDs depends only on the sequence of calls.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 512),
		freeList:    make([]uint32, 0, 128),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if len(p.freeList) > 0 {
		idx := p.freeList[0]
		p.freeList = p.freeList[1:]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	return NewEntityID(idx, 1)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if id.IsZero() || int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // stale or already destroyed
	}
	idx := id.Index()
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.live--
}

// Live returns the number of IDs currently issued and not destroyed.
func (p *EntityPool) Live() int { return p.live }

// Reset forgets every entity. IDs issued before the reset must not be used
// afterwards; they may alias entities created later.
func (p *EntityPool) Reset() {
	p.generations = p.generations[:0]
	p.freeList = p.freeList[:0]
	p.live = 0
}
