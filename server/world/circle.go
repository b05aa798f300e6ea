package world

import "sort"

// circleOffset is one precomputed (di,dj) offset within a disk, stored in
// increasing distance-from-center order.
type circleOffset struct {
	di, dj int32
}

// circleSlot is one entry of a Circle's backing grid. has distinguishes an
// empty slot from one holding the zero value of T, and x/z lets Get
// recognize a slot that has been reused for a different position since the
// last center shift.
type circleSlot[T any] struct {
	x, z int32
	has  bool
	val  T
}

// Circle is a fixed-radius disk in 2D integer space, torus-hashed into a
// power-of-two grid so lookup, insert and "did this fall outside the new
// radius" tests are all O(1) regardless of how far the center has moved.
// It is used both for the chunk disk and for each frontier level's tile
// disk (see the package design notes on priority iteration and torus
// hashing for the rationale).
type Circle[T any] struct {
	radius   int32
	offsets  []circleOffset
	deltas   []int32 // deltas[|i|] = max |j| such that i^2+j^2 <= radius^2
	gridMask int32
	gridBits uint

	slots []circleSlot[T]

	centerX, centerZ int32
}

// NewCircle builds a Circle covering all integer points within radius of
// the origin (Manhattan-adjacent offsets included), materializing the
// nearest-first iteration order once at construction time.
func NewCircle[T any](radius int32) *Circle[T] {
	if radius < 0 {
		radius = 0
	}
	c := &Circle[T]{radius: radius}

	rsq := int64(radius) * int64(radius)
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			if int64(i)*int64(i)+int64(j)*int64(j) <= rsq {
				c.offsets = append(c.offsets, circleOffset{di: i, dj: j})
			}
		}
	}
	sort.Slice(c.offsets, func(a, b int) bool {
		da := int64(c.offsets[a].di)*int64(c.offsets[a].di) + int64(c.offsets[a].dj)*int64(c.offsets[a].dj)
		db := int64(c.offsets[b].di)*int64(c.offsets[b].di) + int64(c.offsets[b].dj)*int64(c.offsets[b].dj)
		return da < db
	})

	c.deltas = make([]int32, radius+1)
	for i := int32(0); i <= radius; i++ {
		maxJ := int32(0)
		for j := radius; j >= 0; j-- {
			if int64(i)*int64(i)+int64(j)*int64(j) <= rsq {
				maxJ = j
				break
			}
		}
		c.deltas[i] = maxJ
	}

	gridSize := int32(1)
	for gridSize < 2*(radius+1) {
		gridSize <<= 1
	}
	if gridSize < 1 {
		gridSize = 1
	}
	bits := uint(0)
	for (int32(1) << bits) < gridSize {
		bits++
	}
	c.gridBits = bits
	c.gridMask = (int32(1) << bits) - 1
	c.slots = make([]circleSlot[T], int32(1)<<(2*bits))

	return c
}

// Radius returns the disk's radius.
func (c *Circle[T]) Radius() int32 { return c.radius }

// Offsets returns the nearest-first offset list, for callers (such as
// Frontier) that need to derive their own coarser-scale disks from it.
func (c *Circle[T]) Offsets() []circleOffset { return c.offsets }

func (c *Circle[T]) hash(x, z int32) int32 {
	return ((z & c.gridMask) << c.gridBits) | (x & c.gridMask)
}

// Get returns the element stored at (x,z), if any. The slot at that hash
// may be occupied by a different position (reused after a center shift),
// in which case Get reports false.
func (c *Circle[T]) Get(x, z int32) (T, bool) {
	s := &c.slots[c.hash(x, z)]
	if s.has && s.x == x && s.z == z {
		return s.val, true
	}
	var zero T
	return zero, false
}

// Set inserts elem at (x,z). It asserts that the target slot is empty,
// since two live members of the disk must never hash to the same slot.
func (c *Circle[T]) Set(x, z int32, elem T) {
	s := &c.slots[c.hash(x, z)]
	assertInvariant(!s.has, "circle slot reuse at (%d,%d)", x, z)
	s.x, s.z, s.has, s.val = x, z, true, elem
}

// Clear empties the slot at (x,z) without disposing its value; callers
// that need disposal semantics should read the value out first.
func (c *Circle[T]) Clear(x, z int32) {
	s := &c.slots[c.hash(x, z)]
	if s.has && s.x == x && s.z == z {
		var zero T
		s.val = zero
		s.has = false
	}
}

// Each iterates live cells in nearest-first order relative to the current
// center. fn returning true stops iteration early.
func (c *Circle[T]) Each(fn func(x, z int32, val T) (done bool)) {
	for _, o := range c.offsets {
		x, z := c.centerX+o.di, c.centerZ+o.dj
		val, ok := c.Get(x, z)
		if !ok {
			continue
		}
		if fn(x, z, val) {
			return
		}
	}
}

// outside reports whether (x,z) falls outside the disk centered at
// (cx,cz), using the precomputed per-|dx| max-|dz| table for an O(1) test.
func (c *Circle[T]) outside(cx, cz, x, z int32) bool {
	dx, dz := x-cx, z-cz
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > c.radius || int(dx) >= len(c.deltas) {
		return true
	}
	return dz > c.deltas[dx]
}

// Center shifts the disk to a new center. Every currently-held element that
// now falls outside the radius is passed to dispose and cleared from its
// slot. A center matching the current one is a no-op, per the "recenter is
// idempotent at unchanged coordinates" invariant.
func (c *Circle[T]) Center(cx, cz int32, dispose func(x, z int32, val T)) {
	if cx == c.centerX && cz == c.centerZ {
		return
	}
	for i := range c.slots {
		s := &c.slots[i]
		if !s.has {
			continue
		}
		if c.outside(cx, cz, s.x, s.z) {
			if dispose != nil {
				dispose(s.x, s.z, s.val)
			}
			var zero T
			s.val = zero
			s.has = false
		}
	}
	c.centerX, c.centerZ = cx, cz
}

// CenterPos returns the disk's current center.
func (c *Circle[T]) CenterPos() (x, z int32) { return c.centerX, c.centerZ }
