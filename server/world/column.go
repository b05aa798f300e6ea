package world

// run is one entry of a ColumnBuffer's monotonically increasing stack:
// block fills cells from the previous run's top up to top (exclusive).
type run struct {
	block BlockID
	top   int32
}

// decoration is a single point overwrite applied after the run stack is
// laid down.
type decoration struct {
	block BlockID
	y     int32
}

// ColumnBuffer is the per-(x,z) scratch a Loader fills in order to build
// one vertical column of a Chunk. It doubles as the accumulator for the
// chunk's equi-level analysis: every column filled during a chunk build is
// diffed against the chunk's first ("reference") column, and the result
// folds into a running mismatch tally that fillEquilevels later turns into
// a per-row flag vector.
type ColumnBuffer struct {
	runs        []run
	decorations []decoration

	reference []run
	haveRef   bool

	// mismatch[y] is the signed delta, at row y, to the running count of
	// "ways this column disagrees with the reference column". Decorations
	// and run-boundary disagreements both contribute to it; see accumulate.
	mismatch [WorldHeight + 1]int32
}

// NewColumnBuffer returns an empty ColumnBuffer ready for use.
func NewColumnBuffer() *ColumnBuffer {
	return &ColumnBuffer{}
}

// Push appends a run of block running from the previous run's top up to
// topY (clamped to WorldHeight). The push is dropped if topY does not
// exceed the current last run's top, per the strictly-increasing-top
// invariant.
func (c *ColumnBuffer) Push(block BlockID, topY int32) {
	if topY > WorldHeight {
		topY = WorldHeight
	}
	last := int32(0)
	if n := len(c.runs); n > 0 {
		last = c.runs[n-1].top
	}
	if topY <= last {
		return
	}
	c.runs = append(c.runs, run{block: block, top: topY})
}

// Overwrite records a point decoration at y, bounds-checked against
// [0,WorldHeight).
func (c *ColumnBuffer) Overwrite(block BlockID, y int32) {
	if y < 0 || y >= WorldHeight {
		return
	}
	c.decorations = append(c.decorations, decoration{block: block, y: y})
}

// Clear resets the run cursor and decorations. The snapshotted reference
// column (and the mismatch accumulator) are retained across a chunk fill;
// use beginChunk to reset those between chunks.
func (c *ColumnBuffer) Clear() {
	c.runs = c.runs[:0]
	c.decorations = c.decorations[:0]
}

// beginChunk resets the reference column and mismatch accumulator ahead of
// filling a brand-new chunk's W*W columns.
func (c *ColumnBuffer) beginChunk() {
	for i := range c.mismatch {
		c.mismatch[i] = 0
	}
	c.haveRef = false
	c.reference = c.reference[:0]
	c.Clear()
}

// seal appends an empty-block run up to WorldHeight if the run stack does
// not already reach it.
func (c *ColumnBuffer) seal() {
	last := int32(0)
	if n := len(c.runs); n > 0 {
		last = c.runs[n-1].top
	}
	if last < WorldHeight {
		c.runs = append(c.runs, run{block: Empty, top: WorldHeight})
	}
}

// fillChunk writes the sealed run stack as contiguous fills into chunk's
// (x,z) column, applies decorations on top, and folds this column's
// agreement with the reference column into the mismatch accumulator.
// first marks the column that becomes the reference itself.
func (c *ColumnBuffer) fillChunk(x, z int, chunk *Chunk, first bool) {
	c.seal()

	y0 := int32(0)
	for _, r := range c.runs {
		chunk.SetColumn(x, z, y0, r.top-y0, r.block)
		y0 = r.top
	}
	for _, d := range c.decorations {
		chunk.setVoxelForLoad(x, int(d.y), z, d.block)
	}

	if first {
		c.reference = append(c.reference[:0], c.runs...)
		c.haveRef = true
	} else if c.haveRef {
		c.accumulate(c.reference, c.runs)
	}
	for _, d := range c.decorations {
		c.mismatch[d.y]++
		if d.y+1 < WorldHeight {
			c.mismatch[d.y+1]--
		}
	}
}

// accumulate walks ref and cur in lockstep by run top, and each time the
// two columns' agreement flips, emits +1 (entering mismatch) or -1
// (re-entering agreement) at the boundary where the flip occurs: the start
// of whichever run's segment comes later, i.e. the position both runs
// agree to compare next.
func (c *ColumnBuffer) accumulate(ref, cur []run) {
	var ri, ci int
	matched := true
	y := int32(0)
	for y < WorldHeight && ri < len(ref) && ci < len(cur) {
		eq := ref[ri].block == cur[ci].block
		if eq != matched {
			if matched {
				c.mismatch[y]++
			} else {
				c.mismatch[y]--
			}
			matched = eq
		}
		segEnd := ref[ri].top
		if cur[ci].top < segEnd {
			segEnd = cur[ci].top
		}
		if ref[ri].top == segEnd {
			ri++
		}
		if cur[ci].top == segEnd {
			ci++
		}
		y = segEnd
	}
}

// fillEquilevels integrates the mismatch accumulator: out[y] is set iff the
// running sum of mismatch[0..y] is zero, i.e. every column filled so far
// agreed with the reference at row y.
func (c *ColumnBuffer) fillEquilevels(out *[WorldHeight]bool) {
	sum := int32(0)
	for y := 0; y < WorldHeight; y++ {
		sum += c.mismatch[y]
		out[y] = sum == 0
	}
}
