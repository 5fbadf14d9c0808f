// Package valuearena implements the paged, sparse cell storage that backs
// the interpreter's Value Arena (the LIFO store every stack frame and
// lexical scope allocates out of).
//
// The layout mirrors a classic sparse page table: storage is divided into
// fixed-size pages allocated lazily as addresses are touched, so a sparsely
// used address space (a huge bare-metal arena, or a host with a generous
// stack_size_bytes that a program never fully exercises) costs memory only
// where it is actually written.
package valuearena

import "fmt"

// Cell is one machine word of arena storage. A Value's storage is one or
// more contiguous Cells; aggregates (struct/union/array) occupy a
// multi-Cell span, scalars occupy exactly one.
type Cell struct {
	I    int64
	F    float64
	IsF  bool
}

// LimitError indicates that an arena operation exceeded Core.Limit.
type LimitError struct {
	Addr uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("value arena limit exceeded by %v @%v", lim.Op, lim.Addr)
}

// Core is a paged, growable, bounds-checked array of Cells addressed by a
// uint index. It never shrinks on its own; callers reclaim address ranges
// explicitly by calling Release, which is how a frame or scope pop works:
// one Release call discards every cell above a saved high-water mark.
type Core struct {
	// PageSize controls the granularity of lazy allocation. Zero means
	// DefaultPageSize.
	PageSize uint

	// Limit, if non-zero, bounds the arena: a Load above Limit, or a Store
	// or LoadInto whose span would end past Limit, fails with LimitError.
	// Mark does not check it.
	Limit uint

	pages [][]Cell
	bases []uint

	high uint // one past the highest address stored to since the last Release below it
}

// DefaultPageSize is used when Core.PageSize is left zero.
const DefaultPageSize = 256

// High returns one past the highest address written, lowered again by
// Release; Mark/Release use this to implement LIFO scope exit.
func (c *Core) High() uint { return c.high }

// Mark returns the arena's current high-water mark, to be passed to a later
// Release when the caller's frame or scope ends.
func (c *Core) Mark() uint { return c.high }

// Release discards every cell at or above mark, shrinking High() back down
// to mark. It is a no-op if mark >= High(). This is the arena half of
// "popping a frame also pops every value allocated within it" (Data Model
// invariants).
func (c *Core) Release(mark uint) {
	if mark >= c.high {
		return
	}
	for pageID := c.findPage(mark); pageID < len(c.bases); pageID++ {
		base := c.bases[pageID]
		page := c.pages[pageID]
		start := uint(0)
		if mark > base {
			start = mark - base
		}
		for i := start; i < uint(len(page)); i++ {
			page[i] = Cell{}
		}
	}
	c.high = mark
}

// Load reads the cell at addr, returning the zero Cell for any address never
// written.
func (c *Core) Load(addr uint) (Cell, error) {
	if maxSize := c.Limit; maxSize != 0 && addr > maxSize {
		return Cell{}, LimitError{addr, "load"}
	}
	if len(c.pages) == 0 {
		return Cell{}, nil
	}
	pageID := c.findPage(addr)
	if pageID < 0 {
		return Cell{}, nil
	}
	base := c.bases[pageID]
	page := c.pages[pageID]
	if i := addr - base; int(i) < len(page) {
		return page[i], nil
	}
	return Cell{}, nil
}

// LoadInto fills buf starting at addr, zero-filling any unwritten range.
func (c *Core) LoadInto(addr uint, buf []Cell) error {
	end := addr + uint(len(buf))
	if maxSize := c.Limit; maxSize != 0 && end > maxSize {
		return LimitError{end, "load"}
	}
	for i := range buf {
		buf[i] = Cell{}
	}
	if len(buf) == 0 || len(c.pages) == 0 {
		return nil
	}
	pageID := c.findPage(addr)
	if pageID < 0 {
		return nil
	}
	for ; addr < end && pageID < len(c.bases); pageID++ {
		base := c.bases[pageID]
		if base > end {
			break
		}
		page := c.pages[pageID]
		off := addr - base
		if int(off) >= len(page) {
			continue
		}
		n := copy(buf, page[off:])
		buf = buf[n:]
		addr += uint(n)
	}
	return nil
}

// Store writes values starting at addr, allocating pages as needed.
func (c *Core) Store(addr uint, values ...Cell) error {
	end := addr + uint(len(values))
	if maxSize := c.Limit; maxSize != 0 && end > maxSize {
		return LimitError{end, "store"}
	}
	if len(values) == 0 {
		return nil
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}

	for pageID := c.findPage(addr); addr < end; pageID++ {
		if pageID == len(c.bases) {
			base := addr / c.PageSize * c.PageSize
			size := c.PageSize
			if i := len(c.bases) - 1; i >= 0 {
				lastEnd := c.bases[i] + uint(len(c.pages[i]))
				if base < lastEnd {
					size -= lastEnd - base
					base = lastEnd
				}
			}
			c.bases = append(c.bases, base)
			c.pages = append(c.pages, make([]Cell, size))
		}

		base := c.bases[pageID]
		if addr < base {
			nextBase := base
			base = addr / c.PageSize * c.PageSize
			size := c.PageSize
			if gapSize := nextBase - base; size > gapSize {
				size = gapSize
			}
			c.bases = append(c.bases, 0)
			c.pages = append(c.pages, nil)
			copy(c.bases[pageID+1:], c.bases[pageID:])
			copy(c.pages[pageID+1:], c.pages[pageID:])
			c.bases[pageID] = base
			c.pages[pageID] = make([]Cell, size)
		}

		page := c.pages[pageID]
		if skip := int(addr) - int(base); skip > 0 {
			if skip >= len(page) {
				continue
			}
			base += uint(skip)
			page = page[skip:]
		}

		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}

	if end > c.high {
		c.high = end
	}
	return nil
}

func (c *Core) findPage(addr uint) int {
	i, j := 0, len(c.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(c.bases) && c.bases[h] <= addr {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}
