package region

// freeMap tracks which sectors past the fixed 2-sector header are in use,
// supporting first-fit allocation of a contiguous run.
type freeMap struct {
	used []bool // index 0 == sector headerSectors
}

func newFreeMap() freeMap { return freeMap{} }

func newFreeMapWithCapacity(totalSectors int) freeMap {
	n := totalSectors - headerSectors
	if n < 0 {
		n = 0
	}
	return freeMap{used: make([]bool, n)}
}

func (m *freeMap) ensure(n int) {
	for len(m.used) < n {
		m.used = append(m.used, false)
	}
}

func (m *freeMap) markUsed(offsetSectors, count int) {
	start := offsetSectors - headerSectors
	m.ensure(start + count)
	for i := start; i < start+count; i++ {
		m.used[i] = true
	}
}

func (m *freeMap) markFree(offsetSectors, count int) {
	if count <= 0 {
		return
	}
	start := offsetSectors - headerSectors
	m.ensure(start + count)
	for i := start; i < start+count; i++ {
		m.used[i] = false
	}
}

// allocate finds the smallest free run of at least n contiguous sectors
// (first-fit over the smallest adequate run, scanning low to high), growing
// the file's logical sector space if none is found.
func (m *freeMap) allocate(n int) int {
	bestStart, bestLen := -1, -1
	i := 0
	for i < len(m.used) {
		if m.used[i] {
			i++
			continue
		}
		start := i
		for i < len(m.used) && !m.used[i] {
			i++
		}
		runLen := i - start
		if runLen >= n && (bestLen == -1 || runLen < bestLen) {
			bestStart, bestLen = start, runLen
		}
	}

	var offset int
	if bestStart >= 0 {
		offset = bestStart
	} else {
		offset = len(m.used)
		m.ensure(offset + n)
	}
	for i := offset; i < offset+n; i++ {
		m.used[i] = true
	}
	return offset + headerSectors
}
