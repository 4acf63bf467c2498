// Package cache implements the one-sector read cache each KFS file
// descriptor owns: a single SECTOR_SIZE buffer tagged with the sector
// it currently holds, used to coalesce sequential reads and to supply
// the read half of a read-modify-write.
package cache

// noTag is the sentinel tag value meaning "nothing cached". Real
// sector numbers are stored with a +1 bias so that zero-initializing
// a SectorCache leaves it correctly marked invalid.
const noTag = 0

// SectorCache holds exactly one sector's worth of data on behalf of a
// single file descriptor.
type SectorCache struct {
	tag  uint64
	data []byte
}

// New allocates a SectorCache for the given sector size. It starts
// invalidated.
func New(sectorSize int) *SectorCache {
	return &SectorCache{data: make([]byte, sectorSize)}
}

// Invalidate marks the cache as holding no sector. Every write path
// must call this before touching the backing device, so a cache hit
// can never observe stale data.
func (c *SectorCache) Invalidate() {
	c.tag = noTag
}

// Lookup returns the cached data for sector and true if it is
// currently cached. The returned slice aliases the cache's internal
// buffer and must not be retained past the next Store or Invalidate.
func (c *SectorCache) Lookup(sector uint64) ([]byte, bool) {
	if c.tag == sector+1 {
		return c.data, true
	}
	return nil, false
}

// Store copies data into the cache and tags it as holding sector. Len
// data must equal the cache's sector size.
func (c *SectorCache) Store(sector uint64, data []byte) {
	copy(c.data, data)
	c.tag = sector + 1
}

// Buffer returns the cache's scratch buffer, for callers that want to
// fill it in place (e.g. before calling Store with the same sector).
func (c *SectorCache) Buffer() []byte {
	return c.data
}
