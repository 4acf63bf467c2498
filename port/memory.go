package port

import (
	"fmt"
	"io"

	bitmap "github.com/boljen/go-bitmap"
	"github.com/xaionaro-go/bytesextra"
)

// Memory is a simulated block device backed by an in-memory byte
// slice. It supports hot-insert/hot-remove simulation via Insert and
// Eject, and tracks which sectors have ever been written so tests can
// assert that a read-modify-write preserved the bytes around it.
type Memory struct {
	sectorSize   int
	totalSectors uint64
	backing      io.ReadWriteSeeker
	raw          []byte
	present      bool
	touched      bitmap.Bitmap
}

// NewMemory creates a Memory device of totalSectors sectors, each
// sectorSize bytes, initially empty (all zero bytes) and present.
func NewMemory(sectorSize int, totalSectors uint64) *Memory {
	raw := make([]byte, sectorSize*int(totalSectors))
	return &Memory{
		sectorSize:   sectorSize,
		totalSectors: totalSectors,
		backing:      bytesextra.NewReadWriteSeeker(raw),
		raw:          raw,
		present:      true,
		touched:      bitmap.New(int(totalSectors)),
	}
}

// Eject simulates removing the card. Subsequent operations report no
// media until Insert is called again.
func (m *Memory) Eject() {
	m.present = false
}

// Insert simulates reinserting the same card: its contents are
// unchanged.
func (m *Memory) Insert() {
	m.present = true
}

// InsertBlank simulates inserting a different, blank card of the same
// geometry: its contents are zeroed.
func (m *Memory) InsertBlank() {
	for i := range m.raw {
		m.raw[i] = 0
	}
	m.touched = bitmap.New(int(m.totalSectors))
	m.present = true
}

func (m *Memory) MediaPresent() bool {
	return m.present
}

func (m *Memory) SectorSize() int {
	return m.sectorSize
}

func (m *Memory) Init() error {
	if !m.present {
		return ErrNoMedia
	}
	return nil
}

func (m *Memory) SectorCount() (uint64, error) {
	if !m.present {
		return 0, ErrNoMedia
	}
	return uint64(len(m.raw) / m.sectorSize), nil
}

func (m *Memory) ReadSectors(buf []byte, sector uint64, count uint32) error {
	if !m.present {
		return ErrNoMedia
	}
	n, err := m.checkedRange(buf, sector, count)
	if err != nil {
		return err
	}
	if _, err := m.backing.Seek(int64(sector)*int64(m.sectorSize), io.SeekStart); err != nil {
		return err
	}
	_, err = io.ReadFull(m.backing, buf[:n])
	return err
}

func (m *Memory) WriteSectors(buf []byte, sector uint64, count uint32) error {
	if !m.present {
		return ErrNoMedia
	}
	n, err := m.checkedRange(buf, sector, count)
	if err != nil {
		return err
	}
	if _, err := m.backing.Seek(int64(sector)*int64(m.sectorSize), io.SeekStart); err != nil {
		return err
	}
	if _, err := m.backing.Write(buf[:n]); err != nil {
		return err
	}
	for i := uint64(0); i < uint64(count); i++ {
		m.touched.Set(int(sector+i), true)
	}
	return nil
}

func (m *Memory) checkedRange(buf []byte, sector uint64, count uint32) (int, error) {
	want := int(count) * m.sectorSize
	if len(buf) < want {
		return 0, fmt.Errorf("port: buffer too small: got %d bytes, need %d", len(buf), want)
	}
	total := uint64(len(m.raw) / m.sectorSize)
	if sector+uint64(count) > total {
		return 0, fmt.Errorf("port: sector range [%d, %d) out of bounds [0, %d)", sector, sector+uint64(count), total)
	}
	return want, nil
}

// TouchedSectors reports whether sector has ever been written to.
func (m *Memory) TouchedSectors(sector uint64) bool {
	return m.touched.Get(int(sector))
}

// Snapshot returns a copy of the raw backing bytes, for inspection in
// tests.
func (m *Memory) Snapshot() []byte {
	out := make([]byte, len(m.raw))
	copy(out, m.raw)
	return out
}
