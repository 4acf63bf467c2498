package fs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/port"
)

// fakeInsertableDevice is a minimal SectorDevice double that only
// actually backs sector 0. It exists so tests exercising mount state
// transitions against a realistically large device (the default
// firmware/config/event layout needs hundreds of thousands of
// sectors) don't have to allocate that many real bytes.
type fakeInsertableDevice struct {
	present    bool
	sectorSize int
	count      uint64
	sector0    []byte
}

func newFakeInsertableDevice(sectorSize int, count uint64) *fakeInsertableDevice {
	return &fakeInsertableDevice{sectorSize: sectorSize, count: count, sector0: make([]byte, sectorSize)}
}

func (d *fakeInsertableDevice) Insert() { d.present = true }
func (d *fakeInsertableDevice) Eject()  { d.present = false }

func (d *fakeInsertableDevice) MediaPresent() bool           { return d.present }
func (d *fakeInsertableDevice) Init() error                  { return nil }
func (d *fakeInsertableDevice) SectorCount() (uint64, error) { return d.count, nil }
func (d *fakeInsertableDevice) SectorSize() int              { return d.sectorSize }

func (d *fakeInsertableDevice) ReadSectors(buf []byte, sector uint64, count uint32) error {
	if sector != 0 || count != 1 {
		return fmt.Errorf("fakeInsertableDevice only backs sector 0")
	}
	copy(buf, d.sector0)
	return nil
}

func (d *fakeInsertableDevice) WriteSectors(buf []byte, sector uint64, count uint32) error {
	if sector != 0 || count != 1 {
		return fmt.Errorf("fakeInsertableDevice only backs sector 0")
	}
	copy(d.sector0, buf)
	return nil
}

// newSingleFileFS builds an already-mounted FileSystem whose only
// populated descriptor is role, spanning every data sector on device.
// It bypasses Format's default layout sizes so circular-buffer tests
// can use small, easy-to-reason-about devices.
func newSingleFileFS(t *testing.T, device port.SectorDevice, role kfs.FileRole, allocatedBytes uint64) *FileSystem {
	t.Helper()
	f := New(device)

	sectorCount, err := device.SectorCount()
	require.NoError(t, err)

	f.super = kfs.NewSuperblock(sectorCount)
	f.super.Files[role] = kfs.FileDescriptor{
		SectorStart:    1,
		SectorCount:    sectorCount - 1,
		AllocatedBytes: allocatedBytes,
	}
	f.state = kfs.StateSuccess
	return f
}
