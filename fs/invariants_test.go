package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/port"
)

func TestCheckInvariants__FreshlyFormattedTableIsClean(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 700000)
	device.Insert()
	f := New(device)
	require.Equal(t, kfs.StateSuccess, f.Format())

	assert.NoError(t, f.CheckInvariants())
}

func TestCheckInvariants__DetectsWriteIndexDrift(t *testing.T) {
	device := port.NewMemory(kfs.DefaultSectorSize, 4)
	f := newSingleFileFS(t, device, kfs.Log, 3*kfs.DefaultSectorSize)

	fd := f.descriptor(kfs.Log)
	fd.FileSize = 10
	fd.WriteIndex = 999 // inconsistent with start_index + file_size

	err := f.CheckInvariants()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write_index")
}

func TestCheckInvariants__DetectsOversizedFileSize(t *testing.T) {
	device := port.NewMemory(kfs.DefaultSectorSize, 4)
	f := newSingleFileFS(t, device, kfs.Log, 3*kfs.DefaultSectorSize)

	fd := f.descriptor(kfs.Log)
	fd.FileSize = fd.AllocatedBytes // must be <= allocated_bytes - 1
	fd.WriteIndex = (fd.StartIndex + fd.FileSize) % fd.AllocatedBytes

	err := f.CheckInvariants()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds allocated_bytes-1")
}
