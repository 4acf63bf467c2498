package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfarr3/kfs"
)

// TestInit__ZeroedSuperblockYieldsUnformatted reproduces spec.md
// section 8's first mount-validation scenario: a blank sector 0 (as a
// never-formatted card would have) carries no magic tag at all.
func TestInit__ZeroedSuperblockYieldsUnformatted(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	state := New(device).Init()
	assert.Equal(t, kfs.StateUnformatted, state)
}

// TestInit__BumpedVersionYieldsBadVersion covers the second scenario:
// correct magic, a version tag this build doesn't recognize.
func TestInit__BumpedVersionYieldsBadVersion(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	sb := kfs.NewSuperblock(8)
	sb.VersionTag = [4]byte{'9', '.', '9', 0}
	sector, err := sb.Encode(kfs.DefaultSectorSize)
	require.NoError(t, err)
	require.NoError(t, device.WriteSectors(sector, 0, 1))

	state := New(device).Init()
	assert.Equal(t, kfs.StateBadVersion, state)
}

// TestInit__StaleSectorCountYieldsMismatchSectorCount covers the third
// scenario: a superblock formatted for a different card size than the
// one currently reporting in.
func TestInit__StaleSectorCountYieldsMismatchSectorCount(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	sb := kfs.NewSuperblock(999)
	sector, err := sb.Encode(kfs.DefaultSectorSize)
	require.NoError(t, err)
	require.NoError(t, device.WriteSectors(sector, 0, 1))

	state := New(device).Init()
	assert.Equal(t, kfs.StateMismatchSectorCount, state)
}

// TestOpen__MediaAbsentYieldsNotInstalledNotUnknownFile guards the
// ordering original_source/kfs.c's kfs_open uses: the media-presence
// check runs before the fd-range check, so pulling the card produces
// NOT_INSTALLED rather than masking it as a caller error.
func TestOpen__MediaAbsentYieldsNotInstalledNotUnknownFile(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	f := New(device)

	state := f.Open(kfs.Log, 0)
	assert.Equal(t, kfs.StateNotInstalled, state)
	assert.Equal(t, kfs.StateNotInstalled, f.DiskState())
}

// TestOpen__BadRoleYieldsUnknownFileWhenMediaPresent ensures the
// caller-error outcome still fires once media presence is ruled out.
func TestOpen__BadRoleYieldsUnknownFileWhenMediaPresent(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()
	f := New(device)

	state := f.Open(kfs.FileRole(99), 0)
	assert.Equal(t, kfs.StateUnknownFile, state)
}

// TestSeek__CallerErrorDoesNotMutateDiskState checks spec.md section
// 7's "caller error ... surfaced; no state mutation" rule: an
// out-of-range seek on a healthy mount must not corrupt disk_state for
// unrelated callers (e.g. PrintStats) afterward.
func TestSeek__CallerErrorDoesNotMutateDiskState(t *testing.T) {
	f := setupLogWithContent(t, "HI")
	require.Equal(t, kfs.StateSuccess, f.DiskState())

	state := f.Seek(kfs.Log, 100, kfs.SeekAbsolute)
	assert.Equal(t, kfs.StateSeekError, state)
	assert.Equal(t, kfs.StateSuccess, f.DiskState(), "disk_state must be untouched by a caller error")
}

// TestWrite__BeforeMountReturnsCurrentStateWithoutPanicking guards
// against dividing by a zero AllocatedBytes when Write is called on a
// FileSystem that has never been mounted.
func TestWrite__BeforeMountReturnsCurrentStateWithoutPanicking(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()
	f := New(device)

	n, state := f.Write(kfs.Log, []byte("hi"))
	assert.EqualValues(t, 0, n)
	assert.Equal(t, f.DiskState(), state)
	assert.NotEqual(t, kfs.StateSuccess, state)
}
