package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/port"
)

// TestInit__TransientReadFaultRetriesAndLogsOnce reproduces spec.md
// section 8's "Retry accounting" scenario: a transient read fault on
// the first attempt at sector 0 during Init must be absorbed by the
// one-shot retry and logged exactly once.
func TestInit__TransientReadFaultRetriesAndLogsOnce(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	sb := kfs.NewSuperblock(8)
	sector, err := sb.Encode(kfs.DefaultSectorSize)
	require.NoError(t, err)
	require.NoError(t, device.WriteSectors(sector, 0, 1))

	fi := port.NewFaultInjector(device)
	fi.FailNextReads(1)

	recorder := &port.Recorder{}
	f := New(fi, WithEventSink(recorder))

	state := f.Init()
	assert.Equal(t, kfs.StateSuccess, state)
	assert.Equal(t, 1, recorder.Count(port.EventReadRetrySucceeded))
	assert.Equal(t, 0, recorder.Count(port.EventWriteRetrySucceeded))
}

// TestInit__DoubleReadFailureReturnsBadDisk verifies that a second
// consecutive failure is not masked by the retry and does not log a
// retry-success event.
func TestInit__DoubleReadFailureReturnsBadDisk(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	fi := port.NewFaultInjector(device)
	fi.FailNextReads(2)

	recorder := &port.Recorder{}
	f := New(fi, WithEventSink(recorder))

	state := f.Init()
	assert.Equal(t, kfs.StateBadDisk, state)
	assert.Equal(t, 0, recorder.Count(port.EventReadRetrySucceeded))
}

// TestSync__TransientWriteFaultRetriesAndLogsOnce mirrors the read
// case for the write path exercised by Sync.
func TestSync__TransientWriteFaultRetriesAndLogsOnce(t *testing.T) {
	device := newFakeInsertableDevice(kfs.DefaultSectorSize, 8)
	device.Insert()

	fi := port.NewFaultInjector(device)
	fi.FailNextWrites(1)

	recorder := &port.Recorder{}
	f := New(fi, WithEventSink(recorder))
	f.super = kfs.NewSuperblock(8)

	state := f.Sync()
	assert.Equal(t, kfs.StateSuccess, state)
	assert.Equal(t, 1, recorder.Count(port.EventWriteRetrySucceeded))
}
