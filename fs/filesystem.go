// Package fs is the KFS mount controller and public file API: the
// init/format/sync/periodic lifecycle and the read/write/seek/gets
// operations spec.md describes in sections 4 and 6, built on top of
// the port.SectorDevice the caller supplies.
package fs

import (
	"log"
	"os"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/cache"
	"github.com/kfarr3/kfs/port"
)

type noopEventSink struct{}

func (noopEventSink) LogEvent(port.Event) {}

type noopDebugSink struct{}

func (noopDebugSink) Printf(string, ...any) {}

// FileSystem is a mounted (or mount-attempting) KFS instance. It owns
// the in-memory superblock and the per-file sector caches, and is the
// single point of contact for every public operation. The zero value
// is not usable; construct one with New.
type FileSystem struct {
	device port.SectorDevice
	clock  port.Clock
	events port.EventSink
	debug  port.DebugSink
	bus    port.BusLock

	sectorSize int
	autoFormat kfs.AutoFormatPolicy

	state        kfs.DiskState
	super        kfs.Superblock
	caches       [kfs.NumFiles]*cache.SectorCache
	nextUpdateMs uint64
}

// Option configures a FileSystem at construction time.
type Option func(*FileSystem)

// WithClock overrides the monotonic clock Periodic uses to gate its
// once-per-second tick. Defaults to a port.SystemClock.
func WithClock(c port.Clock) Option {
	return func(f *FileSystem) { f.clock = c }
}

// WithEventSink overrides where retry-success events are logged.
func WithEventSink(e port.EventSink) Option {
	return func(f *FileSystem) { f.events = e }
}

// WithDebugSink overrides where free-form debug text goes. Defaults
// to a *log.Logger writing to stderr.
func WithDebugSink(d port.DebugSink) Option {
	return func(f *FileSystem) { f.debug = d }
}

// WithBusLock overrides the shared serial bus lock. Defaults to a
// plain mutex.
func WithBusLock(b port.BusLock) Option {
	return func(f *FileSystem) { f.bus = b }
}

// WithAutoFormat controls whether Open and Periodic are allowed to
// reformat a disk that failed mount validation with a recoverable
// state (spec.md section 9's configuration recommendation). Defaults
// to kfs.AutoFormatOnMismatch.
func WithAutoFormat(policy kfs.AutoFormatPolicy) Option {
	return func(f *FileSystem) { f.autoFormat = policy }
}

// New constructs a FileSystem over device. It does not mount; call
// Init (or Open, which mounts implicitly) before using it.
func New(device port.SectorDevice, opts ...Option) *FileSystem {
	f := &FileSystem{
		device:     device,
		clock:      port.NewSystemClock(),
		events:     noopEventSink{},
		debug:      port.NewStdDebugSink(log.New(os.Stderr, "", log.LstdFlags)),
		bus:        &port.MutexBusLock{},
		sectorSize: device.SectorSize(),
		autoFormat: kfs.AutoFormatOnMismatch,
		state:      kfs.StateBadDisk,
	}
	for i := range f.caches {
		f.caches[i] = cache.New(f.sectorSize)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DiskState returns the authoritative mount state, as last set by
// Init, Format, Sync, Open, or the internal I/O engine.
func (f *FileSystem) DiskState() kfs.DiskState {
	return f.state
}

// StrError renders a DiskState as a short identifier for log lines.
func (f *FileSystem) StrError(state kfs.DiskState) string {
	return kfs.StrError(state)
}

func (f *FileSystem) descriptor(role kfs.FileRole) *kfs.FileDescriptor {
	return &f.super.Files[role]
}

func (f *FileSystem) invalidateAllCaches() {
	for _, c := range f.caches {
		c.Invalidate()
	}
}

func (f *FileSystem) cacheFor(role kfs.FileRole) *cache.SectorCache {
	return f.caches[role]
}
