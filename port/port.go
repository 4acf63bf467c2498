// Package port defines the external collaborators the KFS core
// depends on but does not implement: the block device itself, a
// monotonic clock, an event logger, a debug text sink, and the shared
// serial bus lock. spec.md section 6 specifies these as primitives;
// this package is where that boundary is drawn in Go.
package port

import "errors"

// ErrNoMedia is returned by SectorDevice operations when no card is
// present. The mount controller does not inspect it: it checks
// MediaPresent itself to reach kfs.StateNotInstalled, and an
// ErrNoMedia from a later device call is handled like any other
// device error.
var ErrNoMedia = errors.New("port: no media present")

// SectorDevice is the block device port. All sector addresses are
// 0-based. Sector reads and writes operate on whole sectors only; the
// core is responsible for splitting byte ranges into sector-aligned
// operations.
type SectorDevice interface {
	// SectorCount returns the number of sectors on the device. It is
	// meaningful only after Init has succeeded.
	SectorCount() (uint64, error)

	// Init performs any device-specific setup required before sector
	// I/O can proceed.
	Init() error

	// MediaPresent reports whether a card is currently inserted. It
	// must be safe to call at any time, including before Init.
	MediaPresent() bool

	// ReadSectors fills buf, which must be exactly count*SectorSize
	// bytes, with the contents of count sectors starting at sector.
	ReadSectors(buf []byte, sector uint64, count uint32) error

	// WriteSectors writes buf, which must be exactly count*SectorSize
	// bytes, to count sectors starting at sector.
	WriteSectors(buf []byte, sector uint64, count uint32) error

	// SectorSize returns the device's sector size in bytes.
	SectorSize() int
}

// Clock is the monotonic millisecond clock Periodic gates on.
type Clock interface {
	UptimeMillis() uint64
}

// Event identifiers logged by the retry policy (spec.md section 4.8).
type Event string

const (
	EventWriteRetrySucceeded Event = "DISK_101"
	EventReadRetrySucceeded  Event = "DISK_201"
)

// EventSink receives structured events emitted by the retry policy.
type EventSink interface {
	LogEvent(event Event)
}

// DebugSink is the free-form debug text sink (spec.md's
// debug_printf). A *log.Logger satisfies this interface.
type DebugSink interface {
	Printf(format string, args ...any)
}

// BusLock models the shared serial bus the device sits on. The
// FileSystem's Read and Write acquire it for the duration of the call
// and release it on every exit path, including errors. Its other
// operations (Init, Format, Sync, Periodic, Open, Seek) do not take
// it, including those that read or write sector 0.
type BusLock interface {
	Lock()
	Unlock()
}
