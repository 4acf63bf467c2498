package fs

import "github.com/kfarr3/kfs/port"

// retrySector runs op once; on failure it runs op a second time. A
// second success logs event (DISK_101/DISK_201) since that's the
// signal a transient fault actually happened. A second failure is
// reported to the caller as-is; retrySector never itself maps errors
// to a DiskState, since read and write mean different things on
// double failure (READ_ERROR vs WRITE_ERROR vs BADDISK depending on
// call site).
func (f *FileSystem) retrySector(op func() error, event port.Event) error {
	if err := op(); err == nil {
		return nil
	}
	if err := op(); err != nil {
		return err
	}
	f.events.LogEvent(event)
	return nil
}
