package fs

import (
	"fmt"

	"github.com/kfarr3/kfs"
)

// buildFileTable lays out the four fixed files back to back starting
// at sector 1 (sector 0 is the superblock), sizing Firmware, Config,
// and Event from the default layout and handing the Log file
// whatever sectors remain. It mirrors kfs_format's allocation loop in
// original_source/kfs.c.
func buildFileTable(sectorCount uint64, sectorSize int) ([kfs.NumFiles]kfs.FileDescriptor, error) {
	var files [kfs.NumFiles]kfs.FileDescriptor

	sectorsUsed := uint64(1) // sector 0 is the superblock
	for _, role := range []kfs.FileRole{kfs.Firmware, kfs.Config, kfs.Event} {
		size := kfs.DefaultSizeFor(role)
		count := sectorsFor(size, sectorSize)
		if sectorsUsed+count > sectorCount {
			return files, fmt.Errorf("kfs: disk too small to hold %s file: need %d more sectors, have %d", role, sectorsUsed+count-sectorCount, sectorCount-sectorsUsed)
		}
		files[role] = newDescriptor(sectorsUsed, count, sectorSize)
		sectorsUsed += count
	}

	if sectorsUsed >= sectorCount {
		return files, fmt.Errorf("kfs: disk too small to hold a log file: %d sectors available for fixed files, %d total", sectorsUsed, sectorCount)
	}
	remaining := sectorCount - sectorsUsed
	files[kfs.Log] = newDescriptor(sectorsUsed, remaining, sectorSize)

	return files, nil
}

func sectorsFor(sizeBytes int64, sectorSize int) uint64 {
	n := uint64(sizeBytes) / uint64(sectorSize)
	if uint64(sizeBytes)%uint64(sectorSize) != 0 {
		n++
	}
	return n
}

// newDescriptor builds a freshly formatted, empty FileDescriptor:
// read, write, and start index all at zero, allocated_bytes equal to
// the raw byte capacity. The one-byte gap between empty and full is
// enforced by the file_size <= allocated_bytes-1 invariant and the
// write admission clamp, not by shrinking allocated_bytes itself.
func newDescriptor(start, count uint64, sectorSize int) kfs.FileDescriptor {
	return kfs.FileDescriptor{
		SectorStart:    start,
		SectorCount:    count,
		StartIndex:     0,
		ReadIndex:      0,
		WriteIndex:     0,
		FileSize:       0,
		AllocatedBytes: count * uint64(sectorSize),
	}
}
