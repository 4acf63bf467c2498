package fs

import (
	"fmt"
	"io"

	"github.com/kfarr3/kfs"
)

// sizeStr renders a byte count the way original_source/kfs.c's
// kfs_size_str does: the largest unit (b/k/m) that keeps the number
// at least 1, one decimal place for k and m.
func sizeStr(bytes uint64) string {
	const (
		kib = 1024
		mib = 1024 * 1024
	)
	switch {
	case bytes >= mib:
		return fmt.Sprintf("%.1fm", float64(bytes)/mib)
	case bytes >= kib:
		return fmt.Sprintf("%.1fk", float64(bytes)/kib)
	default:
		return fmt.Sprintf("%db", bytes)
	}
}

// PrintStats dumps the superblock to w, refusing if the current
// DiskState means the superblock was never validated against the
// media (spec.md section 7).
func (f *FileSystem) PrintStats(w io.Writer) error {
	if f.state != kfs.StateSuccess {
		return fmt.Errorf("kfs: print_stats refused: disk_state=%s", f.StrError(f.state))
	}

	fmt.Fprintf(w, "KFS sector_count=%d\n", f.super.SectorCount)
	for role := kfs.Firmware; role <= kfs.Log; role++ {
		fd := f.super.Files[role]
		fmt.Fprintf(w, "  %-8s start=%d count=%d size=%s/%s used=%d start_index=%d read_index=%d write_index=%d\n",
			role, fd.SectorStart, fd.SectorCount,
			sizeStr(fd.FileSize), sizeStr(fd.AllocatedBytes),
			fd.FileSize, fd.StartIndex, fd.ReadIndex, fd.WriteIndex)
	}
	return nil
}
