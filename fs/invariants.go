package fs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/kfarr3/kfs"
)

// CheckInvariants walks every file descriptor and verifies the
// quantified invariants spec.md section 8 requires to hold at every
// public-API boundary. It aggregates every violation found with
// go-multierror rather than stopping at the first, since a caller
// debugging a corrupted mount wants the whole picture.
func (f *FileSystem) CheckInvariants() error {
	var result *multierror.Error

	sectorSize := uint64(f.sectorSize)
	expectedStart := uint64(1)

	for role := kfs.Firmware; role <= kfs.Log; role++ {
		fd := f.super.Files[role]

		if fd.AllocatedBytes != fd.SectorCount*sectorSize {
			result = multierror.Append(result, fmt.Errorf("%s: allocated_bytes=%d != sector_count*SECTOR_SIZE=%d", role, fd.AllocatedBytes, fd.SectorCount*sectorSize))
		}
		if fd.AllocatedBytes > 0 && fd.FileSize > fd.AllocatedBytes-1 {
			result = multierror.Append(result, fmt.Errorf("%s: file_size=%d exceeds allocated_bytes-1=%d", role, fd.FileSize, fd.AllocatedBytes-1))
		}
		if fd.AllocatedBytes > 0 {
			wantWrite := (fd.StartIndex + fd.FileSize) % fd.AllocatedBytes
			if fd.WriteIndex != wantWrite {
				result = multierror.Append(result, fmt.Errorf("%s: write_index=%d != (start_index+file_size) mod allocated_bytes=%d", role, fd.WriteIndex, wantWrite))
			}
			if fd.ReadIndex >= fd.AllocatedBytes || fd.WriteIndex >= fd.AllocatedBytes || fd.StartIndex >= fd.AllocatedBytes {
				result = multierror.Append(result, fmt.Errorf("%s: an index is out of [0, allocated_bytes) range", role))
			}
		}
		if fd.SectorStart != expectedStart {
			result = multierror.Append(result, fmt.Errorf("%s: sector_start=%d != expected contiguous offset %d", role, fd.SectorStart, expectedStart))
		}
		expectedStart += fd.SectorCount
	}

	if expectedStart != f.super.SectorCount {
		result = multierror.Append(result, fmt.Errorf("files cover through sector %d, device has %d sectors", expectedStart-1, f.super.SectorCount))
	}

	return result.ErrorOrNil()
}
