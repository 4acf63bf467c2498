package fs

import (
	"github.com/noxer/bytewriter"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/cache"
	"github.com/kfarr3/kfs/port"
)

// spliceSector writes data into sectorBuf at offset using the same
// fixed-capacity bytewriter.Writer superblock.go's Encode uses for
// sector 0, rather than a hand-rolled copy() (spec.md section 4.7
// step 3's read-modify-write splice).
func spliceSector(sectorBuf []byte, offset int, data []byte) error {
	bw := bytewriter.New(sectorBuf[offset:])
	_, err := bw.Write(data)
	return err
}

// clampLength applies the shared byte_offset+length > allocated_bytes
// clamp used by both internal primitives (spec.md section 4.7 step 1).
func clampLength(byteOffset, length uint64, allocatedBytes uint64) uint64 {
	if byteOffset+length > allocatedBytes {
		if byteOffset >= allocatedBytes {
			return 0
		}
		length = allocatedBytes - byteOffset
	}
	return length
}

// sectorAndOffset maps a file-relative byte offset to a device sector
// number and the byte offset within that sector.
func (f *FileSystem) sectorAndOffset(fd *kfs.FileDescriptor, byteOffset uint64) (sector uint64, offset int) {
	abs := byteOffset + fd.SectorStart*uint64(f.sectorSize)
	sector = abs / uint64(f.sectorSize)
	offset = int(abs % uint64(f.sectorSize))
	return sector, offset
}

// readSectorCached fetches one device sector through the given cache,
// applying the one-shot retry policy and the "+1 bias" tag convention
// (spec.md section 4.7 step 2, section 3's sector cache entry).
func (f *FileSystem) readSectorCached(c *cache.SectorCache, sector uint64) ([]byte, error) {
	if buf, ok := c.Lookup(sector); ok {
		return buf, nil
	}
	buf := make([]byte, f.sectorSize)
	err := f.retrySector(func() error {
		return f.device.ReadSectors(buf, sector, 1)
	}, port.EventReadRetrySucceeded)
	if err != nil {
		return nil, err
	}
	c.Store(sector, buf)
	return c.Buffer(), nil
}

// internalWrite performs the read-modify-write sector splicing for
// role starting at byteOffset, per spec.md section 4.7's write
// primitive: it always round-trips through a sector buffer, even for
// whole-sector writes, so partial trailing writes never clobber
// untouched bytes.
func (f *FileSystem) internalWrite(role kfs.FileRole, byteOffset uint64, data []byte) (uint64, kfs.DiskState) {
	fd := f.descriptor(role)
	length := clampLength(byteOffset, uint64(len(data)), fd.AllocatedBytes)
	if length == 0 {
		return 0, kfs.StateSuccess
	}
	data = data[:length]

	c := f.cacheFor(role)
	c.Invalidate()

	var written uint64
	for written < length {
		sector, offset := f.sectorAndOffset(fd, byteOffset+written)

		sectorBuf := make([]byte, f.sectorSize)
		if err := f.retrySector(func() error {
			return f.device.ReadSectors(sectorBuf, sector, 1)
		}, port.EventReadRetrySucceeded); err != nil {
			f.state = kfs.StateWriteError
			return written, f.state
		}

		n := f.sectorSize - offset
		remaining := int(length - written)
		if n > remaining {
			n = remaining
		}
		if err := spliceSector(sectorBuf, offset, data[written:written+uint64(n)]); err != nil {
			f.state = kfs.StateWriteError
			return written, f.state
		}

		if err := f.retrySector(func() error {
			return f.device.WriteSectors(sectorBuf, sector, 1)
		}, port.EventWriteRetrySucceeded); err != nil {
			f.state = kfs.StateWriteError
			return written, f.state
		}

		written += uint64(n)
	}

	return written, kfs.StateSuccess
}

// internalRead mirrors internalWrite's clamping and sector walk, but
// serves whole sectors from the per-descriptor cache when the tag
// matches (spec.md section 4.7's read primitive).
func (f *FileSystem) internalRead(role kfs.FileRole, byteOffset uint64, out []byte) (uint64, kfs.DiskState) {
	fd := f.descriptor(role)
	length := clampLength(byteOffset, uint64(len(out)), fd.AllocatedBytes)
	if length == 0 {
		return 0, kfs.StateSuccess
	}

	c := f.cacheFor(role)

	var read uint64
	for read < length {
		sector, offset := f.sectorAndOffset(fd, byteOffset+read)

		sectorBuf, err := f.readSectorCached(c, sector)
		if err != nil {
			f.state = kfs.StateReadError
			return read, f.state
		}

		n := f.sectorSize - offset
		remaining := int(length - read)
		if n > remaining {
			n = remaining
		}
		copy(out[read:read+uint64(n)], sectorBuf[offset:offset+n])

		read += uint64(n)
	}

	return read, kfs.StateSuccess
}

// Read copies up to len(out) bytes from role's read_index toward
// write_index, splitting at the end of the allocated region exactly
// as spec.md section 4.9 describes. It holds the bus lock for the
// whole call, correcting the stray early unlock present in
// original_source/kfs.c (see DESIGN.md's Open Question disposition).
func (f *FileSystem) Read(role kfs.FileRole, out []byte) (uint64, kfs.DiskState) {
	f.bus.Lock()
	defer f.bus.Unlock()

	if !role.Valid() {
		// Caller error: surfaced, but disk_state is not touched
		// (spec.md section 7).
		return 0, kfs.StateUnknownFile
	}
	if f.state != kfs.StateSuccess {
		return 0, f.state
	}
	fd := f.descriptor(role)
	if fd.ReadIndex == fd.WriteIndex {
		// Empty buffer: read_index == write_index also happens to be
		// the formula's "fully wrapped" shape, which would otherwise
		// read stale bytes already delivered on a prior call.
		return 0, kfs.StateSuccess
	}
	length := uint64(len(out))

	var copy1, copy2 uint64
	if fd.WriteIndex > fd.ReadIndex {
		copy1 = fd.WriteIndex - fd.ReadIndex
		if copy1 > length {
			copy1 = length
		}
	} else {
		copy1 = fd.AllocatedBytes - fd.ReadIndex
		copy2 = fd.WriteIndex
		if copy1+copy2 > length {
			if copy1 > length {
				copy1 = length
				copy2 = 0
			} else {
				copy2 = length - copy1
			}
		}
	}

	n1, state := f.internalRead(role, fd.ReadIndex, out[:copy1])
	if state != kfs.StateSuccess {
		return 0, state
	}
	total := n1

	if copy2 > 0 {
		n2, state := f.internalRead(role, 0, out[copy1:copy1+copy2])
		if state != kfs.StateSuccess {
			return 0, state
		}
		total += n2
	}

	fd.ReadIndex = (fd.ReadIndex + total) % fd.AllocatedBytes
	return total, kfs.StateSuccess
}

// Write appends up to len(data) bytes at role's write_index, refusing
// to cross the reserved one-byte gap. It reproduces
// original_source/kfs.c's copy1/copy2 branching, including the
// start_index==0 off-by-one correction and the length==1 fast path
// that targets write_index+1 instead of write_index — preserved
// deliberately; see DESIGN.md's Open Question disposition.
func (f *FileSystem) Write(role kfs.FileRole, data []byte) (uint64, kfs.DiskState) {
	f.bus.Lock()
	defer f.bus.Unlock()

	if !role.Valid() {
		// Caller error: surfaced, but disk_state is not touched
		// (spec.md section 7).
		return 0, kfs.StateUnknownFile
	}
	if f.state != kfs.StateSuccess {
		return 0, f.state
	}
	fd := f.descriptor(role)

	admitted := fd.AllocatedBytes - fd.FileSize - 1
	length := uint64(len(data))
	if length > admitted {
		length = admitted
	}
	if length == 0 {
		return 0, kfs.StateSuccess
	}

	if length == 1 {
		target := (fd.WriteIndex + 1) % fd.AllocatedBytes
		n, state := f.internalWrite(role, target, data[:1])
		if state != kfs.StateSuccess {
			return 0, state
		}
		fd.FileSize += 1
		fd.WriteIndex = (fd.StartIndex + fd.FileSize) % fd.AllocatedBytes
		return n, kfs.StateSuccess
	}

	var copy1, copy2 uint64
	if fd.StartIndex > fd.WriteIndex {
		copy1 = fd.StartIndex - fd.WriteIndex - 1
		copy2 = 0
	} else {
		copy1 = fd.AllocatedBytes - fd.WriteIndex
		copy2 = fd.StartIndex
		if fd.StartIndex == 0 {
			copy1--
		} else {
			copy2--
		}
	}
	if copy1+copy2 > length {
		if copy1 > length {
			copy1 = length
			copy2 = 0
		} else {
			copy2 = length - copy1
		}
	}

	n1, state := f.internalWrite(role, fd.WriteIndex, data[:copy1])
	if state != kfs.StateSuccess {
		return 0, state
	}
	total := n1

	if copy2 > 0 {
		n2, state := f.internalWrite(role, 0, data[copy1:copy1+copy2])
		if state != kfs.StateSuccess {
			// file_size/write_index are left untouched below, so the n1
			// bytes already on disk are harmless, overwritten by the
			// next successful write; report 0 per the write() contract
			// (spec.md section 6: bytes_written is 0 on error).
			return 0, state
		}
		total += n2
	}

	fd.FileSize += total
	fd.WriteIndex = (fd.StartIndex + fd.FileSize) % fd.AllocatedBytes
	return total, kfs.StateSuccess
}
