package fs

import "github.com/kfarr3/kfs"

// Open prepares role for reading and writing (spec.md section 4.10).
// If the mount isn't currently healthy it tries Init, and on a
// recoverable outcome (when WithAutoFormat allows it) Format followed
// by another Init, surfacing whatever state remains.
func (f *FileSystem) Open(role kfs.FileRole, flags kfs.OpenFlag) kfs.DiskState {
	if !f.device.MediaPresent() {
		f.state = kfs.StateNotInstalled
		return f.state
	}
	if !role.Valid() {
		// Caller error: surfaced, but disk_state is not touched
		// (spec.md section 7).
		return kfs.StateUnknownFile
	}

	if f.state != kfs.StateSuccess {
		if state := f.Init(); state.Recoverable() && f.autoFormat == kfs.AutoFormatOnMismatch {
			if f.Format() == kfs.StateSuccess {
				f.Init()
			}
		}
	}
	if f.state != kfs.StateSuccess {
		return f.state
	}

	fd := f.descriptor(role)
	f.cacheFor(role).Invalidate()

	if flags.Has(kfs.Truncate) {
		fd.StartIndex = 0
		fd.FileSize = 0
	}

	fd.ReadIndex = fd.StartIndex
	fd.WriteIndex = (fd.StartIndex + fd.FileSize) % fd.AllocatedBytes

	return kfs.StateSuccess
}

// Seek repositions role's read_index (spec.md section 4.10).
func (f *FileSystem) Seek(role kfs.FileRole, offset int64, seekType kfs.SeekType) kfs.DiskState {
	if !role.Valid() {
		// Caller error: surfaced, but disk_state is not touched
		// (spec.md section 7).
		return kfs.StateUnknownFile
	}
	if f.state != kfs.StateSuccess {
		return f.state
	}
	fd := f.descriptor(role)

	switch seekType {
	case kfs.SeekAbsolute:
		if offset < 0 || uint64(offset) > fd.FileSize {
			return kfs.StateSeekError
		}
		fd.ReadIndex = (fd.StartIndex + uint64(offset)) % fd.AllocatedBytes

	case kfs.SeekRelative:
		unread := distanceForward(fd.ReadIndex, fd.WriteIndex, fd.AllocatedBytes)
		if offset < 0 || uint64(offset) > unread {
			return kfs.StateSeekError
		}
		fd.ReadIndex = (fd.ReadIndex + uint64(offset)) % fd.AllocatedBytes

	default:
		return kfs.StateSeekError
	}

	return kfs.StateSuccess
}

// distanceForward returns how many bytes lie between from and to,
// walking forward through the circular space of the given modulus.
func distanceForward(from, to, modulus uint64) uint64 {
	if to >= from {
		return to - from
	}
	return modulus - from + to
}

// Eof reports whether role has no unread bytes left.
func (f *FileSystem) Eof(role kfs.FileRole) bool {
	fd := f.descriptor(role)
	return fd.ReadIndex == fd.WriteIndex
}

// FileSize returns role's current logical length.
func (f *FileSystem) FileSize(role kfs.FileRole) uint64 {
	return f.descriptor(role).FileSize
}

// FileAllocatedSize returns role's total byte capacity.
func (f *FileSystem) FileAllocatedSize(role kfs.FileRole) uint64 {
	return f.descriptor(role).AllocatedBytes
}

// Gets reads role one byte at a time until maxLen-1 bytes have been
// stored, a newline is observed and stored, or a read returns 0.
// Carriage returns are skipped. It reports false if no byte was ever
// stored (spec.md section 4.11).
func (f *FileSystem) Gets(role kfs.FileRole, maxLen int) (string, bool) {
	if maxLen <= 1 {
		return "", false
	}

	buf := make([]byte, 0, maxLen-1)
	one := make([]byte, 1)

	for len(buf) < maxLen-1 {
		n, state := f.Read(role, one)
		if n == 0 || state != kfs.StateSuccess {
			break
		}
		if one[0] == '\r' {
			continue
		}
		buf = append(buf, one[0])
		if one[0] == '\n' {
			break
		}
	}

	if len(buf) == 0 {
		return "", false
	}
	return string(buf), true
}
