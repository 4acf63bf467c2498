package kfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/noxer/bytewriter"
)

// DefaultSectorSize is the sector size KFS is built for unless a port
// reports otherwise. It is a build-time constant in the original
// firmware; here it's the sector size cmd/kfsctl uses for image files.
const DefaultSectorSize = 512

var (
	// Magic identifies a sector 0 as a KFS superblock.
	Magic = [4]byte{'K', 'F', 'S', 0}
	// Version identifies the on-disk layout version this package reads
	// and writes.
	Version = [4]byte{'0', '.', '1', 0}
)

// FileDescriptor is the 56-byte, on-disk record describing one of the
// four fixed files. StartIndex, ReadIndex and WriteIndex share one
// coordinate space: byte offsets relative to SectorStart*sectorSize.
type FileDescriptor struct {
	SectorStart    uint64
	SectorCount    uint64
	StartIndex     uint64
	ReadIndex      uint64
	WriteIndex     uint64
	FileSize       uint64
	AllocatedBytes uint64
}

// FileDescriptorSize is the encoded size of a FileDescriptor: seven
// uint64 fields, tightly packed.
const FileDescriptorSize = 7 * 8

// Superblock is the in-memory mirror of sector 0.
type Superblock struct {
	MagicTag    [4]byte
	VersionTag  [4]byte
	SectorCount uint64
	Files       [NumFiles]FileDescriptor
}

// SuperblockSize is the encoded size of a Superblock.
const SuperblockSize = 4 + 4 + 8 + NumFiles*FileDescriptorSize

// NewSuperblock returns a Superblock stamped with the current magic
// and version tags and the given device sector count. File
// descriptors are left zeroed; callers build the file table
// separately (see fs.buildFileTable).
func NewSuperblock(sectorCount uint64) Superblock {
	return Superblock{
		MagicTag:    Magic,
		VersionTag:  Version,
		SectorCount: sectorCount,
	}
}

// Encode serializes the superblock into a sector-sized buffer.
// sectorSize must be at least SuperblockSize; the remainder of the
// sector is zero-filled.
func (sb *Superblock) Encode(sectorSize int) ([]byte, error) {
	if sectorSize < SuperblockSize {
		return nil, fmt.Errorf("kfs: sector size %d too small for a %d-byte superblock", sectorSize, SuperblockSize)
	}

	sector := make([]byte, sectorSize)
	bw := bytewriter.New(sector)

	if _, err := bw.Write(sb.MagicTag[:]); err != nil {
		return nil, err
	}
	if _, err := bw.Write(sb.VersionTag[:]); err != nil {
		return nil, err
	}
	if err := binary.Write(bw, binary.LittleEndian, sb.SectorCount); err != nil {
		return nil, err
	}
	for i := range sb.Files {
		if err := binary.Write(bw, binary.LittleEndian, sb.Files[i]); err != nil {
			return nil, err
		}
	}

	return sector, nil
}

// DecodeSuperblock parses a sector-sized buffer into a Superblock. It
// does not validate the magic, version, or sector count; callers do
// that, since the three outcomes are distinguishable (spec.md 4.2).
func DecodeSuperblock(sector []byte) (Superblock, error) {
	if len(sector) < SuperblockSize {
		return Superblock{}, fmt.Errorf("kfs: sector too small to hold a superblock: got %d bytes, need %d", len(sector), SuperblockSize)
	}

	r := bytes.NewReader(sector)
	var sb Superblock

	if _, err := io.ReadFull(r, sb.MagicTag[:]); err != nil {
		return Superblock{}, err
	}
	if _, err := io.ReadFull(r, sb.VersionTag[:]); err != nil {
		return Superblock{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &sb.SectorCount); err != nil {
		return Superblock{}, err
	}
	for i := range sb.Files {
		if err := binary.Read(r, binary.LittleEndian, &sb.Files[i]); err != nil {
			return Superblock{}, err
		}
	}

	return sb, nil
}
