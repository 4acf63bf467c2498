package port

import (
	"fmt"
	"io"
	"os"
)

// FileDevice is a SectorDevice backed by a real file on the host
// filesystem, used by cmd/kfsctl to operate on a KFS image file the
// way the embedded firmware operates on a physical card.
type FileDevice struct {
	sectorSize int
	file       *os.File
	size       int64
}

// OpenFileDevice opens an existing image file of the given sector
// size.
func OpenFileDevice(path string, sectorSize int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileDevice{sectorSize: sectorSize, file: f, size: info.Size()}, nil
}

// CreateFileDevice creates a new image file of exactly totalSectors
// sectors, zero-filled.
func CreateFileDevice(path string, sectorSize int, totalSectors uint64) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(sectorSize) * int64(totalSectors)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	return &FileDevice{sectorSize: sectorSize, file: f, size: size}, nil
}

func (d *FileDevice) Close() error {
	return d.file.Close()
}

func (d *FileDevice) Init() error {
	return nil
}

func (d *FileDevice) MediaPresent() bool {
	return true
}

func (d *FileDevice) SectorSize() int {
	return d.sectorSize
}

func (d *FileDevice) SectorCount() (uint64, error) {
	return uint64(d.size) / uint64(d.sectorSize), nil
}

func (d *FileDevice) checkedRange(buf []byte, sector uint64, count uint32) (int, error) {
	want := int(count) * d.sectorSize
	if len(buf) < want {
		return 0, fmt.Errorf("port: buffer too small: got %d bytes, need %d", len(buf), want)
	}
	total := uint64(d.size) / uint64(d.sectorSize)
	if sector+uint64(count) > total {
		return 0, fmt.Errorf("port: sector range [%d, %d) out of bounds [0, %d)", sector, sector+uint64(count), total)
	}
	return want, nil
}

func (d *FileDevice) ReadSectors(buf []byte, sector uint64, count uint32) error {
	want, err := d.checkedRange(buf, sector, count)
	if err != nil {
		return err
	}
	if _, err := d.file.Seek(int64(sector)*int64(d.sectorSize), io.SeekStart); err != nil {
		return err
	}
	_, err = io.ReadFull(d.file, buf[:want])
	return err
}

func (d *FileDevice) WriteSectors(buf []byte, sector uint64, count uint32) error {
	want, err := d.checkedRange(buf, sector, count)
	if err != nil {
		return err
	}
	if _, err := d.file.Seek(int64(sector)*int64(d.sectorSize), io.SeekStart); err != nil {
		return err
	}
	_, err = d.file.Write(buf[:want])
	return err
}
