package kfs

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// LayoutEntry describes the default size of one of the three linear
// files. The log file is not listed: it always consumes whatever
// sectors remain after the superblock and the three linear files.
type LayoutEntry struct {
	Role      string `csv:"role"`
	Label     string `csv:"label"`
	SizeBytes int64  `csv:"size_bytes"`
}

//go:embed default-layout.csv
var defaultLayoutCSV string

var defaultLayout []LayoutEntry

func init() {
	reader := strings.NewReader(defaultLayoutCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row LayoutEntry) error {
		defaultLayout = append(defaultLayout, row)
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("kfs: malformed embedded default-layout.csv: %s", err))
	}
}

// DefaultLayout returns the compile-time-fixed sizes, in bytes, of the
// firmware, config, and event regions, in file-table order. The log
// region's size isn't part of this table: Format computes it from
// whatever sectors are left over.
func DefaultLayout() []LayoutEntry {
	out := make([]LayoutEntry, len(defaultLayout))
	copy(out, defaultLayout)
	return out
}

// DefaultSizeFor returns the default allocation, in bytes, for one of
// the three linear roles. It panics for Log, which has no fixed
// default size.
func DefaultSizeFor(role FileRole) int64 {
	if role == Log {
		panic("kfs: Log has no fixed default size, it consumes the remainder")
	}
	for _, entry := range defaultLayout {
		if entry.Role == role.String() {
			return entry.SizeBytes
		}
	}
	panic(fmt.Sprintf("kfs: no default layout entry for role %s", role))
}
