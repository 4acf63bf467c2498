package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/port"
)

func setupLogWithContent(t *testing.T, content string) *FileSystem {
	t.Helper()
	device := port.NewMemory(kfs.DefaultSectorSize, 4)
	f := newSingleFileFS(t, device, kfs.Log, 3*kfs.DefaultSectorSize)
	require.Equal(t, kfs.StateSuccess, f.Open(kfs.Log, kfs.Truncate))
	n, state := f.Write(kfs.Log, []byte(content))
	require.Equal(t, kfs.StateSuccess, state)
	require.EqualValues(t, len(content), n)
	require.Equal(t, kfs.StateSuccess, f.Open(kfs.Log, 0))
	return f
}

func TestSeek__AbsoluteWithinFileSizeSucceeds(t *testing.T) {
	f := setupLogWithContent(t, "HELLO WORLD")

	require.Equal(t, kfs.StateSuccess, f.Seek(kfs.Log, 6, kfs.SeekAbsolute))

	buf := make([]byte, 5)
	n, state := f.Read(kfs.Log, buf)
	require.Equal(t, kfs.StateSuccess, state)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "WORLD", string(buf))
}

func TestSeek__AbsoluteBeyondFileSizeFails(t *testing.T) {
	f := setupLogWithContent(t, "HI")
	state := f.Seek(kfs.Log, 100, kfs.SeekAbsolute)
	assert.Equal(t, kfs.StateSeekError, state)
}

func TestSeek__RelativeCrossingWriteIndexFails(t *testing.T) {
	f := setupLogWithContent(t, "HI")
	state := f.Seek(kfs.Log, 10, kfs.SeekRelative)
	assert.Equal(t, kfs.StateSeekError, state)
}

func TestSeek__RelativeWithinBoundsSucceeds(t *testing.T) {
	f := setupLogWithContent(t, "HELLO WORLD")
	require.Equal(t, kfs.StateSuccess, f.Seek(kfs.Log, 6, kfs.SeekRelative))

	buf := make([]byte, 5)
	n, state := f.Read(kfs.Log, buf)
	require.Equal(t, kfs.StateSuccess, state)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "WORLD", string(buf))
}

func TestEof__TrueExactlyWhenReadCaughtUpToWrite(t *testing.T) {
	f := setupLogWithContent(t, "HI")
	assert.False(t, f.Eof(kfs.Log))

	buf := make([]byte, 2)
	_, state := f.Read(kfs.Log, buf)
	require.Equal(t, kfs.StateSuccess, state)
	assert.True(t, f.Eof(kfs.Log))
}

func TestSeek__ToFileSizeThenToZeroMatchesEofLaw(t *testing.T) {
	f := setupLogWithContent(t, "HI")

	require.Equal(t, kfs.StateSuccess, f.Seek(kfs.Log, int64(f.FileSize(kfs.Log)), kfs.SeekAbsolute))
	assert.True(t, f.Eof(kfs.Log))

	require.Equal(t, kfs.StateSuccess, f.Seek(kfs.Log, 0, kfs.SeekAbsolute))
	assert.Equal(t, f.FileSize(kfs.Log) == 0, f.Eof(kfs.Log))
}

func TestGets__ReadsUpToNewlineAndSkipsCarriageReturn(t *testing.T) {
	f := setupLogWithContent(t, "line one\r\nline two\n")

	line, ok := f.Gets(kfs.Log, 64)
	require.True(t, ok)
	assert.Equal(t, "line one\n", line)

	line, ok = f.Gets(kfs.Log, 64)
	require.True(t, ok)
	assert.Equal(t, "line two\n", line)

	_, ok = f.Gets(kfs.Log, 64)
	assert.False(t, ok)
}

func TestGets__StopsAtMaxLengthMinusOne(t *testing.T) {
	f := setupLogWithContent(t, "abcdefghij")

	line, ok := f.Gets(kfs.Log, 5)
	require.True(t, ok)
	assert.Equal(t, "abcd", line)
}

func TestGets__EmptyFileReturnsFalse(t *testing.T) {
	f := setupLogWithContent(t, "")
	_, ok := f.Gets(kfs.Log, 16)
	assert.False(t, ok)
}
