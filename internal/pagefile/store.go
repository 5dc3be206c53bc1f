package pagefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/vmemtrans/internal/vmm"
)

// headerLen is fixed: 4 bytes magic + 2 bytes version-string length + up to
// 32 bytes of version string (padded with zeros) + 8 bytes page size.
const (
	versionFieldLen = 32
	headerLen       = 4 + 2 + versionFieldLen + 8
)

// FileStore persists pages to a single file on disk, one fixed-size record
// per virtual page index. Reading a virtual page that was never written
// yields an all-zero page, matching spec.md §6's restore semantics for a
// never-evicted page.
type FileStore struct {
	f        *os.File
	pageSize uint64
}

// OpenFileStore opens (creating if absent) a page file at path for pages of
// pageSize words. An existing file's header is validated against
// FormatVersion; a freshly created file is stamped with it.
func OpenFileStore(path string, pageSize uint64) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pagefile: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := writeHeader(f, pageSize); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		storedPageSize, err := readHeader(f)
		if err != nil {
			f.Close()
			return nil, err
		}

		if storedPageSize != pageSize {
			f.Close()
			return nil, fmt.Errorf("pagefile: %s was created with page size %d, not %d", path, storedPageSize, pageSize)
		}
	}

	return &FileStore{f: f, pageSize: pageSize}, nil
}

// Close releases the underlying file handle.
func (s *FileStore) Close() error {
	return s.f.Close()
}

// Store implements physmem.BackingStore.
func (s *FileStore) Store(vpage uint64, words []vmm.Word) error {
	if uint64(len(words)) != s.pageSize {
		return fmt.Errorf("pagefile: store: expected %d words, got %d", s.pageSize, len(words))
	}

	buf := make([]byte, s.pageSize*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(w))
	}

	_, err := s.f.WriteAt(buf, s.recordOffset(vpage))

	return err
}

// Load implements physmem.BackingStore.
func (s *FileStore) Load(vpage uint64) ([]vmm.Word, error) {
	buf := make([]byte, s.pageSize*8)

	_, err := s.f.ReadAt(buf, s.recordOffset(vpage))
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("pagefile: load page %d: %w", vpage, err)
	}
	// A page never written reads back as all zeros, whether because the
	// ReadAt ran past end-of-file (err set, buf left zeroed by make) or
	// because it lands inside an unwritten hole.

	words := make([]vmm.Word, s.pageSize)
	for i := range words {
		words[i] = vmm.Word(binary.LittleEndian.Uint64(buf[i*8:]))
	}

	return words, nil
}

func (s *FileStore) recordOffset(vpage uint64) int64 {
	return int64(headerLen) + int64(vpage*s.pageSize*8)
}

func writeHeader(f *os.File, pageSize uint64) error {
	w := bufio.NewWriter(f)

	if _, err := w.WriteString(magic); err != nil {
		return err
	}

	versionStr := FormatVersion.String()
	if len(versionStr) > versionFieldLen {
		return fmt.Errorf("pagefile: format version string %q exceeds header field", versionStr)
	}

	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(versionStr)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	var versionField [versionFieldLen]byte
	copy(versionField[:], versionStr)

	if _, err := w.Write(versionField[:]); err != nil {
		return err
	}

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], pageSize)

	if _, err := w.Write(sizeBuf[:]); err != nil {
		return err
	}

	return w.Flush()
}

func readHeader(f *os.File) (pageSize uint64, err error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return 0, fmt.Errorf("pagefile: short header: %w", err)
	}

	if string(hdr[0:4]) != magic {
		return 0, fmt.Errorf("pagefile: bad magic %q", hdr[0:4])
	}

	versionLen := binary.LittleEndian.Uint16(hdr[4:6])
	versionStr := string(hdr[6 : 6+versionLen])

	if err := checkVersion(versionStr); err != nil {
		return 0, err
	}

	pageSize = binary.LittleEndian.Uint64(hdr[6+versionFieldLen : 6+versionFieldLen+8])

	return pageSize, nil
}
