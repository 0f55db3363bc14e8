package core

// source.go reads import files from disk or any io.Reader.
//
// Spreadsheet exports often carry a UTF-8 BOM and the odd invalid byte. Both
// are cleaned up while streaming so the tokenizer only ever sees valid text
// and the first header is not polluted by the BOM.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the largest import file accepted (10MB).
var MaxFileSize int64 = 10 * 1024 * 1024

// ErrFileTooLarge is returned when an import file exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// ReadImportFile reads the file at path as import text.
func ReadImportFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	return DecodeImportFile(f)
}

// DecodeImportFile reads r to the end, skipping a leading BOM and replacing
// invalid UTF-8 bytes with '?'. Inputs over MaxFileSize fail with
// ErrFileTooLarge.
func DecodeImportFile(r io.Reader) (string, error) {
	limited := io.LimitReader(r, MaxFileSize+1)
	src := newUTF8Sanitizer(newBOMSkippingReader(limited))

	var b strings.Builder
	n, err := io.Copy(&b, src)
	if err != nil {
		return "", fmt.Errorf("read import file: %w", err)
	}
	if n > MaxFileSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, MaxFileSize)
	}
	return b.String(), nil
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly.
// Replacing with a single byte keeps the output no longer than the input.
type utf8Sanitizer struct {
	reader io.Reader

	// Tail of the previous read that may start a multi-byte sequence.
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of bytes ready.
// Unless atEOF, an incomplete trailing sequence is held back for the next read.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// bomSkippingReader drops a leading UTF-8 BOM (EF BB BF).
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	head    []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if !(n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF) {
			r.head = append(r.head, buf[:n]...)
		}
	}

	if len(r.head) > 0 {
		n := copy(p, r.head)
		r.head = r.head[n:]
		return n, nil
	}
	return r.reader.Read(p)
}
