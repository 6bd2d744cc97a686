package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Source is a line-oriented tweet source: one tweet per line, no embedded
// newlines. A Source hands out fresh forward-only cursors, so any number of
// passes can be made over the same data.
type Source interface {
	// Scan returns a fresh cursor positioned before the first line.
	Scan() (Cursor, error)
	// Count returns the number of lines without decoding per-line content.
	Count() (int, error)
}

// Cursor is a forward-only iterator over the lines of a Source, in the
// style of bufio.Scanner.
type Cursor interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Slice is an in-memory Source backed by an ordered list of tweets.
type Slice []string

func (s Slice) Scan() (Cursor, error) {
	return &sliceCursor{items: s, pos: -1}, nil
}

func (s Slice) Count() (int, error) {
	return len(s), nil
}

type sliceCursor struct {
	items []string
	pos   int
}

func (c *sliceCursor) Next() bool {
	if c.pos+1 >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Text() string { return c.items[c.pos] }
func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }

// File is a Source backed by a line-oriented text file. Files ending in
// ".gz" are transparently decompressed.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", f.Path, err)
	}
	if !strings.HasSuffix(f.Path, ".gz") {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to decompress source %s: %w", f.Path, err)
	}
	return &gzipReadCloser{gz: gz, file: file}, nil
}

func (f *File) Scan() (Cursor, error) {
	r, err := f.open()
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	// Tweets are short, but sources in the wild carry the odd oversized line.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &fileCursor{scanner: scanner, closer: r}, nil
}

// Count counts newlines in fixed-size chunks. It never builds per-line
// strings, which keeps the cheap length strategy cheap even for large files.
func (f *File) Count() (int, error) {
	r, err := f.open()
	if err != nil {
		return 0, err
	}
	defer r.Close()

	buf := make([]byte, 32*1024)
	count := 0
	lastByte := byte('\n')
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				count++
			}
		}
		if n > 0 {
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count lines in %s: %w", f.Path, err)
		}
	}
	// A final line without a trailing newline still counts.
	if lastByte != '\n' {
		count++
	}
	return count, nil
}

type fileCursor struct {
	scanner *bufio.Scanner
	closer  io.Closer
	closed  bool
}

func (c *fileCursor) Next() bool { return c.scanner.Scan() }
func (c *fileCursor) Text() string {
	return c.scanner.Text()
}

func (c *fileCursor) Err() error { return c.scanner.Err() }

func (c *fileCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.closer.Close()
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
