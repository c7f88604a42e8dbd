package fetcher

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// decode returns a reader yielding valid UTF-8 text for r.
// gzip and xz input is decompressed based on its magic bytes, a leading
// byte order mark is dropped and invalid sequences become U+FFFD.
func decode(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek header: %w", err)
	}

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		src = gzr
	case bytes.HasPrefix(header, xzMagic):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		src = xzr
	}
	return transform.NewReader(src, unicode.UTF8BOM.NewDecoder()), nil
}
