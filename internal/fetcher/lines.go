package fetcher

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// lineReader splits text on \n, \r\n and a lone \r. Lines may be of any
// length.
type lineReader struct {
	r       *bufio.Reader
	pending []string
	err     error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next line without its terminator. It reports false at
// the end of input or after a read error; see Err.
func (lr *lineReader) next() (string, bool) {
	for len(lr.pending) == 0 {
		if lr.err != nil {
			return "", false
		}
		chunk, err := lr.r.ReadString('\n')
		if err != nil {
			lr.err = err
			if chunk == "" {
				return "", false
			}
		}
		chunk = strings.TrimSuffix(chunk, "\n")
		chunk = strings.TrimSuffix(chunk, "\r")
		lr.pending = strings.Split(chunk, "\r")
	}
	line := lr.pending[0]
	lr.pending = lr.pending[1:]
	return line, true
}

// Err returns the first read error other than io.EOF.
func (lr *lineReader) Err() error {
	if errors.Is(lr.err, io.EOF) {
		return nil
	}
	return lr.err
}
