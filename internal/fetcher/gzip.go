package fetcher

import (
	"bufio"
	"compress/gzip"
	"io"

	"github.com/rotisserie/eris"
)

// MaybeGunzip returns a reader that transparently decompresses r if it starts
// with the gzip magic bytes. Plain input is passed through unchanged.
// Closing the returned reader closes r.
func MaybeGunzip(r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "gzip: peek header")
	}

	if len(magic) < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		return &readCloser{Reader: br, closer: r}, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, eris.Wrap(err, "gzip: open stream")
	}
	return &readCloser{Reader: zr, closer: r, inner: zr}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
	inner  io.Closer
}

func (rc *readCloser) Close() error {
	if rc.inner != nil {
		_ = rc.inner.Close()
	}
	return rc.closer.Close()
}
