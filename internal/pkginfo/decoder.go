package pkginfo

import (
	"errors"
	"io"
)

const decodeChunkSize = 4096

// Decoder parses PKGINFO data read from a stream
type Decoder struct {
	r   io.Reader
	buf []byte
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads from the stream until the record is settled.
//
// Reading stops early once parsing halts at an unrecognized line, so the
// Remainder only holds what had been buffered by then. At end of stream
// an unterminated final line is treated as complete.
func (d *Decoder) Decode() (*Result, error) {
	chunk := make([]byte, decodeChunkSize)
	for {
		n, readErr := d.r.Read(chunk)
		d.buf = append(d.buf, chunk[:n]...)

		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}
		if errors.Is(readErr, io.EOF) {
			return d.finish()
		}
		if n == 0 {
			continue
		}

		res, err := Parse(d.buf)
		switch {
		case IsIncomplete(err):
			continue
		case err != nil:
			return nil, err
		case !res.Complete():
			return res, nil
		}
	}
}

func (d *Decoder) finish() (*Result, error) {
	res, err := Parse(d.buf)
	if !IsIncomplete(err) {
		return res, err
	}

	closed := make([]byte, len(d.buf)+1)
	copy(closed, d.buf)
	closed[len(d.buf)] = '\n'

	res, err = Parse(closed)
	if err != nil {
		return nil, err
	}
	if !res.Complete() {
		res.Remainder = res.Remainder[:len(res.Remainder)-1]
	}
	return res, nil
}
