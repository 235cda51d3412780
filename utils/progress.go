package utils

import (
	"errors"
	"io"
)

// ProgressReader reports bytes read to a callback. It forwards Seek when
// the wrapped reader supports it so signed uploads can rewind the body.
type ProgressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress ProgressFunc
}

func NewProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, onProgress: onProgress}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.read, p.total)
		}
	}
	return n, err
}

func (p *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("underlying reader is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

// Percent converts a progress pair to 0–100; unknown totals report 0.
func Percent(written, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(written * 100 / total)
	if pct > 100 {
		return 100
	}
	return pct
}
