package digest

import (
	"context"
	"crypto/hmac"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultBufferSize is the read buffer used when Computer.BufferSize is 0.
const DefaultBufferSize = 64 << 10

var bufPool = sync.Pool{New: func() any {
	b := make([]byte, DefaultBufferSize)
	return &b
}}

// Computer hashes files. The zero value is ready to use.
type Computer struct {
	// Limiter throttles reads to its rate in bytes per second (nil = no limit).
	Limiter    *rate.Limiter
	BufferSize int
}

// NewLimiter returns a limiter allowing bytesPerSec bytes per second, or nil
// when bytesPerSec <= 0.
func NewLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := bytesPerSec
	if burst > 1<<30 {
		burst = 1 << 30
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(burst))
}

// Sum returns the lower-case hex digest of the file at path. The file handle
// is released before Sum returns on every path.
func (c *Computer) Sum(path string, alg Algorithm, key []byte) (string, error) {
	if _, err := New(alg, key); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.SumReader(f, alg, key)
}

// SumReader hashes everything read from r.
func (c *Computer) SumReader(r io.Reader, alg Algorithm, key []byte) (string, error) {
	h, err := New(alg, key)
	if err != nil {
		return "", err
	}
	return c.sum(h, r)
}

func (c *Computer) sum(h hash.Hash, r io.Reader) (string, error) {
	if c != nil && c.Limiter != nil {
		r = &throttledReader{r: r, lim: c.Limiter}
	}
	var buf []byte
	if c != nil && c.BufferSize > 0 {
		buf = make([]byte, c.BufferSize)
	} else {
		bp := bufPool.Get().(*[]byte)
		defer bufPool.Put(bp)
		buf = *bp
	}
	// hide (*os.File).WriteTo so the copy goes through buf
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sum hashes the file at path with an unthrottled Computer.
func Sum(path string, alg Algorithm, key []byte) (string, error) {
	var c Computer
	return c.Sum(path, alg, key)
}

func newHMAC(ctor func() hash.Hash, key []byte) hash.Hash {
	return hmac.New(ctor, key)
}

type throttledReader struct {
	r   io.Reader
	lim *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if b := t.lim.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.lim.WaitN(context.Background(), n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
