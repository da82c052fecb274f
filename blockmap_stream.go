// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"encoding/hex"

	"github.com/opencontainers/go-digest"
)

// BlockMapStream wraps a plaintext Stream and validates every block's
// SHA-256 hash against the block map before releasing its bytes to the
// caller: verification happens prior to consumption, never after. Once
// any block fails verification the stream is permanently poisoned and
// every subsequent Read and Seek returns ErrBlockHashMismatch, even for
// blocks that would otherwise have verified.
type BlockMapStream struct {
	inner   Stream
	blocks  []Block
	offsets []int64
	size    int64

	pos int64

	bufIndex  int
	buf       []byte
	bufLoaded bool

	// validated remembers which blocks already verified during this
	// stream's lifetime, so a deterministic re-read through this same
	// stream (e.g. after seeking back) does not re-hash data it
	// already confirmed.
	validated []bool

	poisoned  bool
	poisonErr error
}

var _ Stream = (*BlockMapStream)(nil)

// NewBlockMapStream builds a BlockMapStream over inner using blocks as
// the expected layout and hashes. inner must expose at least
// offsets[len(blocks)] bytes and support Seek.
func NewBlockMapStream(inner Stream, blocks []Block) *BlockMapStream {
	offsets := make([]int64, len(blocks)+1)
	for i, b := range blocks {
		offsets[i+1] = offsets[i] + int64(b.PlaintextSize)
	}

	return &BlockMapStream{
		inner:     inner,
		blocks:    blocks,
		offsets:   offsets,
		size:      offsets[len(blocks)],
		validated: make([]bool, len(blocks)),
		bufIndex:  -1,
	}
}

// Size implements Stream.
func (s *BlockMapStream) Size() (int64, error) {
	return s.size, nil
}

// Close implements Stream.
func (s *BlockMapStream) Close() error {
	return s.inner.Close()
}

// Seek implements Stream.
func (s *BlockMapStream) Seek(offset int64, origin SeekOrigin) (int64, error) {
	if s.poisoned {
		return 0, s.poisonErr
	}

	var target int64
	switch origin {
	case SeekCurrent:
		target = s.pos + offset
	case SeekEnd:
		target = s.size + offset
	default:
		target = offset
	}

	if target < 0 || target > s.size {
		return 0, newErr(KindInvalidParameter, "seek out of range")
	}

	s.pos = target
	return s.pos, nil
}

// Read implements Stream. A read that spans a block boundary loops
// across as many blocks as needed to fill dst; every block the read
// touches is hashed in full, in order, before any byte is copied out.
// A short read is only ever returned once pos reaches the end of the
// stream.
func (s *BlockMapStream) Read(dst []byte) (int, error) {
	if s.poisoned {
		return 0, s.poisonErr
	}

	if len(dst) > 0 && s.pos < s.size {
		end := s.pos + int64(len(dst))
		if end > s.size {
			end = s.size
		}
		last := s.blockIndexForOffset(end - 1)
		for idx := s.blockIndexForOffset(s.pos); idx <= last; idx++ {
			if !s.validated[idx] {
				if err := s.loadBlock(idx); err != nil {
					return 0, err
				}
			}
		}
	}

	read := 0
	for read < len(dst) {
		if s.pos >= s.size {
			break
		}

		idx := s.blockIndexForOffset(s.pos)
		if idx != s.bufIndex || !s.bufLoaded {
			if err := s.loadBlock(idx); err != nil {
				return read, err
			}
		}

		blockStart := s.offsets[idx]
		within := int(s.pos - blockStart)
		n := copy(dst[read:], s.buf[within:])
		s.pos += int64(n)
		read += n
	}

	return read, nil
}

// blockIndexForOffset finds the block containing pos via binary search
// over the cumulative offsets table.
func (s *BlockMapStream) blockIndexForOffset(pos int64) int {
	lo, hi := 0, len(s.blocks)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// loadBlock reads block idx in full from inner, verifies its hash
// unless already validated, and poisons the stream permanently on
// mismatch.
func (s *BlockMapStream) loadBlock(idx int) error {
	block := s.blocks[idx]
	start := s.offsets[idx]

	if _, err := s.inner.Seek(start, SeekStart); err != nil {
		return err
	}

	buf := make([]byte, block.PlaintextSize)
	if err := fillBuffer(s.inner, buf); err != nil {
		return newErr(KindFileRead, "read block %d: %v", idx, err)
	}

	if !s.validated[idx] {
		expected := digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(block.Hash[:]))
		verifier := expected.Verifier()
		if _, err := verifier.Write(buf); err != nil {
			return newErr(KindUnexpected, "hash block %d: %v", idx, err)
		}
		if !verifier.Verified() {
			s.poisoned = true
			s.poisonErr = newErr(KindBlockHashMismatch, "block %d failed hash verification", idx)
			return s.poisonErr
		}
		s.validated[idx] = true
	}

	s.buf = buf
	s.bufIndex = idx
	s.bufLoaded = true
	return nil
}

// fillBuffer reads exactly len(buf) bytes from s, tolerating short
// reads the way Stream's contract permits, and failing on a stall of
// repeated zero-byte, no-error reads rather than looping forever.
func fillBuffer(s Stream, buf []byte) error {
	total := 0
	stall := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			stall++
			if stall > 64 {
				return newErr(KindUnexpected, "stream made no progress before reaching requested length")
			}
			continue
		}
		stall = 0
		total += n
	}
	return nil
}
