package segment

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

const digestChunk = 32 * 1024

// Digest computes the BLAKE3 hash of the first size bytes of the composed
// content, returning the hex-encoded digest. Content is read in 32 KiB
// chunks so large lazily-backed files are never held in memory at once.
func Digest(idx *Index, size uint64) (string, error) {
	h := blake3.New()
	for off := uint64(0); off < size; {
		n := uint64(digestChunk)
		if size-off < n {
			n = size - off
		}
		chunk, err := idx.Read(off, n)
		if err != nil {
			return "", fmt.Errorf("digest at %#x: %w", off, err)
		}
		h.Write(chunk)
		off += n
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
