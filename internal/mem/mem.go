// Package mem applies byte-level patches to a live addressable memory
// image: direct writes with an optional precondition, strided pattern
// searches, and instruction-hook rewrites. Reads and writes of unmapped
// addresses fail per byte and are tolerated, mirroring patching against
// real hardware-adjacent memory.
package mem

import "log/slog"

// PowerPC encodings the hook rewrite works in terms of: the unconditional
// return (blr) this patch kind scans for, the unconditional branch opcode
// it writes, and the 26-bit field its displacement is masked to.
const (
	blrInstruction   = 0x4e800020
	branchOpcode     = 0x48000000
	displacementMask = 0x03fffffc
)

// Image is a live byte-addressable memory image. Both operations fail (not
// panic) on unmapped addresses.
type Image interface {
	ReadByte(addr uint32) (byte, bool)
	WriteByte(value byte, addr uint32) bool
}

// Hooks is the registry of higher-level intercepts over the image. Any
// write must invalidate intercepts over the touched range, or stale hooks
// would keep firing over rewritten code.
type Hooks interface {
	// UnpatchRange removes all intercepts overlapping [start, end) and
	// returns how many were removed.
	UnpatchRange(start, end uint32) int
}

// Engine applies memory patches to one image.
type Engine struct {
	Image Image
	Hooks Hooks
	Log   *slog.Logger
}

// NewEngine returns an Engine logging through log, or slog.Default if nil.
func NewEngine(image Image, hooks Hooks, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Image: image, Hooks: hooks, Log: log}
}

// matchesAt reports whether the image bytes at addr equal want. Any
// unreadable byte is a mismatch.
func (e *Engine) matchesAt(addr uint32, want []byte) bool {
	for i, b := range want {
		got, ok := e.Image.ReadByte(addr + uint32(i))
		if !ok || got != b {
			return false
		}
	}
	return true
}

// Apply writes value at addr. If original is non-empty the bytes at addr
// must match it first; on mismatch the whole patch is skipped with no
// partial write. Intercepts over the written range are invalidated.
// Returns whether the write happened and the number of intercepts removed,
// the latter purely for diagnostics.
func (e *Engine) Apply(addr uint32, value, original []byte) (bool, int) {
	if len(value) == 0 {
		return false, 0
	}
	if len(original) > 0 && !e.matchesAt(addr, original) {
		return false, 0
	}

	for i, b := range value {
		e.Image.WriteByte(b, addr+uint32(i))
	}

	removed := e.Hooks.UnpatchRange(addr, addr+uint32(len(value)))
	if removed != 0 {
		e.Log.Warn("memory patch overlaps active hooks",
			"hooks", removed, "addr", addr, "size", len(value))
	}
	return true, removed
}

// Search scans [start, start+length) in strides of stride for the first
// address whose bytes match original, and applies value there without
// re-checking the original bytes. stride must be positive; finding no match
// is not an error. Returns whether a match was patched and the number of
// intercepts the write removed.
func (e *Engine) Search(start, length, stride uint32, original, value []byte) (bool, int) {
	if len(original) == 0 || stride == 0 || length < stride {
		return false, 0
	}
	for i := uint32(0); i < length-(stride-1); i += stride {
		addr := start + i
		if e.matchesAt(addr, original) {
			_, removed := e.Apply(addr, value, nil)
			return true, removed
		}
	}
	return false, 0
}

// Ocarina scans [start, start+length) in 4-byte steps for the first
// occurrence of pattern, then keeps scanning for the next return
// instruction and overwrites it with a relative branch to target. Finding
// neither the pattern nor a return is not an error, but a pattern with no
// return before the range ends is reported: it usually means a malformed
// patch document. Returns whether a return instruction was rewritten and
// the number of intercepts the overwrite removed.
func (e *Engine) Ocarina(start, length uint32, pattern []byte, target uint32) (bool, int) {
	if len(pattern) == 0 {
		return false, 0
	}

	for i := uint32(0); i < length; i += 4 {
		addr := start + i
		if !e.matchesAt(addr, pattern) {
			continue
		}

		for ; i < length; i += 4 {
			blrAddr := start + i
			word, ok := e.readWord(blrAddr)
			if !ok || word != blrInstruction {
				continue
			}

			jump := ((target - blrAddr) & displacementMask) | branchOpcode
			e.writeWord(jump, blrAddr)
			removed := e.Hooks.UnpatchRange(blrAddr, blrAddr+4)
			if removed != 0 {
				e.Log.Warn("hook patch overlaps active hooks",
					"hooks", removed, "addr", blrAddr)
			}
			return true, removed
		}

		e.Log.Debug("hook pattern matched but no return instruction followed",
			"pattern_addr", addr)
		return false, 0
	}
	return false, 0
}

// readWord assembles a big-endian 32-bit word from four byte reads.
func (e *Engine) readWord(addr uint32) (uint32, bool) {
	var word uint32
	for i := uint32(0); i < 4; i++ {
		b, ok := e.Image.ReadByte(addr + i)
		if !ok {
			return 0, false
		}
		word = word<<8 | uint32(b)
	}
	return word, true
}

// writeWord stores a big-endian 32-bit word byte by byte.
func (e *Engine) writeWord(word, addr uint32) {
	for i := uint32(0); i < 4; i++ {
		e.Image.WriteByte(byte(word>>(24-8*i)), addr+i)
	}
}
