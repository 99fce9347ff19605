package mem

// RAMImage is an Image over a flat byte slice mapped at Base. Used for
// patching RAM dump files and in tests; an emulator embedding the engine
// supplies its own Image instead.
type RAMImage struct {
	Base uint32
	Data []byte
}

// ReadByte implements Image.
func (r *RAMImage) ReadByte(addr uint32) (byte, bool) {
	if addr < r.Base || uint64(addr-r.Base) >= uint64(len(r.Data)) {
		return 0, false
	}
	return r.Data[addr-r.Base], true
}

// WriteByte implements Image.
func (r *RAMImage) WriteByte(value byte, addr uint32) bool {
	if addr < r.Base || uint64(addr-r.Base) >= uint64(len(r.Data)) {
		return false
	}
	r.Data[addr-r.Base] = value
	return true
}

// Registry is a minimal in-process hook registry. Embedders with their own
// intercept machinery implement Hooks directly; this one just tracks
// registered ranges so overlap invalidation is observable.
type Registry struct {
	hooks []hookRange
}

type hookRange struct {
	start, end uint32
}

// Register records an intercept over [start, end).
func (r *Registry) Register(start, end uint32) {
	r.hooks = append(r.hooks, hookRange{start: start, end: end})
}

// Active returns the number of registered intercepts.
func (r *Registry) Active() int {
	return len(r.hooks)
}

// UnpatchRange implements Hooks.
func (r *Registry) UnpatchRange(start, end uint32) int {
	removed := 0
	kept := r.hooks[:0]
	for _, h := range r.hooks {
		if h.start < end && start < h.end {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	r.hooks = kept
	return removed
}

// NopHooks is a Hooks that tracks nothing; for callers with no intercept
// layer.
type NopHooks struct{}

// UnpatchRange implements Hooks.
func (NopHooks) UnpatchRange(start, end uint32) int { return 0 }
