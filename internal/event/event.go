// Package event defines progress and diagnostic events emitted while a
// patch set is applied. Sinks are optional; the appliers never block on
// event delivery.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	FilePatched Type = iota + 1
	FileSkipped
	FolderApplied
	MemoryPatched
	MemorySkipped
	HookRewritten
)

var typeNames = [...]string{
	FilePatched:   "FilePatched",
	FileSkipped:   "FileSkipped",
	FolderApplied: "FolderApplied",
	MemoryPatched: "MemoryPatched",
	MemorySkipped: "MemorySkipped",
	HookRewritten: "HookRewritten",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single occurrence during patch application.
type Event struct {
	Type      Type
	Timestamp time.Time
	PatchID   string
	Path      string // disc path (file/folder patches)
	Addr      uint32 // target address (memory patches)
	Size      uint64 // patched byte count
	Reason    string // why a patch was skipped
}

// Sink receives events. A nil Sink is valid and drops everything.
type Sink func(Event)

// Emit sends e to the sink with its timestamp filled in, if a sink is set.
func (s Sink) Emit(e Event) {
	if s == nil {
		return
	}
	e.Timestamp = time.Now()
	s(e)
}
