package buffers

// ReadbackState is the async readback state machine stats.Reducer and
// the host API drive stats buffers through (§4.6): a dispatch writes
// into a staging slot, the slot is "mapped" for host access, the host
// reads it, and the slot stays marked read until the next publish into
// it requests it again. This package defines the slots; stats.Reducer
// holds an instance and owns the transitions' meaning.
type ReadbackState int

const (
	ReadbackIdle ReadbackState = iota
	ReadbackRequested
	ReadbackMapped
	ReadbackRead
)

func (s ReadbackState) String() string {
	switch s {
	case ReadbackIdle:
		return "idle"
	case ReadbackRequested:
		return "requested"
	case ReadbackMapped:
		return "mapped"
	case ReadbackRead:
		return "read"
	default:
		return "unknown"
	}
}

// StatsSlots is the double-buffered staging area backing the stats
// readback pipeline: one slot can be mapped for host reads while the
// other accumulates the next tick's reduction (§4.6).
type StatsSlots struct {
	Bytes [2][]byte
	State [2]ReadbackState
	write int // index currently open for writing by stats_reduction
}

// NewStatsSlots allocates two staging slots of the given byte size.
func NewStatsSlots(slotSize int) *StatsSlots {
	return &StatsSlots{
		Bytes: [2][]byte{make([]byte, slotSize), make([]byte, slotSize)},
	}
}

// WriteSlot returns the slot index the next stats_reduction dispatch
// should write into.
func (s *StatsSlots) WriteSlot() int {
	return s.write
}

// PublishAndSwap marks the just-written slot Requested and swaps the
// write cursor to the other slot, so the next tick's reduction doesn't
// clobber data the host hasn't read yet.
func (s *StatsSlots) PublishAndSwap() {
	s.State[s.write] = ReadbackRequested
	s.write = 1 - s.write
}

// TryMap advances any Requested slot to Mapped and returns its index,
// or -1 if no slot is ready. This models the GPU buffer-mapping step as
// a synchronous no-op, since there's no real device to await.
func (s *StatsSlots) TryMap() int {
	for i, st := range s.State {
		if st == ReadbackRequested {
			s.State[i] = ReadbackMapped
			return i
		}
	}
	return -1
}

// Release marks a mapped slot Read, returning it to the pool so the
// writer can reuse it once the writer cursor cycles back around.
func (s *StatsSlots) Release(slot int) {
	s.State[slot] = ReadbackRead
}
