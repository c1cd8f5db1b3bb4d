package frameloop

// Store is an ordered, bounded sequence of frame handles, oldest first.
// Insertion appends, eviction removes from the oldest end, and every
// handle in the store stays valid until it is evicted or the store is
// cleared. Storage is a fixed ring so steady-state capture allocates
// nothing.
//
// Store is not safe for concurrent use; the Engine serializes access
// behind its own mutex so index and size are always read consistently.
type Store struct {
	frames []Frame
	head   int // ring index of the oldest frame
	count  int
}

// NewStore creates a store holding at most capacity frames. Capacity is
// floored to one.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{frames: make([]Frame, capacity)}
}

// Len returns the number of frames currently held.
func (s *Store) Len() int { return s.count }

// Capacity returns the maximum number of frames the store will hold.
func (s *Store) Capacity() int { return len(s.frames) }

// Push appends a frame as the newest entry. If the store is full the
// oldest frame is evicted and closed first. It returns the number of
// frames evicted (zero or one) so the caller can adjust any playback
// index that referenced the evicted slot.
func (s *Store) Push(f Frame) int {
	if f == nil {
		return 0
	}
	evicted := 0
	if s.count == len(s.frames) {
		s.evictOldest()
		evicted++
	}
	s.frames[(s.head+s.count)%len(s.frames)] = f
	s.count++
	return evicted
}

// At returns the frame at the given playback index, oldest first. An
// index past the end is clamped to the newest frame, since the index
// can transiently exceed the size right after a shrink. ok is false
// only when the store is empty.
func (s *Store) At(index int) (frame Frame, ok bool) {
	if s.count == 0 {
		return nil, false
	}
	if index < 0 {
		index = 0
	}
	if index >= s.count {
		index = s.count - 1
	}
	return s.frames[(s.head+index)%len(s.frames)], true
}

// SetCapacity resizes the store. Shrinking below the current size
// evicts and closes the excess oldest frames immediately. It returns
// the number of frames evicted.
func (s *Store) SetCapacity(capacity int) int {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == len(s.frames) {
		return 0
	}
	evicted := 0
	for s.count > capacity {
		s.evictOldest()
		evicted++
	}
	frames := make([]Frame, capacity)
	for i := 0; i < s.count; i++ {
		frames[i] = s.frames[(s.head+i)%len(s.frames)]
	}
	s.frames = frames
	s.head = 0
	return evicted
}

// Clear closes every held frame and resets the store to empty.
func (s *Store) Clear() {
	for i := 0; i < s.count; i++ {
		idx := (s.head + i) % len(s.frames)
		if s.frames[idx] != nil {
			s.frames[idx].Close()
			s.frames[idx] = nil
		}
	}
	s.head = 0
	s.count = 0
}

func (s *Store) evictOldest() {
	if s.count == 0 {
		return
	}
	if s.frames[s.head] != nil {
		s.frames[s.head].Close()
		s.frames[s.head] = nil
	}
	s.head = (s.head + 1) % len(s.frames)
	s.count--
}
