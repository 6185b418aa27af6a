package scheduler

const (
	processedLimit = 1000
	processedKeep  = 500
)

// reminderKey identifies one firing of a reminder: the row id plus the
// occurrence time, so a rolled-forward successor is tracked separately.
type reminderKey struct {
	id       int64
	remindAt int64 // unix seconds
}

// warnKey identifies a warned member within a chat.
type warnKey struct {
	chatID int64
	userID int64
}

// processedSet is a bounded insertion-ordered set of fired reminder keys.
// It lives for the process lifetime only; durable idempotence comes from the
// is_active flag, not from this cache. The engine touches it from the tick
// goroutine only, so it needs no locking.
type processedSet struct {
	keys  map[reminderKey]struct{}
	order []reminderKey
	limit int
	keep  int
}

func newProcessedSet(limit, keep int) *processedSet {
	return &processedSet{
		keys:  make(map[reminderKey]struct{}),
		limit: limit,
		keep:  keep,
	}
}

func (s *processedSet) Contains(k reminderKey) bool {
	_, ok := s.keys[k]
	return ok
}

// Add records a key. Once the set grows past its limit it is trimmed to the
// most recent keep entries, accepting a small re-notification risk for
// pathologically old keys.
func (s *processedSet) Add(k reminderKey) {
	if _, ok := s.keys[k]; ok {
		return
	}
	s.keys[k] = struct{}{}
	s.order = append(s.order, k)

	if len(s.order) <= s.limit {
		return
	}
	for _, old := range s.order[:len(s.order)-s.keep] {
		delete(s.keys, old)
	}
	s.order = append(s.order[:0], s.order[len(s.order)-s.keep:]...)
}

func (s *processedSet) Len() int { return len(s.order) }
