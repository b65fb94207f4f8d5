package trend

// Set is an insertion ordered collection of records keyed by normalized key.
// Iteration order is the order keys were first inserted.
type Set struct {
	keys    []string
	records map[string]*Record
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{records: make(map[string]*Record)}
}

// Put stores a record under its key, replacing any existing record in place.
// Records whose name normalizes to an empty key are rejected.
func (s *Set) Put(r *Record) bool {
	if r.Key == "" {
		r.Key = NormalizeKey(r.Name)
	}
	if r.Key == "" {
		return false
	}
	if _, exists := s.records[r.Key]; !exists {
		s.keys = append(s.keys, r.Key)
	}
	s.records[r.Key] = r
	return true
}

// Add stores a record only if its key is not present yet
func (s *Set) Add(r *Record) bool {
	key := r.Key
	if key == "" {
		key = NormalizeKey(r.Name)
	}
	if _, exists := s.records[key]; exists {
		return false
	}
	return s.Put(r)
}

// Get returns the record for a key
func (s *Set) Get(key string) (*Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Len returns the number of records
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Records returns the records in insertion order
func (s *Set) Records() []*Record {
	if s == nil {
		return nil
	}
	out := make([]*Record, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.records[k])
	}
	return out
}
