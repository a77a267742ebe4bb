package poll

import "time"

// Snapshot is the decoded device state produced by one poll cycle.
// Values holds an int, float64 or string per key; keys that failed to
// read this round are absent, never carried over from an older cycle.
type Snapshot struct {
	At     time.Time
	Values map[string]interface{}
}

// Int returns the integer value for key, if present.
func (s *Snapshot) Int(key string) (int, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.Values[key].(int)
	return v, ok
}

// Float returns the numeric value for key as a float64, if present.
// Plain integer registers are converted.
func (s *Snapshot) Float(key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch v := s.Values[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Label returns the string value for key, if present.
func (s *Snapshot) Label(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Values[key].(string)
	return v, ok
}

// Clone returns a copy whose value map can be mutated independently.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	values := make(map[string]interface{}, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	return &Snapshot{At: s.At, Values: values}
}
