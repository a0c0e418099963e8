package models

import "encoding/json"

// StepID identifies one stage of the configuration wizard (e.g. "mount-type").
type StepID string

// StepSet is an ordered collection of unique StepIDs. Insertion order is
// preserved so that a persisted session round-trips byte-for-byte.
//
// On the wire a StepSet is tagged as {"__set": [...]} because the session
// store holds plain JSON text, which has no native set type; without the
// marker a decoded session could not tell a set from an ordinary array.
type StepSet struct {
	elems []StepID
}

type stepSetWire struct {
	Set []StepID `json:"__set"`
}

// NewStepSet builds a set from the given steps, dropping duplicates.
func NewStepSet(steps ...StepID) StepSet {
	var s StepSet
	for _, st := range steps {
		s.Add(st)
	}
	return s
}

// Add inserts step if not already present.
func (s *StepSet) Add(step StepID) {
	if s.Has(step) {
		return
	}
	s.elems = append(s.elems, step)
}

// Has reports whether step is in the set.
func (s *StepSet) Has(step StepID) bool {
	for _, e := range s.elems {
		if e == step {
			return true
		}
	}
	return false
}

// Len returns the number of steps in the set.
func (s *StepSet) Len() int {
	return len(s.elems)
}

// Values returns the steps in insertion order. The returned slice is a copy.
func (s *StepSet) Values() []StepID {
	out := make([]StepID, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s StepSet) MarshalJSON() ([]byte, error) {
	elems := s.elems
	if elems == nil {
		elems = []StepID{}
	}
	return json.Marshal(stepSetWire{Set: elems})
}

func (s *StepSet) UnmarshalJSON(data []byte) error {
	var wire stepSetWire
	if err := json.Unmarshal(data, &wire); err == nil && wire.Set != nil {
		*s = NewStepSet(wire.Set...)
		return nil
	}
	// Sessions persisted before the set marker existed hold a bare array.
	var plain []StepID
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	*s = NewStepSet(plain...)
	return nil
}
