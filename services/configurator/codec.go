package configurator

import (
	"encoding/json"

	"mountify/models"
)

// The session store holds one JSON text value per session. JSON has no set
// type, so the step-set fields are written with an explicit marker envelope
// (see models.StepSet) and reconstructed as sets on the way back; everything
// else round-trips as plain JSON. For any valid aggregate A,
// Decode(Encode(A)) is deeply equal to A, including set membership and
// ordering.

// Encode serializes the aggregate for storage as a single string value.
func Encode(a *Aggregate) (string, error) {
	data, err := json.Marshal(a.Config)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode reconstructs an aggregate from its stored form. Malformed input
// yields nil, never a panic or an error: the caller treats nil as "no prior
// session". Structurally valid input with an out-of-range cursor or an
// itemCount that disagrees with the item list is repaired rather than
// rejected.
func Decode(raw string) *Aggregate {
	var cfg models.BookingConfiguration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil
	}
	a := &Aggregate{Config: cfg}
	if len(a.Config.Items) > 0 {
		// The item list is authoritative; a stored count that disagrees
		// with it re-syncs here.
		a.Config.ItemCount = len(a.Config.Items)
	} else if a.Config.ItemCount < 1 {
		a.Config.ItemCount = 1
	}
	a.clampCurrentIndex()
	return a
}
