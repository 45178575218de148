package memcurve

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the serializable form of one learner's memory state,
// written to and restored from the snapshot store between sessions.
type Snapshot struct {
	LearnerID string       `json:"learner_id"`
	SavedAt   time.Time    `json:"saved_at"`
	Items     []*Item      `json:"items"`
	Params    *CurveParams `json:"params,omitempty"`
}

// ExportLearner captures a learner's full memory state.
func (t *Tracker) ExportLearner(learnerID string) *Snapshot {
	return &Snapshot{
		LearnerID: learnerID,
		SavedAt:   t.now(),
		Items:     t.LearnerItems(learnerID),
		Params:    t.params[learnerID],
	}
}

// ImportLearner restores a learner's memory state, replacing whatever
// the tracker currently holds for that learner.
func (t *Tracker) ImportLearner(s *Snapshot) {
	if s == nil {
		return
	}
	m := make(map[string]*Item, len(s.Items))
	for _, it := range s.Items {
		m[it.ContentID] = it
	}
	t.items[s.LearnerID] = m
	if s.Params != nil {
		t.params[s.LearnerID] = s.Params
	} else {
		delete(t.params, s.LearnerID)
	}
}

// MarshalSnapshot encodes a snapshot for storage.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal memory snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a stored snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal memory snapshot: %w", err)
	}
	return &s, nil
}
