package coach

import "github.com/google/uuid"

// Record holds one completed epoch's metrics.
type Record struct {
	Epoch   int // 1-based
	Metrics map[string]float64
}

// History is the ordered, append-only log of per-epoch records for a
// training session. The owning Classifier is the only writer; callbacks
// receive it for reading and must not mutate records.
type History struct {
	runID   string
	records []Record
}

func newHistory() *History {
	return &History{runID: uuid.NewString()}
}

// RunID identifies the training session. A fresh ID is assigned every
// time the owning Classifier re-initializes.
func (h *History) RunID() string { return h.runID }

func (h *History) reset() {
	h.runID = uuid.NewString()
	h.records = h.records[:0]
}

// append records one completed epoch. Called exactly once per epoch by
// the training loop, in epoch order. The metrics map is copied.
func (h *History) append(metrics map[string]float64) {
	copied := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		copied[k] = v
	}
	h.records = append(h.records, Record{
		Epoch:   len(h.records) + 1,
		Metrics: copied,
	})
}

// Len returns the number of completed epochs recorded so far.
func (h *History) Len() int {
	return len(h.records)
}

// At returns the record for a 1-based epoch number.
func (h *History) At(epoch int) (Record, bool) {
	if epoch < 1 || epoch > len(h.records) {
		return Record{}, false
	}
	return h.records[epoch-1], true
}

// Latest returns the most recent record.
func (h *History) Latest() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// Column collects one metric across all epochs, in epoch order. Epochs
// that did not record the metric are skipped.
func (h *History) Column(name string) []float64 {
	out := make([]float64, 0, len(h.records))
	for _, rec := range h.records {
		if v, ok := rec.Metrics[name]; ok {
			out = append(out, v)
		}
	}
	return out
}
