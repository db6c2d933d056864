package detect

import "sync"

// Ledger is the authoritative per-run record of which categories have been
// confirmed. At most one Record per category; the detected count only grows.
// RecordIfNew is a single check-and-set under the lock, so the ledger stays
// correct even if the primary detection path and a recheck resolve at the
// same time.
type Ledger struct {
	mu      sync.Mutex
	records map[Category]Record
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[Category]Record, len(AllCategories))}
}

// RecordIfNew stores rec for its category unless one is already present.
// Returns true when the record was stored (caller proceeds to persist the
// screenshot and report), false when the category was already counted.
func (l *Ledger) RecordIfNew(rec Record) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[rec.Category]; ok {
		return false
	}
	l.records[rec.Category] = rec
	return true
}

// Detected reports whether c has been recorded.
func (l *Ledger) Detected(c Category) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[c]
	return ok
}

// IsComplete is true once all three categories are recorded.
func (l *Ledger) IsComplete() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records) == len(AllCategories)
}

// Count returns how many categories have been recorded so far.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Remaining returns the categories not yet detected, in reporting order.
func (l *Ledger) Remaining() []Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Category
	for _, c := range AllCategories {
		if _, ok := l.records[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// DetectedCategories returns the recorded categories, in reporting order.
func (l *Ledger) DetectedCategories() []Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Category
	for _, c := range AllCategories {
		if _, ok := l.records[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Record returns the stored record for c, if any.
func (l *Ledger) Record(c Category) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[c]
	return rec, ok
}

// Records returns all stored records in reporting order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, 0, len(l.records))
	for _, c := range AllCategories {
		if rec, ok := l.records[c]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// SetScreenshotPath attaches the persisted screenshot reference to an
// existing record. No-op if the category was never recorded.
func (l *Ledger) SetScreenshotPath(c Category, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[c]
	if !ok {
		return
	}
	rec.ScreenshotPath = path
	l.records[c] = rec
}
