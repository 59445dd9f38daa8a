package event

// Log is the append-only ordered record of everything that happened during
// a run. Entries are never rewritten or removed; it is the sole source of
// historical truth for the query engine.
type Log struct {
	entries []Entry
}

// Append adds entries to the end of the log.
func (l *Log) Append(entries ...Entry) {
	l.entries = append(l.entries, entries...)
}

// Entries returns a copy of all recorded entries in order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Since returns the entries whose tick is >= startTick, in order.
func (l *Log) Since(startTick int) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Tick >= startTick {
			out = append(out, e)
		}
	}
	return out
}

// CountByKind tallies entries per kind.
func CountByKind(entries []Entry) map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range entries {
		counts[e.Kind]++
	}
	return counts
}
