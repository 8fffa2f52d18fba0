package environ

import "strconv"

// Interner deduplicates symbol text into a process-lifetime table so that
// repeated lookups of the same name compare against the same backing
// string header instead of re-hashing a fresh one every time. It is not
// goroutine-safe, matching the single-threaded discipline of §5.
type Interner struct {
	table map[string]string
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]string)}
}

// Intern returns the canonical backing string for s, registering it on
// first sight.
func (in *Interner) Intern(s string) string {
	if canon, ok := in.table[s]; ok {
		return canon
	}
	in.table[s] = s
	return s
}

// Gensym returns a fresh, never-before-interned symbol name built from a
// monotonic counter; the caller supplies the counter (owned by
// Environment.State.GensymCount) so the sequence survives across calls.
func (in *Interner) Gensym(n uint32) string {
	s := "gensym-" + strconv.FormatUint(uint64(n), 10)
	return in.Intern(s)
}
