package memstore

import "time"

// sweepInterval bounds how often a store scans its map for expired entries.
// Sweeps piggyback on writes, so an idle store keeps its last entries until
// the next write.
const sweepInterval = time.Minute

type sweeper struct {
	last time.Time
}

// due reports whether a sweep should run now and marks it as run.
func (s *sweeper) due(now time.Time) bool {
	if now.Sub(s.last) < sweepInterval {
		return false
	}
	s.last = now
	return true
}
