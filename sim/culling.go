package sim

// cull evaluates the three death conditions for every alive cell and
// kills those matching any of them: age past the species maximum, a
// stochastic sickness roll, or a position outside the domain. Dead ids
// stay in the store forever and never re-enter geometry builds.
func (s *Simulation) cull() {
	n := int64(s.store.Len())
	for id := int64(0); id < n; id++ {
		if s.store.IsDead(id) {
			continue
		}
		c := s.store.Get(id)
		p := s.table[c.Kind]

		// The conditions are evaluated independently and unioned, so the
		// sickness draw happens for every alive cell regardless of age.
		old := s.now-c.BirthTime > p.MaxAge
		sick := s.rng.Float64() < s.dt*p.SickRate
		outside := !s.inDomain(c.Pos)

		if old || sick || outside {
			// Kill cannot fail here: the id is alive and now >= birth.
			_ = s.store.Kill(id, s.now)
		}
	}
}
