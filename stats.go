package main

// incrementStat atomically increments a statistic by name.
func (s *GoFastServer) incrementStat(stat string) {
	switch stat {
	case "total_ops":
		s.stats.TotalOps.Inc()
	case "get_ops":
		s.stats.GetOps.Inc()
	case "set_ops":
		s.stats.SetOps.Inc()
	case "del_ops":
		s.stats.DelOps.Inc()
	case "incr_ops":
		s.stats.IncrOps.Inc()
	case "connections":
		s.stats.Connections.Inc()
	}
}

// StatsSnapshot is a point-in-time copy of ServerStats, safe to hand to a
// dashboard client without holding a reference into live atomics.
type StatsSnapshot struct {
	TotalOps     uint64
	GetOps       uint64
	SetOps       uint64
	DelOps       uint64
	IncrOps      uint64
	BytesRead    uint64
	BytesWritten uint64
	Connections  uint64
}

// GetStats returns a consistent snapshot of current server statistics.
func (s *GoFastServer) GetStats() StatsSnapshot {
	return StatsSnapshot{
		TotalOps:     s.stats.TotalOps.Load(),
		GetOps:       s.stats.GetOps.Load(),
		SetOps:       s.stats.SetOps.Load(),
		DelOps:       s.stats.DelOps.Load(),
		IncrOps:      s.stats.IncrOps.Load(),
		BytesRead:    s.stats.BytesRead.Load(),
		BytesWritten: s.stats.BytesWritten.Load(),
		Connections:  s.stats.Connections.Load(),
	}
}
