package student

import "time"

func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// RecordActivity advances the daily streak for activity at now.
// Activity on the same UTC day is ignored, the next day extends the streak and
// any longer gap restarts it at 1. Reports whether the student was modified.
func (s *Student) RecordActivity(now time.Time) bool {
	now = now.UTC()
	if s.LastActiveAt == nil {
		s.CurrentStreak = 1
	} else {
		gap := int(utcDay(now).Sub(utcDay(*s.LastActiveAt)).Hours() / 24)
		switch {
		case gap <= 0:
			return false
		case gap == 1:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	}
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}
	s.LastActiveAt = &now
	return true
}
