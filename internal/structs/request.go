package structs

import "time"

const secondsPerDay = 86400

// FilterCriteria is derived once from the command line and never changes
// during a run.
type FilterCriteria struct {
	Action    string
	Moderator string

	// MaxAgeDays of zero disables the cutoff.
	MaxAgeDays float64
	Cutoff     float64
}

func NewFilterCriteria(action, moderator string, days float64, now time.Time) FilterCriteria {
	criteria := FilterCriteria{
		Action:     action,
		Moderator:  moderator,
		MaxAgeDays: days,
	}
	if days != 0 {
		criteria.Cutoff = float64(now.UnixNano())/float64(time.Second) - days*secondsPerDay
	}
	return criteria
}

// HasCutoff reports whether entries older than Cutoff end the iteration.
func (c FilterCriteria) HasCutoff() bool {
	return c.MaxAgeDays != 0
}
