package registry

import "time"

// AddSighting records a single observation of callsign, used to build
// the day/hour schedule histogram. weekday is stored 0=Monday..6=Sunday,
// converting from time.Weekday's 0=Sunday convention.
func (s *Store) AddSighting(callsign string, hex string, seenAt time.Time) error {
	weekday := mondayIndexed(seenAt.Weekday())
	_, err := s.db.Exec(`
		INSERT INTO sightings (callsign, seen_at, weekday, hour, hex)
		VALUES (?, ?, ?, ?, ?)`,
		callsign, seenAt.UTC().Format(timeLayout), weekday, seenAt.UTC().Hour(), nullIfEmpty(hex),
	)
	return storeErr(err)
}

func mondayIndexed(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// Schedule is the sighting-frequency histogram for one callsign: counts
// indexed [weekday 0=Monday..6][hour 0..23].
type Schedule struct {
	Callsign string
	Counts   [7][24]int
	Total    int
}

// GetSchedule returns the day/hour sighting histogram for callsign.
func (s *Store) GetSchedule(callsign string) (Schedule, error) {
	sched := Schedule{Callsign: callsign}

	rows, err := s.db.Query(`
		SELECT weekday, hour, COUNT(*) FROM sightings
		WHERE callsign = ?
		GROUP BY weekday, hour`, callsign)
	if err != nil {
		return Schedule{}, storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday, hour, count int
		if err := rows.Scan(&weekday, &hour, &count); err != nil {
			return Schedule{}, storeErr(err)
		}
		if weekday < 0 || weekday > 6 || hour < 0 || hour > 23 {
			continue
		}
		sched.Counts[weekday][hour] = count
		sched.Total += count
	}
	if err := rows.Err(); err != nil {
		return Schedule{}, storeErr(err)
	}
	return sched, nil
}
