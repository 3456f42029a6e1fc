package analytics

import (
	"sort"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// Streak counts consecutive calendar days with at least one session.
type Streak struct {
	Current int `json:"current" yaml:"current"`
	Best    int `json:"best" yaml:"best"`
}

// GlobalStreak computes the streak over all sessions, in now's location.
func GlobalStreak(sessions []model.Session, now time.Time) Streak {
	loc := now.Location()
	days := make(map[time.Time]struct{})
	for _, s := range sessions {
		days[dayKey(s.StartTime, loc)] = struct{}{}
	}
	return streakOf(days, dayKey(now, loc))
}

// TaskStreaks computes a streak per task id.
func TaskStreaks(sessions []model.Session, now time.Time) map[string]Streak {
	loc := now.Location()
	byTask := make(map[string]map[time.Time]struct{})
	for _, s := range sessions {
		days, ok := byTask[s.TaskID]
		if !ok {
			days = make(map[time.Time]struct{})
			byTask[s.TaskID] = days
		}
		days[dayKey(s.StartTime, loc)] = struct{}{}
	}
	today := dayKey(now, loc)
	out := make(map[string]Streak, len(byTask))
	for id, days := range byTask {
		out[id] = streakOf(days, today)
	}
	return out
}

func streakOf(days map[time.Time]struct{}, today time.Time) Streak {
	if len(days) == 0 {
		return Streak{}
	}
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == day {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	// A streak is still alive if the last session was yesterday.
	cursor := today
	if _, ok := days[cursor]; !ok {
		cursor = cursor.Add(-day)
	}
	current := 0
	for {
		if _, ok := days[cursor]; !ok {
			break
		}
		current++
		cursor = cursor.Add(-day)
	}
	return Streak{Current: current, Best: best}
}
