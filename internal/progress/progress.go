// Package progress computes levels, XP bookkeeping and badge unlocks.
// Everything here is a pure function over stats snapshots; callers own
// sequencing and persistence.
package progress

import "time"

// DefaultThresholds is the cumulative XP required to reach each level.
// Thresholds[0] is a zero sentinel so level 1 starts at 0 XP.
var DefaultThresholds = []int{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500, 5500}

// DailyProgress is one day's earned XP, keyed by calendar date.
type DailyProgress struct {
	Date     string `json:"date"` // YYYY-MM-DD
	XPEarned int    `json:"xp_earned"`
}

// UserStats is the global progression singleton for the session.
// Level and NextLevelXP are derived from CurrentXP; only ApplyXPDelta
// may change them after initialization.
type UserStats struct {
	Level                int             `json:"level"`
	CurrentXP            int             `json:"current_xp"`
	NextLevelXP          int             `json:"next_level_xp"`
	TotalQuestsCompleted int             `json:"total_quests_completed"`
	StreakDays           int             `json:"streak_days"`
	EarnedBadges         []string        `json:"earned_badges"`
	DailyHistory         []DailyProgress `json:"daily_history"`
}

// NewUserStats returns stats at level 1 with nothing earned.
func NewUserStats(thresholds []int) UserStats {
	next := 0
	if len(thresholds) > 1 {
		next = thresholds[1]
	}
	return UserStats{
		Level:        1,
		NextLevelXP:  next,
		EarnedBadges: []string{},
		DailyHistory: []DailyProgress{},
	}
}

// ComputeLevel returns the highest level L such that xp >= thresholds[L-1].
// XP beyond the last threshold caps at the maximum defined level; an empty
// threshold table degenerates to level 1.
func ComputeLevel(xp int, thresholds []int) int {
	if len(thresholds) == 0 {
		return 1
	}
	level := 1
	for i := 1; i < len(thresholds); i++ {
		if xp < thresholds[i] {
			break
		}
		level = i + 1
	}
	return level
}

// nextLevelXP returns the XP required for the level after the given one,
// or the last threshold when already at the cap.
func nextLevelXP(level int, thresholds []int) int {
	if len(thresholds) == 0 {
		return 0
	}
	if level < len(thresholds) {
		return thresholds[level]
	}
	return thresholds[len(thresholds)-1]
}

// ComputeStreak returns the number of consecutive days with earned XP
// ending at the given day. A streak that is alive but not yet extended
// today still counts: when today has no entry the walk starts from
// yesterday.
func ComputeStreak(history []DailyProgress, today time.Time) int {
	earned := make(map[string]bool, len(history))
	for _, d := range history {
		if d.XPEarned > 0 {
			earned[d.Date] = true
		}
	}

	day := today
	if !earned[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for earned[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// ApplyXPDelta returns a new stats snapshot with CurrentXP adjusted by
// delta, clamped at zero, and Level/NextLevelXP recomputed. Positive
// deltas accumulate into today's daily-history entry; negative deltas
// never rewrite history (it is an earn log, not a ledger).
func ApplyXPDelta(stats UserStats, delta int, thresholds []int) UserStats {
	out := stats
	out.CurrentXP = stats.CurrentXP + delta
	if out.CurrentXP < 0 {
		out.CurrentXP = 0
	}
	out.Level = ComputeLevel(out.CurrentXP, thresholds)
	out.NextLevelXP = nextLevelXP(out.Level, thresholds)

	out.DailyHistory = append([]DailyProgress(nil), stats.DailyHistory...)
	if delta > 0 {
		today := time.Now().Format("2006-01-02")
		found := false
		for i := range out.DailyHistory {
			if out.DailyHistory[i].Date == today {
				out.DailyHistory[i].XPEarned += delta
				found = true
				break
			}
		}
		if !found {
			out.DailyHistory = append(out.DailyHistory, DailyProgress{Date: today, XPEarned: delta})
		}
	}
	return out
}
