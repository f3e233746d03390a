package progress

// Badge criterion kinds.
const (
	CriterionXP              = "xp"
	CriterionQuestsCompleted = "quests_completed"
	CriterionStreak          = "streak"
)

// BadgeCriteria is the unlock condition for a badge.
type BadgeCriteria struct {
	Type      string `json:"type"`
	Threshold int    `json:"threshold"`
}

// Badge is a static catalog entry. Never mutated at runtime; stats
// reference badges by id only.
type Badge struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	IconName    string        `json:"icon_name"`
	Criteria    BadgeCriteria `json:"criteria"`
}

// Catalog is the built-in badge set.
var Catalog = []Badge{
	{
		ID:          "novice",
		Title:       "Novice Learner",
		Description: "Complete your first Unit",
		IconName:    "Medal",
		Criteria:    BadgeCriteria{Type: CriterionQuestsCompleted, Threshold: 1},
	},
	{
		ID:          "scholar",
		Title:       "Dedicated Scholar",
		Description: "Earn 500 XP",
		IconName:    "BookOpen",
		Criteria:    BadgeCriteria{Type: CriterionXP, Threshold: 500},
	},
	{
		ID:          "streak_3",
		Title:       "Consistency Is Key",
		Description: "Reach a 3-day learning streak",
		IconName:    "Flame",
		Criteria:    BadgeCriteria{Type: CriterionStreak, Threshold: 3},
	},
	{
		ID:          "expert",
		Title:       "Knowledge Master",
		Description: "Earn 1500 XP",
		IconName:    "Brain",
		Criteria:    BadgeCriteria{Type: CriterionXP, Threshold: 1500},
	},
	{
		ID:          "veteran",
		Title:       "Quest Veteran",
		Description: "Complete 5 Units",
		IconName:    "Swords",
		Criteria:    BadgeCriteria{Type: CriterionQuestsCompleted, Threshold: 5},
	},
	{
		ID:          "legend",
		Title:       "Legendary",
		Description: "Reach Level 5 (5500 XP)",
		IconName:    "Crown",
		Criteria:    BadgeCriteria{Type: CriterionXP, Threshold: 5500},
	},
}

// met reports whether the stats snapshot satisfies the badge criterion.
func (b Badge) met(stats UserStats) bool {
	switch b.Criteria.Type {
	case CriterionXP:
		return stats.CurrentXP >= b.Criteria.Threshold
	case CriterionQuestsCompleted:
		return stats.TotalQuestsCompleted >= b.Criteria.Threshold
	case CriterionStreak:
		return stats.StreakDays >= b.Criteria.Threshold
	}
	return false
}

// CheckBadgeUnlocks evaluates every catalog badge not yet earned and
// returns the updated stats plus the badges unlocked by this call, in
// catalog order. Idempotent: a second call on the returned stats yields
// an empty unlock list.
func CheckBadgeUnlocks(stats UserStats, catalog []Badge) (UserStats, []Badge) {
	earned := make(map[string]bool, len(stats.EarnedBadges))
	for _, id := range stats.EarnedBadges {
		earned[id] = true
	}

	var unlocked []Badge
	out := stats
	out.EarnedBadges = append([]string(nil), stats.EarnedBadges...)
	for _, b := range catalog {
		if earned[b.ID] || !b.met(stats) {
			continue
		}
		out.EarnedBadges = append(out.EarnedBadges, b.ID)
		unlocked = append(unlocked, b)
	}
	return out, unlocked
}
