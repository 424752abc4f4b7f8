package domain

// DefaultRankTitle is shown when neither a custom rank nor a tier title is set.
const DefaultRankTitle = "СТАЖЕР"

type RankTier struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	MinPoints int64  `json:"min_points"`
}

// RankTiers is ordered by MinPoints ascending.
var RankTiers = []RankTier{
	{Level: 1, Title: DefaultRankTitle, MinPoints: 0},
	{Level: 2, Title: "ПРОДАВЕЦ", MinPoints: 2000},
	{Level: 3, Title: "ПРОФИ", MinPoints: 5000},
	{Level: 4, Title: "ЭКСПЕРТ", MinPoints: 10000},
	{Level: 5, Title: "МАСТЕР", MinPoints: 25000},
	{Level: 6, Title: "ЛЕГЕНДА", MinPoints: 50000},
}

// RankFor returns the highest tier reached by points. Negative balances stay on the first tier.
func RankFor(points int64) RankTier {
	tier := RankTiers[0]
	for _, t := range RankTiers[1:] {
		if points < t.MinPoints {
			break
		}
		tier = t
	}
	return tier
}
