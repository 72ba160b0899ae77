package services

// Badge tiers by raw performance score, highest first. The streak bonus never
// changes a badge — it only moves ranks.
var badgeTiers = []struct {
	Threshold float64
	Level     string
}{
	{90, "diamond"},
	{80, "platinum"},
	{70, "gold"},
	{60, "silver"},
}

// BadgeLevel maps a performance score to its display tier. Anything below 60,
// negative scores included, is bronze.
func BadgeLevel(score float64) string {
	for _, tier := range badgeTiers {
		if score >= tier.Threshold {
			return tier.Level
		}
	}
	return "bronze"
}
