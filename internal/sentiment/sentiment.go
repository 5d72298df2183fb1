package sentiment

import "fmt"

// Tier is a coarse sentiment bucket.
type Tier string

const (
	Positive Tier = "positive"
	Neutral  Tier = "neutral"
	Negative Tier = "negative"
)

// Threshold bounds the neutral band. Both ends belong to it.
const Threshold = 0.05

// Classify maps a polarity score to a tier.
func Classify(score float64) Tier {
	switch {
	case score > Threshold:
		return Positive
	case score < -Threshold:
		return Negative
	default:
		return Neutral
	}
}

// Format renders a score with exactly two decimals.
func Format(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
