package wellness

var highRiskTips = []string{
	"Prioritize getting 7-8 hours of sleep tonight by setting a firm bedtime and avoiding screens 1 hour before.",
	"Take a 15-minute break every 2 hours during work to reduce stress and prevent mental fatigue.",
	"Limit recreational screen time to 2 hours today to give your mind time to rest and recover.",
}

var moderateRiskTips = []string{
	"Establish a consistent sleep schedule by going to bed and waking up at the same time each day.",
	"Set boundaries around work hours by defining a clear end time and sticking to it.",
	"Practice the 20-20-20 rule: every 20 minutes, look at something 20 feet away for 20 seconds.",
}

// lowRiskTips also covers Low-Moderate.
var lowRiskTips = []string{
	"Continue your healthy sleep routine and consider adding a brief meditation before bed to enhance sleep quality.",
	"Maintain your work-life balance by scheduling regular breaks and leisure activities throughout the week.",
	"Use your current stability to build resilience through regular exercise or stress-management techniques.",
}

var genericTips = []string{
	"Take deep breaths and practice mindfulness for 5 minutes to reduce stress.",
	"Stay hydrated by drinking water regularly throughout the day.",
	"Connect with a friend or family member for social support.",
}

// FallbackTips returns a copy of the hand-written tip set for a category.
func FallbackTips(category string) []string {
	var set []string
	switch category {
	case CategoryHigh:
		set = highRiskTips
	case CategoryModerate:
		set = moderateRiskTips
	default:
		set = lowRiskTips
	}
	return append([]string(nil), set...)
}

// GenericTips returns a copy of the filler tips used to pad short results.
func GenericTips() []string {
	return append([]string(nil), genericTips...)
}

// padTips fills tips up to n with generic fillers, keeping the given tips first.
func padTips(tips []string, n int) []string {
	for i := 0; len(tips) < n && i < len(genericTips); i++ {
		tips = append(tips, genericTips[i])
	}
	return tips
}
