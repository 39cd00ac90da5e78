package wellness

import (
	"fmt"
	"strconv"
	"strings"
)

/* =================================================================================
							PROMPT ENGINEERING
=================================================================================*/

// SystemPrompt sets the persona for the chat completion.
const SystemPrompt = "You are a mental health and wellness expert. Provide specific, actionable advice."

// UserPromptTemplate takes sleep, work, screen (value + status), score and category.
const UserPromptTemplate = `You are a mental health and wellness expert AI assistant. Based on the following user data, provide 3 specific, actionable wellness recommendations to help prevent burnout.

USER DATA:
- Sleep: %s hours (%s)
- Work: %s hours (%s)
- Screen time: %s hours (%s)
- Burnout risk score: %s/1.0 (%s risk)`

const highRiskInstructions = `

URGENCY: This user has HIGH burnout risk. Focus on immediate, practical interventions.

Please provide 3 specific recommendations that:
1. Address the most critical risk factors (sleep/work/screen time)
2. Can be implemented immediately (today/tomorrow)
3. Are realistic and not overwhelming
4. Include specific time frames or measurements

Format each tip as a complete sentence starting with an action verb.`

const moderateRiskInstructions = `

This user has MODERATE burnout risk. Focus on preventive measures and lifestyle adjustments.

Please provide 3 specific recommendations that:
1. Help prevent escalation to high risk
2. Address the concerning patterns in their data
3. Are sustainable long-term changes
4. Include specific, measurable goals

Format each tip as a complete sentence starting with an action verb.`

const lowRiskInstructions = `

This user has LOW burnout risk. Focus on maintaining good habits and optimization.

Please provide 3 specific recommendations that:
1. Help maintain their current healthy patterns
2. Optimize their existing routines
3. Build resilience for future stress
4. Are enhancement-focused rather than corrective

Format each tip as a complete sentence starting with an action verb.`

// BuildPrompt renders the user prompt for an assessment.
func BuildPrompt(a Assessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, UserPromptTemplate,
		formatFloat(a.Sleep), sleepStatus(a.Sleep),
		formatFloat(a.Work), workStatus(a.Work),
		formatFloat(a.Screen), screenStatus(a.Screen),
		formatFloat(a.Score), a.Category,
	)

	// Zero readings are treated as absent.
	if a.HeartRate != nil && *a.HeartRate != 0 {
		status := "normal"
		if *a.HeartRate > 80 {
			status = "elevated"
		}
		fmt.Fprintf(&b, "\n- Heart rate: %d bpm (%s)", *a.HeartRate, status)
	}

	if a.Steps != nil && *a.Steps != 0 {
		status := "good"
		if *a.Steps < 5000 {
			status = "low"
		}
		fmt.Fprintf(&b, "\n- Daily steps: %d (%s activity level)", *a.Steps, status)
	}

	b.WriteString(tierInstructions(a.Category))
	return b.String()
}

func tierInstructions(category string) string {
	switch category {
	case CategoryHigh:
		return highRiskInstructions
	case CategoryModerate:
		return moderateRiskInstructions
	default:
		return lowRiskInstructions
	}
}

func sleepStatus(hours float64) string {
	if hours < 7 {
		return "insufficient"
	}
	return "adequate"
}

func workStatus(hours float64) string {
	if hours > 8 {
		return "excessive"
	}
	return "normal"
}

func screenStatus(hours float64) string {
	if hours > 6 {
		return "high"
	}
	return "moderate"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
