// Package classifier parses the structured reply of the mood detection model.
//
// The model answers in the form
//
//	MOOD: risk
//	RISK_SCORE: 0.85
//	RESPONSE: I'm really glad you told me...
package classifier

import (
	"math"
	"strconv"
	"strings"
)

// Known mood labels
const (
	MoodAnxious   = "anxious"
	MoodDepressed = "depressed"
	MoodPositive  = "positive"
	MoodNeutral   = "neutral"
	MoodRisk      = "risk"
)

// FallbackResponse is used when the model produced no usable text
const FallbackResponse = "I'm here to listen and support you. How are you feeling today?"

const (
	moodPrefix     = "MOOD:"
	riskPrefix     = "RISK_SCORE:"
	responsePrefix = "RESPONSE:"
)

var knownMoods = map[string]bool{
	MoodAnxious:   true,
	MoodDepressed: true,
	MoodPositive:  true,
	MoodNeutral:   true,
	MoodRisk:      true,
}

// Classification is the parsed model reply
type Classification struct {
	Mood      string
	RiskScore float64
	Response  string
}

// NeedsEscalation reports whether the classification crosses the escalation trigger
func (c Classification) NeedsEscalation(threshold float64, riskMood string) bool {
	return c.Mood == riskMood && c.RiskScore > threshold
}

// IsKnownMood reports whether mood is one of the labels the model is asked to produce
func IsKnownMood(mood string) bool {
	return knownMoods[mood]
}

// ParseReply extracts mood, risk score and user facing response from reply.
// Missing or unrecognised fields fall back to neutral and 0. Scores are clamped
// to [0, 1]. Everything after the RESPONSE: marker, including later lines, is
// the response; without a marker the whole reply is used.
func ParseReply(reply string) Classification {
	result := Classification{Mood: MoodNeutral}

	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")
	responseStart := -1

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, moodPrefix):
			mood := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, moodPrefix)))
			mood = strings.Trim(mood, "[]")
			if IsKnownMood(mood) {
				result.Mood = mood
			}
		case strings.HasPrefix(trimmed, riskPrefix):
			result.RiskScore = parseScore(strings.TrimPrefix(trimmed, riskPrefix))
		case strings.HasPrefix(trimmed, responsePrefix):
			responseStart = i
		}
		if responseStart >= 0 {
			break
		}
	}

	if responseStart >= 0 {
		first := strings.TrimPrefix(strings.TrimSpace(lines[responseStart]), responsePrefix)
		rest := append([]string{first}, lines[responseStart+1:]...)
		result.Response = strings.TrimSpace(strings.Join(rest, "\n"))
	} else {
		result.Response = strings.TrimSpace(reply)
	}

	if result.Response == "" {
		result.Response = FallbackResponse
	}

	return result
}

func parseScore(raw string) float64 {
	score, err := strconv.ParseFloat(strings.Trim(strings.TrimSpace(raw), "[]"), 64)
	if err != nil || math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}
