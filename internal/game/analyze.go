package game

import "strings"

// ChoiceProfile is the keyword classification of one resolved choice,
// computed over the lowercased scene text plus choice label.
type ChoiceProfile struct {
	Risky         bool
	Cooperative   bool
	Moral         bool
	Investigative bool
	Emotional     bool
}

var (
	riskyWords         = []string{"fight", "charge", "rush", "sprint", "breach", "blast", "override", "decoy"}
	cooperativeWords   = []string{"help", "protect", "rescue", "cover", "share", "together", "crew", "evacuate"}
	moralWords         = []string{"save", "spare", "mercy", "civilian", "child", "truth", "honor"}
	investigativeWords = []string{"signal", "whisper", "secret", "lab", "research", "vault", "relay", "anomaly"}
	emotionalWords     = []string{"pray", "panic", "memory", "scream", "grief", "promise"}
)

// AnalyzeChoice classifies a resolved choice. A timeout counts as both risky
// and emotional regardless of wording.
func AnalyzeChoice(sceneText, choiceLabel string, timeout bool) ChoiceProfile {
	text := strings.ToLower(sceneText + " " + choiceLabel)
	return ChoiceProfile{
		Risky:         timeout || containsAny(text, riskyWords),
		Cooperative:   containsAny(text, cooperativeWords),
		Moral:         containsAny(text, moralWords),
		Investigative: containsAny(text, investigativeWords),
		Emotional:     timeout || containsAny(text, emotionalWords),
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
