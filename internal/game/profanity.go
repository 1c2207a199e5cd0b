package game

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DeafWorld/story-clash/internal/types"
)

const maxNameLength = 12

var nameBlocklist = []string{
	"fuck", "shit", "bitch", "asshole", "nigger", "faggot",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ContainsProfanity reports whether the text contains a blocklisted word.
func ContainsProfanity(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range nameBlocklist {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// SanitizeName collapses whitespace, trims, caps length, and masks
// blocklisted words. An empty result falls back to "Player".
func SanitizeName(raw string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if name == "" {
		return "Player"
	}

	lowered := strings.ToLower(name)
	for _, word := range nameBlocklist {
		for {
			idx := strings.Index(lowered, word)
			if idx < 0 {
				break
			}
			name = name[:idx] + strings.Repeat("*", len(word)) + name[idx+len(word):]
			lowered = lowered[:idx] + strings.Repeat("*", len(word)) + lowered[idx+len(word):]
		}
	}

	if len(name) > maxNameLength {
		name = strings.TrimSpace(name[:maxNameLength])
		if name == "" {
			name = "Player"
		}
	}
	return name
}

// UniqueName appends a numeric suffix until the name collides with no
// current room member.
func UniqueName(name string, players []*types.Player) string {
	taken := make(map[string]bool, len(players))
	for _, p := range players {
		taken[strings.ToLower(p.Name)] = true
	}
	if !taken[strings.ToLower(name)] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", name, i)
		if len(candidate) > maxNameLength {
			base := maxNameLength - len(fmt.Sprintf(" %d", i))
			if base < 1 {
				base = 1
			}
			candidate = fmt.Sprintf("%s %d", strings.TrimSpace(name[:base]), i)
		}
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}
