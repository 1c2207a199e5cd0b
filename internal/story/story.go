// Package story is the read-only catalog of branching scene trees. It holds
// no session state; every function is a pure lookup against the loaded trees.
package story

import (
	"regexp"
	"strings"

	"github.com/DeafWorld/story-clash/internal/types"
)

// Catalog resolves scenes for every known genre.
type Catalog struct {
	stories map[types.GenreID]*types.StoryTree
}

// NewCatalog returns a catalog over the built-in story trees.
func NewCatalog() *Catalog {
	return &Catalog{stories: builtinStories()}
}

// Replace swaps in an externally loaded tree for its genre.
func (c *Catalog) Replace(tree *types.StoryTree) {
	c.stories[tree.Genre] = tree
}

// Story returns the full tree for a genre, or nil when unknown.
func (c *Catalog) Story(genre types.GenreID) *types.StoryTree {
	return c.stories[genre]
}

// Title returns the display title for a genre, or "" when unknown.
func (c *Catalog) Title(genre types.GenreID) string {
	tree := c.stories[genre]
	if tree == nil {
		return ""
	}
	return tree.Title
}

// Scene returns a scene by id, or nil when missing.
func (c *Catalog) Scene(genre types.GenreID, sceneID string) *types.Scene {
	tree := c.stories[genre]
	if tree == nil {
		return nil
	}
	for i := range tree.Scenes {
		if tree.Scenes[i].ID == sceneID {
			return &tree.Scenes[i]
		}
	}
	return nil
}

// StartScene returns the "start" scene, falling back to the first scene.
func (c *Catalog) StartScene(genre types.GenreID) *types.Scene {
	if scene := c.Scene(genre, "start"); scene != nil {
		return scene
	}
	tree := c.stories[genre]
	if tree == nil || len(tree.Scenes) == 0 {
		return nil
	}
	return &tree.Scenes[0]
}

// ChoiceByID returns the scene's choice with the given id, falling back to
// the first choice.
func ChoiceByID(scene *types.Scene, choiceID string) *types.Choice {
	for i := range scene.Choices {
		if scene.Choices[i].ID == choiceID {
			return &scene.Choices[i]
		}
	}
	if len(scene.Choices) > 0 {
		return &scene.Choices[0]
	}
	return nil
}

// NeutralNextID returns the middle choice's target, the path a turn takes
// when free text matches nothing.
func NeutralNextID(scene *types.Scene) string {
	if len(scene.Choices) == 0 {
		return ""
	}
	return scene.Choices[len(scene.Choices)/2].NextID
}

// MapFreeChoice resolves free text against a scene keyword map. Patterns are
// alternation groups matched on word boundaries; "default" is the fallback.
func MapFreeChoice(input string, keywords map[string]string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized != "" {
		for pattern, sceneID := range keywords {
			if pattern == "default" {
				continue
			}
			matcher, err := regexp.Compile(`\b(` + pattern + `)\b`)
			if err != nil {
				continue
			}
			if matcher.MatchString(normalized) {
				return sceneID
			}
		}
	}
	return keywords["default"]
}

// FreeChoiceNextID resolves free text for a scene: keyword map first, then
// the scene's dedicated free-choice target, then the neutral path.
func FreeChoiceNextID(scene *types.Scene, freeText string) string {
	if next := MapFreeChoice(freeText, scene.FreeChoiceKeywords); next != "" {
		return next
	}
	if scene.FreeChoiceTargetID != "" {
		return scene.FreeChoiceTargetID
	}
	return NeutralNextID(scene)
}
