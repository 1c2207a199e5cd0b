package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DeafWorld/story-clash/internal/types"
)

// Loader reads story tree overrides from disk.
type Loader struct {
	basePath string
}

// NewLoader creates a new story loader
func NewLoader(basePath string) *Loader {
	return &Loader{
		basePath: basePath,
	}
}

// LoadTree loads one genre's story tree from <basePath>/<genre>.json.
func (l *Loader) LoadTree(genre types.GenreID) (*types.StoryTree, error) {
	path := filepath.Join(l.basePath, fmt.Sprintf("%s.json", genre))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	var tree types.StoryTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse story data: %w", err)
	}
	if tree.Genre == "" {
		tree.Genre = genre
	}

	if err := Validate(&tree); err != nil {
		return nil, fmt.Errorf("invalid story tree %q: %w", genre, err)
	}
	return &tree, nil
}

// LoadInto replaces catalog entries with any trees found under basePath.
// Missing files are not an error; the built-in trees stay in place.
func (l *Loader) LoadInto(catalog *Catalog) (int, error) {
	loaded := 0
	for _, genre := range types.Genres {
		tree, err := l.LoadTree(genre)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		catalog.Replace(tree)
		loaded++
	}
	return loaded, nil
}

// Validate checks a story tree's structural integrity: a start scene must
// exist, every choice and free-choice keyword must point at a known scene,
// and non-ending scenes must offer at least one choice.
func Validate(tree *types.StoryTree) error {
	if len(tree.Scenes) == 0 {
		return fmt.Errorf("no scenes")
	}

	byID := make(map[string]*types.Scene, len(tree.Scenes))
	for i := range tree.Scenes {
		scene := &tree.Scenes[i]
		if scene.ID == "" {
			return fmt.Errorf("scene %d has no id", i)
		}
		if _, dup := byID[scene.ID]; dup {
			return fmt.Errorf("duplicate scene id %q", scene.ID)
		}
		byID[scene.ID] = scene
	}

	if _, ok := byID["start"]; !ok {
		return fmt.Errorf("missing start scene")
	}

	for i := range tree.Scenes {
		scene := &tree.Scenes[i]
		if scene.Ending {
			continue
		}
		if len(scene.Choices) == 0 {
			return fmt.Errorf("scene %q has no choices and is not an ending", scene.ID)
		}
		for _, choice := range scene.Choices {
			if _, ok := byID[choice.NextID]; !ok {
				return fmt.Errorf("scene %q choice %q points at unknown scene %q", scene.ID, choice.ID, choice.NextID)
			}
		}
		if scene.FreeChoiceTargetID != "" {
			if _, ok := byID[scene.FreeChoiceTargetID]; !ok {
				return fmt.Errorf("scene %q free-choice target %q is unknown", scene.ID, scene.FreeChoiceTargetID)
			}
		}
		for pattern, target := range scene.FreeChoiceKeywords {
			if _, ok := byID[target]; !ok {
				return fmt.Errorf("scene %q keyword %q points at unknown scene %q", scene.ID, pattern, target)
			}
		}
	}
	return nil
}
