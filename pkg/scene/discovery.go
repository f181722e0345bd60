package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo describes a scene file found on disk
type SceneInfo struct {
	ID          string // file name without extension
	Name        string
	DisplayName string
	Description string
	Group       string
	Variant     string
	FilePath    string
}

// SceneGroup collects the scenes that share a group
type SceneGroup struct {
	Name   string
	Scenes []SceneInfo
}

const defaultGroup = "Scenes"

// ListScenes scans dir for XML scene files and reads their metadata
func ListScenes(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %v", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseSceneMetadata reads the comments that precede the root element of a
// scene file. Each one may hold a "Scene:", "Variant:", "Description:" or
// "Group:" line:
//
//	<!-- Scene: Cornell Box -->
//	<!-- Group: Cornell Variants -->
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    defaultGroup,
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to read scene %s: %v", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "<?xml") {
			continue
		}
		if !strings.HasPrefix(line, "<!--") || !strings.HasSuffix(line, "-->") {
			break
		}

		content := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "<!--"), "-->"))
		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Scene":
			info.Name = value
		case "Variant":
			info.Variant = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	info.DisplayName = info.Name
	if info.Variant != "" {
		info.DisplayName = fmt.Sprintf("%s - %s", info.Name, info.Variant)
	}
	return info, scanner.Err()
}

// GroupScenes groups scenes by their Group field, the default group first
// and the rest alphabetically
func GroupScenes(scenes []SceneInfo) []SceneGroup {
	groupMap := make(map[string][]SceneInfo)
	var groupNames []string
	for _, info := range scenes {
		if _, exists := groupMap[info.Group]; !exists && info.Group != defaultGroup {
			groupNames = append(groupNames, info.Group)
		}
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}
	sort.Strings(groupNames)

	var groups []SceneGroup
	if defaults, exists := groupMap[defaultGroup]; exists {
		groups = append(groups, SceneGroup{Name: defaultGroup, Scenes: defaults})
	}
	for _, name := range groupNames {
		groups = append(groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return groups
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
