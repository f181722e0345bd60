package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.xml",
			content: `<?xml version="1.0"?>
<!-- Scene: Cornell Box -->
<!-- Variant: Glass -->
<!-- Description: Cornell box with a dielectric sphere -->
<!-- Group: Cornell Variants -->
<Scene>
  <MaxRecursionDepth>6</MaxRecursionDepth>
</Scene>`,
			expected: SceneInfo{
				ID:          "complete_metadata",
				Name:        "Cornell Box",
				DisplayName: "Cornell Box - Glass",
				Description: "Cornell box with a dielectric sphere",
				Group:       "Cornell Variants",
				Variant:     "Glass",
			},
		},
		{
			name: "partial_metadata.xml",
			content: `<!-- Scene: Dragon -->
<!-- just a note -->
<Scene/>`,
			expected: SceneInfo{
				ID:          "partial_metadata",
				Name:        "Dragon",
				DisplayName: "Dragon",
				Group:       defaultGroup,
			},
		},
		{
			name:    "no-metadata.xml",
			content: "<Scene>\n<!-- Scene: ignored after the root -->\n</Scene>",
			expected: SceneInfo{
				ID:          "no-metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       defaultGroup,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}

			info, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata failed: %v", err)
			}
			tc.expected.FilePath = path
			if info != tc.expected {
				t.Errorf("got %+v\nwant %+v", info, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	if _, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestListScenes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.xml":     "<!-- Scene: Bunny -->\n<Scene/>",
		"a.xml":     "<!-- Scene: Spheres -->\n<!-- Group: Basics -->\n<Scene/>",
		"c.xml":     "<Scene/>",
		"notes.txt": "not a scene",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	scenes, err := ListScenes(dir)
	if err != nil {
		t.Fatalf("ListScenes failed: %v", err)
	}
	want := []string{"Bunny", "C", "Spheres"}
	if len(scenes) != len(want) {
		t.Fatalf("found %d scenes, want %d", len(scenes), len(want))
	}
	for i, name := range want {
		if scenes[i].DisplayName != name {
			t.Errorf("scene %d = %q, want %q", i, scenes[i].DisplayName, name)
		}
	}

	groups := GroupScenes(scenes)
	if len(groups) != 2 || groups[0].Name != defaultGroup || groups[1].Name != "Basics" {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[0].Scenes) != 2 || len(groups[1].Scenes) != 1 {
		t.Errorf("group sizes = %d, %d", len(groups[0].Scenes), len(groups[1].Scenes))
	}
}

func TestListScenes_EmptyDirectory(t *testing.T) {
	scenes, err := ListScenes(t.TempDir())
	if err != nil {
		t.Fatalf("ListScenes failed: %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("expected no scenes, got %d", len(scenes))
	}
}
