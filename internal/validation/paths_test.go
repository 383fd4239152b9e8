package validation

import (
	"path/filepath"
	"testing"
)

func TestValidateEntryName(t *testing.T) {
	testCases := []struct {
		name        string
		entry       string
		expectValid bool
	}{
		{"simple", "a.txt", true},
		{"hidden", ".nomedia", true},
		{"double_dots_inside", "file..txt", true},
		{"backslash", `weird\name`, true},
		{"spaces", "My Music", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"slash", "sub/b.txt", false},
		{"null_byte", "a\x00b", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEntryName(tc.entry)
			if tc.expectValid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tc.entry, err)
			} else if !tc.expectValid && err == nil {
				t.Errorf("expected %q to be rejected", tc.entry)
			}
		})
	}
}

// TestValidateFilename tests strict validation for user-supplied names
func TestValidateFilename(t *testing.T) {
	testCases := []struct {
		name        string
		filename    string
		expectValid bool
		description string
	}{
		{"simple", "file.txt", true, "Simple filename"},
		{"with_dots", "file.v1.2.3.txt", true, "Filename with version dots"},
		{"hidden_file", ".hidden", true, "Hidden file (starts with single dot)"},
		{"contains_dots", "file..txt", true, "Only literal '..' is rejected"},
		{"empty", "", false, "Empty filename"},
		{"parent_dir", "..", false, "Parent directory reference"},
		{"current_dir", ".", false, "Current directory reference"},
		{"unix_separator", "dir/file.txt", false, "Contains Unix path separator"},
		{"windows_separator", "dir\\file.txt", false, "Contains Windows path separator"},
		{"traversal_attempt", "../etc/passwd", false, "Path traversal attempt"},
		{"null_byte", "file\x00.txt", false, "Filename with null byte"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFilename(tc.filename)

			if tc.expectValid && err != nil {
				t.Errorf("Expected filename '%s' to be valid, but got error: %v\nDescription: %s",
					tc.filename, err, tc.description)
			} else if !tc.expectValid && err == nil {
				t.Errorf("Expected filename '%s' to be invalid, but validation passed\nDescription: %s",
					tc.filename, tc.description)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	valid := []string{"", "a.txt", "sub/b.txt", "x/y/z/deep.bin"}
	for _, rel := range valid {
		if err := ValidateRelativePath(rel); err != nil {
			t.Errorf("ValidateRelativePath(%q) = %v, want nil", rel, err)
		}
	}

	invalid := []string{"/abs", "sub/../../x", "a//b", "./a", "sub/"}
	for _, rel := range invalid {
		if err := ValidateRelativePath(rel); err == nil {
			t.Errorf("ValidateRelativePath(%q) should fail", rel)
		}
	}
}

// TestValidatePathInDirectory tests containment checks for pulled files
func TestValidatePathInDirectory(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "pulled")

	testCases := []struct {
		name        string
		path        string
		baseDir     string
		expectValid bool
	}{
		{"relative_file", "DCIM/a.jpg", baseDir, true},
		{"nested", "a/b/c/d.txt", baseDir, true},
		{"dot", ".", baseDir, true},
		{"absolute_inside", filepath.Join(baseDir, "x.txt"), baseDir, true},
		{"escape_parent", "../x.txt", baseDir, false},
		{"escape_deep", "../../.ssh/id_rsa", baseDir, false},
		{"escape_after_descend", "a/../../x", baseDir, false},
		{"absolute_outside", filepath.Join(filepath.Dir(baseDir), "other"), baseDir, false},
		{"empty_path", "", baseDir, false},
		{"empty_base", "x", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePathInDirectory(tc.path, tc.baseDir)
			if tc.expectValid && err != nil {
				t.Errorf("Expected %q to be inside %q, got error: %v", tc.path, tc.baseDir, err)
			} else if !tc.expectValid && err == nil {
				t.Errorf("Expected %q to be rejected for base %q", tc.path, tc.baseDir)
			}
		})
	}
}
