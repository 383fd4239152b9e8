package bridge

import "testing"

func TestIsDirMode(t *testing.T) {
	tests := []struct {
		name string
		mode uint32
		want bool
	}{
		{"directory 0755", 0o040755, true},
		{"regular 0644", 0o100644, false},
		{"symlink", 0o120777, false},
		{"bare dir bit", ModeDir, true},
		// Socket shares bits with S_IFDIR but is not a directory.
		{"socket", 0o140755, false},
		{"block device", 0o060660, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDirMode(tt.mode); got != tt.want {
				t.Errorf("IsDirMode(%o) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/sdcard/DCIM", "'/sdcard/DCIM'"},
		{"it's here", `'it'\''s here'`},
		{"a b", "'a b'"},
	}
	for _, tt := range tests {
		if got := ShellQuote(tt.in); got != tt.want {
			t.Errorf("ShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
