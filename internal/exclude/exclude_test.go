package exclude

import (
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	t.Run("empty rule set matches nothing", func(t *testing.T) {
		m, err := Compile(nil, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if m.MatchDir(".git") || m.MatchFile("Thumbs.db") || m.MatchPath("a/b/c") {
			t.Error("empty matcher matched something")
		}
	})

	t.Run("bad pattern names its rule class", func(t *testing.T) {
		_, err := Compile(nil, []string{"["}, nil)
		if err == nil {
			t.Fatal("Compile accepted an unterminated character class")
		}
		if !strings.Contains(err.Error(), "exclude-file") {
			t.Errorf("error = %v, want exclude-file context", err)
		}
	})
}

func TestMatcher(t *testing.T) {
	m, err := Compile(
		[]string{`^\.git$`, `^@eaDir$`},
		[]string{`^\.DS_Store$`, `\.tmp$`},
		[]string{`^private/`},
	)
	if err != nil {
		t.Fatal(err)
	}

	dirCases := map[string]bool{
		".git":      true,
		"@eaDir":    true,
		"gitfolder": false,
		"2024":      false,
	}
	for name, want := range dirCases {
		if got := m.MatchDir(name); got != want {
			t.Errorf("MatchDir(%q) = %v, want %v", name, got, want)
		}
	}

	fileCases := map[string]bool{
		".DS_Store":   true,
		"scratch.tmp": true,
		"img.jpg":     false,
	}
	for name, want := range fileCases {
		if got := m.MatchFile(name); got != want {
			t.Errorf("MatchFile(%q) = %v, want %v", name, got, want)
		}
	}

	pathCases := map[string]bool{
		"private/keys.txt":  true,
		"2024/private/x":    false,
		"privateer/log.txt": false,
	}
	for identity, want := range pathCases {
		if got := m.MatchPath(identity); got != want {
			t.Errorf("MatchPath(%q) = %v, want %v", identity, got, want)
		}
	}
}
