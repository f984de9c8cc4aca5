package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Config
	}{
		{
			name:  "empty",
			input: "",
			want:  Config{Zoom: 1, Theme: "dark"},
		},
		{
			name: "all keys",
			input: `# erdraw settings
save_directory = ~/diagrams
readonly=true
zoom = 1.5
logfile=~/erdraw.log
theme = Light
`,
			want: Config{
				SaveDirectory: filepath.Join("/home/ann", "diagrams"),
				ReadOnly:      true,
				Zoom:          1.5,
				LogFile:       filepath.Join("/home/ann", "erdraw.log"),
				Theme:         "light",
			},
		},
		{
			name:  "aliases",
			input: "SaveDir=/tmp/out\nread_only=TRUE\nlog_file=/var/log/erdraw.log",
			want:  Config{SaveDirectory: "/tmp/out", ReadOnly: true, Zoom: 1, LogFile: "/var/log/erdraw.log", Theme: "dark"},
		},
		{
			name:  "out of range and malformed values are ignored",
			input: "zoom=9\ntheme=solarized\nreadonly=yes\nno equals sign\nunknown=1",
			want:  Config{Zoom: 1, Theme: "dark"},
		},
		{
			name:  "zoom parse error",
			input: "zoom=big",
			want:  Config{Zoom: 1, Theme: "dark"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseConfig(strings.NewReader(tt.input), "/home/ann")
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExpandPathMakesRelativeAbsolute(t *testing.T) {
	got := expandPath("exports", "/home/ann")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "exports", filepath.Base(got))
}

func TestGetSavePath(t *testing.T) {
	assert.Equal(t, "d.svg", (&Config{}).GetSavePath("d.svg"))

	dir := filepath.Join(t.TempDir(), "nested")
	c := &Config{SaveDirectory: dir}
	assert.Equal(t, filepath.Join(dir, "d.png"), c.GetSavePath("d.png"))
	assert.DirExists(t, dir)
}
