package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "deadbox.json", "-a", ":8080"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "deadbox.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", ":8080"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "order preserved",
			args:    []string{"-i", "12h", "-d", "postgres://x", "-i", "1h"},
			allowed: []string{"-i", "-d"},
			want:    []string{"-i", "12h", "-d", "postgres://x", "-i", "1h"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next argument is a flag",
			args:    []string{"-c", "-a"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "nil args",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"bin", "-c", "a.json"}, "a.json"},
		{"long", []string{"bin", "-config", "b.json"}, "b.json"},
		{"long equals", []string{"bin", "-config=c.json", "-a", ":1"}, "c.json"},
		{"absent", []string{"bin", "-a", ":1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, ConfigFileFlag())
		})
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"command only", []string{"checkin"}, []string{"checkin"}},
		{"flags before", []string{"-a", "http://x", "checkin"}, []string{"checkin"}},
		{"config and equals", []string{"-c", "cfg.json", "-a=http://x", "attach", "id", "file.mp4"}, []string{"attach", "id", "file.mp4"}},
		{"none", []string{"-a", "http://x"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, []string{"-a", "-d", "-t"}))
		})
	}
}
