package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
)

func Test_NewMatcher(t *testing.T) {
	tests := []struct {
		name      string
		ignores   []string
		expectErr bool
	}{
		{
			name:    "default patterns",
			ignores: config.DefaultIgnored,
		},
		{
			name:    "empty patterns",
			ignores: []string{},
		},
		{
			name:      "invalid ignore pattern",
			ignores:   []string{"[invalid"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.ignores)

			if tt.expectErr {
				assert.ErrorIs(t, err, errors.ErrInvalidIgnoreGlob)
				assert.Nil(t, m)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, m)
			}
		})
	}
}

func Test_Matcher_Ignored(t *testing.T) {
	tests := []struct {
		name    string
		ignores []string
		file    string
		expect  bool
	}{
		{
			name:    "nested node_modules file",
			ignores: config.DefaultIgnored,
			file:    "web/node_modules/pkg/index.less",
			expect:  true,
		},
		{
			name:    "root node_modules file",
			ignores: config.DefaultIgnored,
			file:    "node_modules/pkg/index.less",
			expect:  true,
		},
		{
			name:    "git internals",
			ignores: config.DefaultIgnored,
			file:    ".git/HEAD",
			expect:  true,
		},
		{
			name:    "regular stylesheet",
			ignores: config.DefaultIgnored,
			file:    "src/theme/colors.less",
			expect:  false,
		},
		{
			name:    "editor swap file",
			ignores: []string{"**/*.swp"},
			file:    "src/.index.less.swp",
			expect:  true,
		},
		{
			name:    "leading dot-slash",
			ignores: []string{"dist/**"},
			file:    "./dist/bundle.css",
			expect:  true,
		},
		{
			name:    "no patterns",
			ignores: nil,
			file:    "anything.less",
			expect:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.ignores)
			assert.NoError(t, err)

			assert.Equal(t, tt.expect, m.Ignored(tt.file))
		})
	}
}

func Test_Matcher_IgnoredDir(t *testing.T) {
	m, err := NewMatcher(config.DefaultIgnored)
	assert.NoError(t, err)

	assert.True(t, m.IgnoredDir("node_modules"))
	assert.True(t, m.IgnoredDir("packages/app/node_modules"))
	assert.False(t, m.IgnoredDir("src/styles"))
}

func Test_normalizePath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "removes leading dot-slash",
			input:  "./src/main.less",
			expect: "src/main.less",
		},
		{
			name:   "keeps path without prefix",
			input:  "src/main.less",
			expect: "src/main.less",
		},
		{
			name:   "handles root file",
			input:  "main.less",
			expect: "main.less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, normalizePath(tt.input))
		})
	}
}
