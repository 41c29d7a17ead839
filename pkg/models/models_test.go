package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"", ModeUser, false},
		{"user", ModeUser, false},
		{"ENABLER", ModeEnabler, false},
		{" Enabler ", ModeEnabler, false},
		{"admin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeToggle(t *testing.T) {
	assert.Equal(t, ModeEnabler, ModeUser.Toggle())
	assert.Equal(t, ModeUser, ModeEnabler.Toggle())
	assert.Equal(t, ModeUser, ModeUser.Toggle().Toggle())
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("22.3080, 113.9185")
	require.NoError(t, err)
	assert.Equal(t, Position{Lat: 22.3080, Lng: 113.9185}, p)

	for _, bad := range []string{"", "22.3", "91,0", "0,181", "north,east", "NaN,114", "22.3,nan", "Inf,0", "0,-Inf"} {
		_, err := ParsePosition(bad)
		assert.Error(t, err, bad)
	}
}
