package clips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"bundled", ModeBundled, false},
		{"", ModeBundled, false},
		{"Custom", ModeCustom, false},
		{" DISABLED ", ModeDisabled, false},
		{"loud", ModeBundled, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_Text(t *testing.T) {
	var zero Mode
	assert.Equal(t, ModeBundled, zero)

	text, err := ModeCustom.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "custom", string(text))

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("disabled")))
	assert.Equal(t, ModeDisabled, m)

	assert.Error(t, m.UnmarshalText([]byte("quiet")))
	assert.Equal(t, ModeDisabled, m)

	_, err = Mode(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Mode(42)", Mode(42).String())
}
