package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, token := range []string{"true", "T", "yes", "Y", "1", "on", "ENABLE"} {
		v, err := parseBool(token)
		require.NoError(t, err, token)
		assert.True(t, v, token)
	}
	for _, token := range []string{"false", "F", "no", "n", "0", "Off", "disable"} {
		v, err := parseBool(token)
		require.NoError(t, err, token)
		assert.False(t, v, token)
	}
	for _, token := range []string{"", "maybe", "2", "yep"} {
		_, err := parseBool(token)
		assert.ErrorIs(t, err, errInvalidBool, token)
	}
}

func TestParseConvertArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    convertArgs
		wantErr error
	}{
		{name: "только ссылка", args: []string{"https://discord.com/channels/1/2/3"}, want: convertArgs{link: "https://discord.com/channels/1/2/3"}},
		{name: "ссылка и флаг", args: []string{"link", "yes"}, want: convertArgs{link: "link", generateMP4: true}},
		{name: "лишние аргументы игнорируются", args: []string{"link", "0", "extra"}, want: convertArgs{link: "link"}},
		{name: "нет ссылки", args: nil, wantErr: errMissingLink},
		{name: "неверный флаг", args: []string{"link", "maybe"}, wantErr: errInvalidBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConvertArgs(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitCommand(t *testing.T) {
	name, args, ok := splitCommand("!", "!convert  link  true")
	require.True(t, ok)
	assert.Equal(t, "convert", name)
	assert.Equal(t, []string{"link", "true"}, args)

	_, _, ok = splitCommand("!", "convert link")
	assert.False(t, ok)

	_, _, ok = splitCommand("!", "!   ")
	assert.False(t, ok)
}
