package settings

import (
	"testing"
	"time"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	s := Builtin()
	assert.Equal(t, 60*time.Second, s.RefreshInterval)
	assert.False(t, s.AllowFuture)
	assert.Zero(t, s.Cutoff)
	assert.False(t, s.LocaleTitle)
	require.NotNil(t, s.Strings)
	assert.Equal(t, "ago", s.Strings.SuffixAgo)
	assert.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"negative refresh", func(s *Settings) { s.RefreshInterval = -time.Second }},
		{"negative cutoff", func(s *Settings) { s.Cutoff = -time.Second }},
		{"missing strings", func(s *Settings) { s.Strings = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Builtin()
			tt.modify(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.KindInvalidArgs))
		})
	}
}

func TestMerge(t *testing.T) {
	de, err := locale.Lookup("de")
	require.NoError(t, err)

	base := Builtin()
	merged := base.Merge(Options{
		AllowFuture: Bool(true),
		Cutoff:      Duration(24 * time.Hour),
		Strings:     de,
	})

	assert.True(t, merged.AllowFuture)
	assert.Equal(t, 24*time.Hour, merged.Cutoff)
	assert.Equal(t, base.RefreshInterval, merged.RefreshInterval, "unset option keeps default")
	assert.False(t, merged.LocaleTitle)
	assert.Same(t, de, merged.Strings)

	assert.False(t, base.AllowFuture, "merge does not modify the receiver")
}

func TestMerge_ZeroValuesOverride(t *testing.T) {
	merged := Builtin().Merge(Options{RefreshInterval: Duration(0)})
	assert.Zero(t, merged.RefreshInterval)
}

func TestSetDefaults(t *testing.T) {
	t.Cleanup(ResetDefaults)

	s := Builtin()
	s.AllowFuture = true
	require.NoError(t, SetDefaults(s))
	assert.True(t, Defaults().AllowFuture)
	assert.True(t, Resolve(Options{}).AllowFuture)
	assert.False(t, Resolve(Options{AllowFuture: Bool(false)}).AllowFuture)

	ResetDefaults()
	assert.False(t, Defaults().AllowFuture)
}

func TestSetDefaults_RejectsInvalid(t *testing.T) {
	t.Cleanup(ResetDefaults)

	bad := Builtin()
	bad.Cutoff = -1
	require.Error(t, SetDefaults(bad))
	assert.Zero(t, Defaults().Cutoff, "invalid settings are not stored")
}
