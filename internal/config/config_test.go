package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads file and fills defaults", func(t *testing.T) {
		// Given: a computer-vs-computer config
		path := writeConfig(t, `
mode: computer-vs-computer
move-timeout: 3s
black:
  name: alpha
  api: http://alpha.local/move
white:
  name: beta
  api: http://beta.local/move
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: file values and defaults are both present
		require.NoError(t, err)
		assert.Equal(t, "alpha", conf.Black.Name)
		assert.Equal(t, "http://beta.local/move", conf.White.API)
		assert.Equal(t, 3*time.Second, conf.MoveTimeout)
		assert.Equal(t, time.Hour, conf.MatchTTL)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, SurfaceWeb, conf.Surface)
		assert.False(t, conf.UsesRedis())
		assert.True(t, conf.KeepServing)
	})

	t.Run("Env overrides the file", func(t *testing.T) {
		// Given: a human-vs-computer config and env overrides
		path := writeConfig(t, `
mode: human-vs-computer
ai:
  api: http://bot.local
redis:
  host: cache
`)
		t.Setenv("HUMAN_COLOR", "white")
		t.Setenv("REDIS_PORT", "6380")

		// When: it is loaded
		conf, err := Load(path)

		// Then: the env values win
		require.NoError(t, err)
		assert.Equal(t, "white", conf.HumanColor)
		assert.True(t, conf.UsesRedis())
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Rejects broken configs", func(t *testing.T) {
		cases := map[string]struct {
			content  string
			expected error
		}{
			"unknown mode": {
				content:  "mode: bot-vs-bot\n",
				expected: apperror.ErrUnknownMode,
			},
			"missing white api": {
				content:  "mode: computer-vs-computer\nblack:\n  api: http://a\n",
				expected: apperror.ErrEndpointIsRequired,
			},
			"bad human color": {
				content:  "mode: human-vs-computer\nhuman-color: red\nai:\n  api: http://a\n",
				expected: apperror.ErrUnknownColor,
			},
			"unknown surface": {
				content:  "surface: gui\nmode: human-vs-computer\nai:\n  api: http://a\n",
				expected: apperror.ErrUnknownSurface,
			},
		}

		for name, tc := range cases {
			_, err := Load(writeConfig(t, tc.content))

			assert.ErrorIs(t, err, tc.expected, name)
		}
	})

	t.Run("MustLoad panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})
}
