package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andyballingall/kvikk-fix/internal/fs"
)

func TestOSEnvProvider(t *testing.T) {
	t.Parallel()

	t.Run("Get returns environment variable", func(t *testing.T) {
		t.Parallel()
		provider := fs.NewEnvProvider()

		// PATH should always be set
		assert.NotEmpty(t, provider.Get("PATH"))
	})

	t.Run("Get returns empty for unset variable", func(t *testing.T) {
		t.Parallel()
		provider := fs.NewEnvProvider()

		assert.Empty(t, provider.Get("KVIKK_UNLIKELY_TO_BE_SET_12345"))
	})
}

func TestMapEnvProvider(t *testing.T) {
	t.Parallel()

	t.Run("Get returns configured value", func(t *testing.T) {
		t.Parallel()
		env := fs.MapEnvProvider{"KVIKK_PROJECT": "web/tsconfig.json"}

		assert.Equal(t, "web/tsconfig.json", env.Get("KVIKK_PROJECT"))
		assert.Empty(t, env.Get("KVIKK_LOG_FILE"))
	})

	t.Run("Get returns empty for nil map", func(t *testing.T) {
		t.Parallel()
		var env fs.MapEnvProvider

		assert.Empty(t, env.Get("ANY_KEY"))
	})
}
