package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractiq/contractiq/internal/config"
)

func TestResolvePort(t *testing.T) {
	t.Run("defaults to configured port when flag is untouched", func(t *testing.T) {
		cmd := ServeCmd()
		cfg := &config.Config{Port: "9090"}

		assert.Equal(t, "9090", resolvePort(cmd, cfg))
	})

	t.Run("explicit flag wins over configured port", func(t *testing.T) {
		cmd := ServeCmd()
		require.NoError(t, cmd.Flags().Set("port", "3000"))
		cfg := &config.Config{Port: "9090"}

		assert.Equal(t, "3000", resolvePort(cmd, cfg))
	})

	t.Run("explicit flag equal to the default still wins", func(t *testing.T) {
		cmd := ServeCmd()
		require.NoError(t, cmd.Flags().Set("port", "8080"))
		cfg := &config.Config{Port: "9090"}

		assert.Equal(t, "8080", resolvePort(cmd, cfg))
	})
}
