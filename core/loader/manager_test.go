package loader_test

import (
	"errors"
	"testing"

	"dat-catalog/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager(t *testing.T) {
	t.Run("Loads enabled features", func(t *testing.T) {
		mgr := loader.NewManager(nil)
		on := &stubFeature{name: "catalog", enabled: true}
		off := &stubFeature{name: "snapshot"}
		require.NoError(t, mgr.Register(on))
		require.NoError(t, mgr.Register(off))

		assert.NoError(t, mgr.LoadAll(fiber.New()))
		assert.True(t, on.loaded)
		assert.False(t, off.loaded)
		assert.Len(t, mgr.Features(), 2)
	})

	t.Run("Rejects duplicate names", func(t *testing.T) {
		mgr := loader.NewManager(nil)
		require.NoError(t, mgr.Register(&stubFeature{name: "catalog"}))
		assert.Error(t, mgr.Register(&stubFeature{name: "catalog"}))
	})

	t.Run("Stops on load failure", func(t *testing.T) {
		mgr := loader.NewManager(nil)
		broken := &stubFeature{name: "integrity", enabled: true, err: errors.New("no database")}
		after := &stubFeature{name: "catalog", enabled: true}
		require.NoError(t, mgr.Register(broken))
		require.NoError(t, mgr.Register(after))

		err := mgr.LoadAll(fiber.New())
		assert.ErrorContains(t, err, "failed to load feature integrity")
		assert.False(t, after.loaded)
	})
}
