package configuration

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/logging"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestProvider_Provide(t *testing.T) {
	resources := fstest.MapFS{
		testFilename: &fstest.MapFile{Data: []byte("source: resources\n")},
	}

	t.Run("file on disk", func(t *testing.T) {
		f := newLocatorFixture(t)
		writeFile(t, filepath.Join(f.work, testFilename), "source: disk\n")

		var buf bytes.Buffer
		logger := logging.NewLogger(&logging.Config{Level: logging.LevelInfo, Format: "json", Output: &buf})
		p := NewProvider(testProperty, testFilename,
			WithLocatorOptions(f.options()...),
			WithResources(resources),
			WithLogger(logger))

		rc, found, err := p.Provide(context.Background(), true)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "source: disk\n", readAll(t, rc))
		assert.Contains(t, buf.String(), "loading configuration")
	})

	t.Run("resources when nothing is on disk", func(t *testing.T) {
		f := newLocatorFixture(t)
		p := NewProvider(testProperty, testFilename,
			WithLocatorOptions(f.options()...),
			WithResources(resources))

		rc, found, err := p.Provide(context.Background(), true)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "source: resources\n", readAll(t, rc))
	})

	t.Run("optional and missing", func(t *testing.T) {
		f := newLocatorFixture(t)
		p := NewProvider(testProperty, testFilename, WithLocatorOptions(f.options()...))

		rc, found, err := p.Provide(context.Background(), false)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rc)
	})

	t.Run("mandatory and missing", func(t *testing.T) {
		f := newLocatorFixture(t)
		p := NewProvider(testProperty, testFilename,
			WithLocatorOptions(f.options()...),
			WithResources(fstest.MapFS{}))

		_, found, err := p.Provide(context.Background(), true)
		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, errors.IsConfig(err))
		assert.Contains(t, err.Error(), "no configuration for app.yml")
	})

	t.Run("invalid location fails before any lookup", func(t *testing.T) {
		f := newLocatorFixture(t)
		f.env[testProperty] = filepath.Join(f.work, "missing")
		p := NewProvider(testProperty, testFilename,
			WithLocatorOptions(f.options()...),
			WithResources(resources))

		_, _, err := p.Provide(context.Background(), false)
		assert.True(t, errors.IsConfig(err))
	})
}
