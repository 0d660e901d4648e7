package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileURI_RoundTrip(t *testing.T) {
	for _, p := range []string{"/tmp/ana.jpg", "/tmp/foto#1.jpg", "/tmp/50%.jpg", "/tmp/a?b.jpg", "/tmp/con espacio.jpg"} {
		uri := FileURI(p)
		assert.Contains(t, uri, "file:///")
		got, err := LocalPath(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, p, got)
	}
	assert.Equal(t, "file:///tmp/foto%231.jpg", FileURI("/tmp/foto#1.jpg"))
}

func TestLocalPath_PlainPath(t *testing.T) {
	got, err := LocalPath("/tmp/foto#1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/foto#1.jpg", got)

	_, err = LocalPath("")
	assert.Error(t, err)
	_, err = LocalPath("file:///tmp/50%-1.jpg")
	assert.Error(t, err)
}
