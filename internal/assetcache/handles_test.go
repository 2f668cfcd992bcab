package assetcache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/course-media/internal/model"
)

func TestBlobRegistry(t *testing.T) {
	reg := NewBlobRegistry("")
	rec := &model.AssetRecord{Data: []byte("png"), Metadata: model.Metadata{MimeType: "image/png"}}

	h1, err := reg.Create(rec)
	require.NoError(t, err)
	h2, err := reg.Create(rec)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h1, "blob:course-media/"), h1)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, reg.Len())

	// the registry keeps its own copy of the payload
	rec.Data[0] = 'X'
	data, mime, ok := reg.Open(h1)
	require.True(t, ok)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", mime)

	reg.Revoke(h1)
	reg.Revoke(h1)
	_, _, ok = reg.Open(h1)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestBlobRegistryRejectsNil(t *testing.T) {
	_, err := NewBlobRegistry("x").Create(nil)
	assert.Error(t, err)
}
