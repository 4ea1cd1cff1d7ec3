package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

func TestNewFile(t *testing.T) {
	s, err := New(FILE, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.PutIdentity("admin", store.NewX509Identity("Org1MSP", "cert", "key")))

	_, err = s.GetIdentity("admin")
	assert.NoError(t, err)
	assert.NoError(t, Close(FILE, s))
}

func TestNewUnknown(t *testing.T) {
	_, err := New("couchdb", "")
	assert.Error(t, err)
}
