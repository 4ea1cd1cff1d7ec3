package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIn(t *testing.T) {
	assert.True(t, In([]string{"GET", "POST"}, "POST"))
	assert.False(t, In([]string{"GET", "POST"}, "PUT"))
	assert.False(t, In(nil, ""))
}

func TestHasAnyPrefix(t *testing.T) {
	ps := []string{"/asset", "/history"}

	assert.True(t, HasAnyPrefix("/assets", ps))
	assert.True(t, HasAnyPrefix("/history/x", ps))
	assert.False(t, HasAnyPrefix("/index.html", ps))
	assert.False(t, HasAnyPrefix("/", nil))
}
