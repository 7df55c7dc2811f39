package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "https://example.com/agenda.pdf", nullIfEmpty("https://example.com/agenda.pdf"))
}
