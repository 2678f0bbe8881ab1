package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingSession.Error(), ErrInvalidPorts.Error())
}

func TestErrMissingSession_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSession.Error(), "session")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
