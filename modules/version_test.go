package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHashIsStable(t *testing.T) {
	hash := BuildHash()
	assert.NotEmpty(t, hash)
	assert.Equal(t, hash, BuildHash())
}

func TestBinaryHashFormat(t *testing.T) {
	assert.Regexp(t, `^\d{6}-[0-9a-f]{8}$`, binaryHash())
}
