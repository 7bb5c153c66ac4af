package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCurrentVersion(t *testing.T) {
	assert.Equal(t, DevVersion, GetCurrentVersion("dev"))
	assert.Equal(t, DevVersion, GetCurrentVersion("demo"))
	assert.Equal(t, Version, GetCurrentVersion("prod"))
}

func TestVersionComparison(t *testing.T) {
	assert.True(t, IsVersionGreaterThan("0.4.1", "0.4.0"))
	assert.False(t, IsVersionGreaterThan("0.4.1", "0.4.1"))
	assert.True(t, IsVersionGreaterOrEqualThan("0.4.1", "0.4.1"))
	assert.False(t, IsVersionGreaterOrEqualThan("0.3.9", "0.4.0"))
	assert.Equal(t, "v0.4", GetMinorVersion("0.4.1"))
}
