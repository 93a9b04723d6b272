package remote

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagingPathIsUniquePerCall(t *testing.T) {
	a := StagingPath("ferry-app")
	b := StagingPath("ferry-app")

	pattern := regexp.MustCompile(`^ferry-app\.staging-[0-9a-f]{8}$`)
	assert.Regexp(t, pattern, a)
	assert.Regexp(t, pattern, b)
	assert.NotEqual(t, a, b)
}
