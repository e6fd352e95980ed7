package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort_PrefersLdflags(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.4.0"

	assert.Equal(t, "v1.4.0", Short())
	assert.Contains(t, String(), "grandpy v1.4.0")
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Short(), info.Version)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestString_IncludesBuildFields(t *testing.T) {
	s := String()

	assert.Contains(t, s, "commit: "+Commit)
	assert.Contains(t, s, "built: "+Date)
}
