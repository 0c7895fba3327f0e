package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "ionclm dev (commit dev, built unknown)", info.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789abcdef"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
	assert.Equal(t, "ionclm v0.3.0 (commit abc, built now)", Info{Version: "v0.3.0", CommitHash: "abc", BuildTime: "now"}.String())
}

func TestUserAgent(t *testing.T) {
	info := Info{Version: "v0.3.0", CommitHash: "0123456789abcdef"}
	assert.Equal(t, "ionclm/v0.3.0 (0123456)", info.UserAgent())
	assert.Equal(t, "ionclm/dev (dev)", Info{Version: "dev", CommitHash: "dev"}.UserAgent())
}
