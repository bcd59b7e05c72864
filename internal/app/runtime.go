package app

import (
	"os"
	"sync"
)

// TestModeEnv, when set to "1", keeps the binaries from dialing upstreams
// or binding ports. internal/testing/guard sets it for every test binary.
const TestModeEnv = "PAINEL_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether the process runs under test.
func InTestMode() bool {
	return testMode()
}
