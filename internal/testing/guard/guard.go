// Package guard puts the process in test mode and gates tests that need
// external services.
package guard

import (
	"os"
	"sync"
	"testing"
)

const (
	testModeEnv = "PAINEL_TEST_MODE"
	pgDSNEnv    = "PAINEL_TEST_PG_DSN"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(testModeEnv) == "" {
			_ = os.Setenv(testModeEnv, "1")
		}
	})
}

// PostgresDSN returns the DSN of a disposable goal database or skips t.
func PostgresDSN(t testing.TB) string {
	t.Helper()
	dsn := os.Getenv(pgDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping Postgres integration test", pgDSNEnv)
	}
	return dsn
}
