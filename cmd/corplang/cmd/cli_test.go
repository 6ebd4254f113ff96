package cmd_test

import (
	"os"
	"testing"

	"github.com/corplang/mp/cmd/corplang/cmd"
	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers this test binary as the "corplang" command testscript
// scripts can `exec`, per the teacher's preference for real subprocess CLI
// tests over mocking cobra's RunE functions directly.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"corplang": corplangMain,
	}))
}

func corplangMain() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
