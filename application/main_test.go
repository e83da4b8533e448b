package application_test

import (
	"os"
	"testing"

	"lotto/config"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	_ = config.Get()

	os.Exit(m.Run())
}
