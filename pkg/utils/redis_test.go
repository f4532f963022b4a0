package utils

import "testing"

func TestSendLockScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if sendLockAcquireScript == nil || sendLockReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}
