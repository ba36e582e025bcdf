package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() {
		appVersion, appCommit, appDate = origVersion, origCommit, origDate
	}()

	SetVersionInfo("1.2.3", "abc1234", "2026-02-13")

	if appVersion != "1.2.3" {
		t.Errorf("appVersion = %q, want 1.2.3", appVersion)
	}
	if appCommit != "abc1234" {
		t.Errorf("appCommit = %q, want abc1234", appCommit)
	}
	if appDate != "2026-02-13" {
		t.Errorf("appDate = %q, want 2026-02-13", appDate)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"nonexistent-command"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecute_VersionSubcommand(t *testing.T) {
	origVersion := appVersion
	defer func() { appVersion = origVersion }()
	appVersion = "9.9.9"

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "taskmatch 9.9.9") {
		t.Errorf("output = %q, want version line", stdout.String())
	}
}

func TestRequireEngine_NotInitialized(t *testing.T) {
	orig := Engine
	defer func() { Engine = orig }()
	Engine = nil

	_, err := requireEngine()
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("requireEngine() error = %v, want not initialized", err)
	}
}

func TestRequireEngine_LoadsRosterOnce(t *testing.T) {
	useDemoEngine(t)
	origPath := rosterPath
	defer func() { rosterPath = origPath }()
	rosterPath = "team.yaml"

	var calls []string
	LoadRoster = func(path string) error {
		calls = append(calls, path)
		return nil
	}

	for i := 0; i < 3; i++ {
		if _, err := requireEngine(); err != nil {
			t.Fatalf("requireEngine() error = %v", err)
		}
	}
	if len(calls) != 1 || calls[0] != "team.yaml" {
		t.Errorf("LoadRoster calls = %v, want exactly one with team.yaml", calls)
	}
}

func TestRequireEngine_LoadErrorIsRetried(t *testing.T) {
	useDemoEngine(t)

	failures := 1
	LoadRoster = func(string) error {
		if failures > 0 {
			failures--
			return errors.New("loading roster: boom")
		}
		return nil
	}

	if _, err := requireEngine(); err == nil {
		t.Fatal("expected load error")
	}
	if _, err := requireEngine(); err != nil {
		t.Errorf("second requireEngine() error = %v, want nil", err)
	}
}
