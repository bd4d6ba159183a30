package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestDeriveVersion_KeepsExplicit(t *testing.T) {
	if got := deriveVersion("1.2.3"); got != "1.2.3" {
		t.Errorf("deriveVersion(1.2.3) = %q", got)
	}
}

func TestDeriveVersion_FromModule(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
	}
	if got := deriveVersion(defaultVersion); got != "v0.4.0" {
		t.Errorf("deriveVersion = %q, want v0.4.0", got)
	}
}

func TestDeriveVersion_FromVCS(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}
	if got := deriveVersion(defaultVersion); got != "devel+0123456789ab-dirty" {
		t.Errorf("deriveVersion = %q", got)
	}
}

func TestDeriveVersion_NoBuildInfo(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	if got := deriveVersion(defaultVersion); got != defaultVersion {
		t.Errorf("deriveVersion = %q, want %q", got, defaultVersion)
	}
}

func TestInfoAndMap(t *testing.T) {
	if !strings.HasPrefix(Info(), "pollnow ") {
		t.Errorf("Info() = %q, want pollnow prefix", Info())
	}
	m := Map()
	if m["version"] != Short() {
		t.Errorf("Map()[version] = %q, want %q", m["version"], Short())
	}
}
