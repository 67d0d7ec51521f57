package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	unset := Info{Version: "dev", BuildDate: "unknown", GitCommit: "unknown"}
	stamped := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "4f2c1e9"},
		{Key: "vcs.time", Value: "2026-10-01T09:30:00Z"},
	}

	tests := []struct {
		name string
		info Info
		bi   *debug.BuildInfo
		want Info
	}{
		{
			name: "go install",
			info: unset,
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}, Settings: stamped},
			want: Info{Version: "v0.3.0", BuildDate: "2026-10-01T09:30:00Z", GitCommit: "4f2c1e9"},
		},
		{
			name: "local build",
			info: unset,
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: stamped},
			want: Info{Version: "dev", BuildDate: "2026-10-01T09:30:00Z", GitCommit: "4f2c1e9"},
		},
		{
			name: "no vcs stamps",
			info: unset,
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: unset,
		},
		{
			name: "ldflags win",
			info: Info{Version: "v1.0.0", BuildDate: "2026-09-30", GitCommit: "abc123"},
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}, Settings: stamped},
			want: Info{Version: "v1.0.0", BuildDate: "2026-09-30", GitCommit: "abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromBuildInfo(tt.info, tt.bi); got != tt.want {
				t.Errorf("fromBuildInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	i := Info{Version: "v1.0.0", BuildDate: "2026-09-30", GitCommit: "abc123"}
	if got, want := i.String(), "v1.0.0 (built 2026-09-30, commit abc123)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
