package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via ldflags by GoReleaser
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var resolveOnce sync.Once

// resolve fills unset values from the module build info, which is present
// when installed with "go install github.com/dperalta86/chameleondb/cmd/chameleon@version".
func resolve() {
	resolveOnce.Do(func() {
		if Version != "dev" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				Commit = setting.Value
				if len(Commit) > 7 {
					Commit = Commit[:7]
				}
			case "vcs.time":
				Date = setting.Value
			}
		}
	})
}

// Info returns formatted version information
func Info() string {
	resolve()
	return fmt.Sprintf("chameleon %s (commit: %s, built: %s) %s",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	resolve()
	return Version
}
