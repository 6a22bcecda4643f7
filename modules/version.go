package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// Application info - centralized
const (
	AppName        = "procsup"
	AppVersion     = "0.1.0"
	AppDescription = "Child process supervisor shell"
)

var (
	buildHash     string
	buildHashOnce sync.Once
)

// BuildHash identifies the running binary. It is the VCS revision stamped by
// the Go toolchain when available, otherwise YYMMDD-xxxxxxxx from the
// executable's mtime and content hash.
func BuildHash() string {
	buildHashOnce.Do(func() {
		buildHash = computeBuildHash()
	})
	return buildHash
}

func computeBuildHash() string {
	if rev := vcsRevision(); rev != "" {
		return rev
	}
	return binaryHash()
}

// vcsRevision returns the short commit the binary was built from, suffixed
// with "-dirty" for modified trees
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	var revision string
	modified := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if len(revision) > 12 {
		revision = revision[:12]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}

func binaryHash() string {
	executable, err := os.Executable()
	if err != nil {
		return "000000-unknown"
	}

	info, err := os.Stat(executable)
	if err != nil {
		return "000000-unknown"
	}
	datePart := info.ModTime().Format("060102")

	f, err := os.Open(executable)
	if err != nil {
		return datePart + "-unknown"
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return datePart + "-unknown"
	}

	return datePart + "-" + hex.EncodeToString(h.Sum(nil))[:8]
}
