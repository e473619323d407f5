//nolint:gochecknoglobals,dogsled
package test

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var chdirOnce sync.Once

// ConfigTestRootPath - go test runs every package from its own folder. This moves the working
// directory to the module root, once per test binary, so fixtures can be referenced from there.
func ConfigTestRootPath() {
	chdirOnce.Do(func() {
		if err := os.Chdir(RootPath()); err != nil {
			panic(err)
		}
	})
}

// RootPath - absolute path of the module root.
func RootPath() string {
	_, filename, _, _ := runtime.Caller(0)

	return filepath.Join(filepath.Dir(filename), "..")
}
