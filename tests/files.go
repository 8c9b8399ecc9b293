package tests

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// CPMPrograms lists the 8080 exerciser programs, CP/M .COM executables
// reporting through BDOS calls.
var CPMPrograms = []string{
	"TST8080.COM",
	"8080PRE.COM",
	"CPUTEST.COM",
	"8080EXM.COM",
}

// download all CP/M exercisers into dest dir.
func downloadCPMPrograms(tb testing.TB, dest string) {
	const urlfmt = `https://raw.githubusercontent.com/superzazu/8080/master/cpu_tests/%s`

	tempdir, err := os.MkdirTemp("", "8080.cpu.tests.*")
	if err != nil {
		tb.Fatal(err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, name := range CPMPrograms {
		url := fmt.Sprintf(urlfmt, name)

		g.Go(func() error {
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("GET %s: %s", url, resp.Status)
			}

			f, err := os.Create(filepath.Join(tempdir, name))
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err := io.Copy(f, resp.Body); err != nil {
				return err
			}

			tb.Log("downloaded", url, "to", f.Name())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		os.RemoveAll(tempdir)
		// No network access, or the files moved.
		tb.Skipf("failed to download all files: %s", err)
	}

	if err := os.Rename(tempdir, dest); err != nil {
		tb.Fatal(err)
	}

	tb.Log("renaming", tempdir, "to", dest)
}

var cpmDir = sync.OnceValues(func() (string, bool) {
	_, b, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(b), "8080.cpu.tests")
	_, err := os.Stat(dir)
	return dir, err == nil
})

// CPMProgramsPath returns the directory holding the CP/M exercisers,
// downloading them on first use. The test is skipped if they can't be
// downloaded.
func CPMProgramsPath(tb testing.TB) string {
	dir, ok := cpmDir()
	if !ok {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			tb.Log("8080.cpu.tests directory not found, downloading it...")
			downloadCPMPrograms(tb, dir)
			tb.Log("8080 cpu tests downloaded in", dir)
		}
	}
	return dir
}
