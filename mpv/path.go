// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"os"
	"path/filepath"
	"runtime"
)

// libraryNames returns the file names libmpv is distributed under on goos,
// most specific first.
func libraryNames(goos string) []string {
	switch goos {
	case "windows":
		return []string{"libmpv-2.dll", "mpv-2.dll", "mpv-1.dll"}
	case "darwin":
		return []string{"libmpv.2.dylib", "libmpv.dylib"}
	default:
		return []string{"libmpv.so.2", "libmpv.so.1", "libmpv.so"}
	}
}

// candidatePaths lists the paths Load tries, in order.
//
// An explicit path is used alone. Otherwise copies colocated with the host
// executable are preferred, followed by the bare names so the platform's
// library search order applies.
func candidatePaths(explicit, exeDir, goos string, exists func(string) bool) []string {
	if explicit != "" {
		return []string{explicit}
	}
	names := libraryNames(goos)
	paths := make([]string, 0, 2*len(names))
	if exeDir != "" {
		for _, name := range names {
			p := filepath.Join(exeDir, name)
			if exists(p) {
				paths = append(paths, p)
			}
		}
	}
	return append(paths, names...)
}

// defaultCandidates resolves candidatePaths for the running process.
func defaultCandidates(explicit string) []string {
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return candidatePaths(explicit, exeDir, runtime.GOOS, fileExists)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
