package services

import (
	"fmt"
	"path"
	"path/filepath"
)

// resolveCollisions makes every job's destination root unique. Sources from
// different directories can share a base name and would otherwise land on
// the same path. Each colliding job gets its 1-based source position
// inserted before the extension: "a.jpg" from sources 2 and 3 becomes
// "a_2.jpg" and "a_3.jpg". A suffixed name that is already some other job's
// destination is bumped until it is free. Directories keep dots in their
// names intact.
//
// Returns the number of jobs that were renamed.
func resolveCollisions(jobs []job, destIsDevice bool) int {
	counts := make(map[string]int, len(jobs))
	for _, j := range jobs {
		counts[j.destRoot]++
	}

	taken := make(map[string]bool, len(jobs))
	for dest, n := range counts {
		if n == 1 {
			taken[dest] = true
		}
	}

	renamed := 0
	for i := range jobs {
		dest := jobs[i].destRoot
		if counts[dest] <= 1 {
			continue
		}

		ext := ""
		if jobs[i].plan == nil {
			ext = extension(dest, destIsDevice)
		}
		base := dest[:len(dest)-len(ext)]

		candidate := ""
		for n := i + 1; ; n++ {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
			if !taken[candidate] {
				break
			}
		}
		taken[candidate] = true
		jobs[i].destRoot = candidate
		renamed++
	}
	return renamed
}

func extension(p string, isDevice bool) string {
	if isDevice {
		return path.Ext(p)
	}
	return filepath.Ext(p)
}
