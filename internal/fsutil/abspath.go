package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// AbsPathsInLine rewrites every whitespace-separated token of a shell command
// that names an existing file or directory into its absolute path. Tokens
// that do not resolve to anything on disk are left untouched, so ordinary
// flags and arguments pass through unchanged.
//
// For example "script.py in/a.txt -v" becomes
// "/proj/script.py /proj/in/a.txt -v" when run from /proj.
func AbsPathsInLine(line string) string {
	pieces := strings.Fields(line)
	for i, piece := range pieces {
		if _, err := os.Stat(piece); err != nil {
			continue
		}
		abs, err := filepath.Abs(piece)
		if err != nil {
			continue
		}
		pieces[i] = abs
	}
	return strings.Join(pieces, " ")
}

// AbsPathsInJoblist applies AbsPathsInLine to every job in the list and
// returns the rewritten copy.
func AbsPathsInJoblist(jobs []string) []string {
	out := make([]string, len(jobs))
	for i, job := range jobs {
		out[i] = AbsPathsInLine(job)
	}
	return out
}
