// Package main removes build output, coverage profiles and the debug log.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	removeAll("bin")
	if logFile := os.Getenv("KVIKK_LOG_FILE"); logFile != "" {
		removeFile(logFile)
	}
	for _, pattern := range []string{"coverage*", "*.out", "*.test", "*.coverprofile"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			_, _ = fmt.Printf("❌ Failed to glob pattern %s: %v\n", pattern, err)
			continue
		}
		for _, match := range matches {
			removeFile(match)
		}
	}
}

func removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		_, _ = fmt.Printf("❌ Failed to remove dir %s: %v\n", dir, err)
		return
	}
	_, _ = fmt.Printf("✅ Removed dir %s\n", dir)
}

func removeFile(file string) {
	err := os.Remove(file)
	switch {
	case err == nil:
		_, _ = fmt.Printf("✅ Removed file %s\n", file)
	case !os.IsNotExist(err):
		_, _ = fmt.Printf("❌ Failed to remove file %s: %v\n", file, err)
	}
}
