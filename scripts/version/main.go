// Package main prints the version stamped into release builds: the nearest
// git tag, or "dev" outside a repository.
package main

import (
	"fmt"
	"os/exec"
	"strings"
)

func main() {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		fmt.Print("dev")
		return
	}
	fmt.Print(strings.TrimPrefix(strings.TrimSpace(string(out)), "v"))
}
