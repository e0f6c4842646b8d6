// Command apicompat fails when a revised swagger.yaml breaks clients of a base one.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	basePath := flag.String("base", "", "base swagger.yaml path")
	revisionPath := flag.String("revision", "docs/swagger.yaml", "revision swagger.yaml path")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := loadContract(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadContract(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, i := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", i)
		}
		os.Exit(1)
	}

	fmt.Println("api compatibility check passed")
}

func loadContract(path string) (contract, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseContract(raw)
}
