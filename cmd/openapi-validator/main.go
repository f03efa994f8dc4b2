package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/openapi-validator/internal/cli"
)

func main() {
	err := cli.Execute()
	switch {
	case err == nil:
		return
	case errors.Is(err, cli.ErrChecksFailed):
		// results were already printed
		os.Exit(1)
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
