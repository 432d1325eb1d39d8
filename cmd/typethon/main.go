package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shadowCow/typethon-go/runner"
)

func main() {
	debug := false
	var filePath string

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [--debug] <file.ty>\n", os.Args[0])
		os.Exit(1)
	}

	argIdx := 1
	if os.Args[argIdx] == "--debug" {
		debug = true
		argIdx++
	}

	if argIdx >= len(os.Args) {
		fmt.Fprintf(os.Stderr, "Usage: %s [--debug] <file.ty>\n", os.Args[0])
		os.Exit(1)
	}

	filePath = os.Args[argIdx]

	result, err := runner.Run(filePath, os.Stdout, debug)
	if err != nil {
		log.Fatal(err)
	}

	for _, a := range result.Atoms {
		fmt.Println(a)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Category, e.Message)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
