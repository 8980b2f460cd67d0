package main

import (
	"fmt"
	"log"
	"os"

	"github.com/transitbase/transitbase_core/internal/app"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: transitbase [make_base|process_requests]")
	os.Exit(5)
}

func main() {
	if len(os.Args) != 2 {
		usage()
	}
	switch os.Args[1] {
	case "make_base":
		if err := app.MakeBase(os.Stdin); err != nil {
			log.Fatalf("make_base: %v", err)
		}
	case "process_requests":
		if err := app.ProcessRequests(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("process_requests: %v", err)
		}
	default:
		usage()
	}
}
