// Command vrank is a thin interactive front end over the ranking engine: it
// loads the index files, reads queries from stdin, and prints ranked results.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rsrini-dev/vectorrank/internal/index"
	"github.com/rsrini-dev/vectorrank/internal/search/executor"
	"github.com/rsrini-dev/vectorrank/internal/weighting"
	"github.com/rsrini-dev/vectorrank/pkg/config"
	"github.com/rsrini-dev/vectorrank/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup("error", "text")

	store, err := index.Load(cfg.Index.DocumentsFile, cfg.Index.TermsFile, cfg.Index.PostingsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load index: %v\n", err)
		os.Exit(1)
	}
	exec := executor.New(store, weighting.New(store))

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Search query >> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		result, err := exec.Execute(ctx, scanner.Text(), 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
			continue
		}
		for _, term := range result.UnknownTerms {
			fmt.Printf("Ignoring %q: not a dictionary word\n", term)
		}
		switch result.Outcome {
		case executor.OutcomeNoQueryTerms:
			fmt.Println("No query terms.")
		case executor.OutcomeNoMatch:
			fmt.Println("No document matched every query term.")
		default:
			fmt.Println("Score: filename")
			for _, doc := range result.Results {
				fmt.Printf("%g: %s\n", doc.Score, doc.Document)
			}
		}
	}
}
