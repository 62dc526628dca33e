// Demo client: builds a three-gene operon model, submits it to a
// running simulation server, waits for the run to finish, and prints
// the sampled species counts.
//
// Start the server first:
//
//	POLYSIM_ADDR=:8080 go run ./cmd/polysim-server
//	go run ./cmd/demo -server http://localhost:8080
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stochsim/polysim/pkg/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "simulation server base URL")
	flag.Parse()

	model := client.NewModel("three-gene-operon").
		Genome(client.NewGenome("plasmid", 450).
			Promoter(client.NewPromoter("pLac", 1, 10).Binding("rnapol", 2e8)).
			Gene("geneA", 26, 120, 11, 25, 1e7).
			Gene("geneB", 146, 240, 131, 145, 1e7).
			Gene("geneC", 266, 360, 251, 265, 1e7).
			Terminator(client.NewTerminator("t1", 380, 385).Efficiency("rnapol", 1.0))).
		Polymerase("rnapol", 10, 40, 10).
		Polymerase("ribosome", 10, 30, 100).
		Seed(34).
		RunFor(240, 5).
		Build()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := client.NewClient(*serverURL)
	runID, err := c.StartRun(ctx, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting run: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("started run %s\n", runID)

	status, err := c.WaitForRun(ctx, runID, 250*time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "waiting for run: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("run %s: %s at t=%.1f with %d samples\n", runID, status.Status, status.Time, status.Samples)

	report, err := c.Report(ctx, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetching report: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(report)
}
