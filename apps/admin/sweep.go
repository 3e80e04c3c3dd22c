package main

import (
	"context"
	"fmt"
)

// sweep runs the transition sweep once and prints the outcome.
func (cli *commandLine) sweep() error {
	res := cli.studentSvc.RunTransitionSweep(context.Background())
	fmt.Printf("promoted %d student(s)\n", len(res.Succeeded))
	for _, f := range res.Failed {
		fmt.Printf("student %d: %v\n", f.Item, f.Err)
	}
	if res.AllFailed() {
		return fmt.Errorf("sweep failed for all %d student(s)", len(res.Failed))
	}
	return nil
}
