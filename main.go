package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/budgetwiz/cmd/categorize"
	"fjacquet/budgetwiz/cmd/clean"
	"fjacquet/budgetwiz/cmd/report"
	"fjacquet/budgetwiz/cmd/root"
)

func init() {
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(clean.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
