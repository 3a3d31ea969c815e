// Package main is the entry point for the kindstack CLI.
//
// kindstack stands up a local observability and automation stack on a Kind
// cluster: kube-prometheus-stack, Loki, Argo Events with a webhook event
// source, an optional locally built controller, and socat bridges that
// expose Grafana and the webhook endpoint on localhost.
//
// Commands: init, up, deploy, down, status.
//
// For detailed usage information, run:
//
//	kindstack --help
package main

import (
	"fmt"
	"os"

	"github.com/kindlab/kindstack/cmd/kindstack/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
