// Package main implements the usagemig CLI tool.
// It migrates the usage field across message documents in batches.
package main

import "github.com/snikjou/usagemig/cmd/usagemig/cmd"

func main() {
	cmd.Execute()
}
