//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// run invokes the built CLI binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Graph builds the knowledge graph from the corpus chunks.
func Graph() error {
	if err := Build(); err != nil {
		return err
	}
	fmt.Println("[graph] Building the knowledge graph.")
	return run("build")
}

// Ingest loads the corpus chunks into the full-text chunk store.
func Ingest() error {
	if err := Build(); err != nil {
		return err
	}
	fmt.Println("[chunks] Ingesting corpus chunks into the store.")
	return run("chunks", "store")
}

// Validate re-checks the persisted graph for structural problems.
func Validate() error {
	if err := Build(); err != nil {
		return err
	}
	return run("validate")
}
