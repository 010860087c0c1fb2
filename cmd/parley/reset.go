package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/serve"
)

func resetCmd(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	dbPath := fs.String("db", parley.DefaultDBPath(), "SQLite database path")
	yes := fs.Bool("yes", false, "Skip confirmation prompt")

	fs.Usage = func() {
		fmt.Println(`Usage: parley reset [options]

Delete all recorded turns and session events. Live sessions of a running
server are not affected.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  parley reset
  parley reset --yes
  parley reset --db /path/to/custom.db`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	dbAbs, _ := filepath.Abs(*dbPath)
	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Printf("No database at %s. Nothing to reset.\n", dbAbs)
		return
	}

	store, err := serve.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %s: %v\n", dbAbs, err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	type tableCount struct {
		label string
		table string
	}
	tables := []tableCount{
		{"Turns", "turns"},
		{"Session events", "events"},
	}

	fmt.Println("The following data will be deleted:")
	fmt.Println()
	totalRows := 0
	for _, tc := range tables {
		count, _ := store.CountTable(tc.table)
		totalRows += count
		if count > 0 {
			fmt.Printf("  %-16s %d records\n", tc.label, count)
		}
	}
	fmt.Println()
	fmt.Printf("  Database: %s\n", dbAbs)
	fmt.Println()

	if totalRows == 0 {
		fmt.Println("Nothing to reset, already clean.")
		return
	}

	// Confirm unless --yes.
	if !*yes {
		fmt.Print("Are you sure you want to delete all of the above? [y/N] ")
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Scan()
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
		fmt.Println()
	}

	for _, tc := range tables {
		if err := store.DeleteAllFromTable(tc.table); err != nil {
			fmt.Fprintf(os.Stderr, "  Error clearing %s: %v\n", tc.label, err)
		} else {
			fmt.Printf("  Cleared %s\n", tc.label)
		}
	}
	store.Vacuum()

	fmt.Println()
	fmt.Println("Reset complete.")
}
