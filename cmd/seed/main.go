// Command seed turns a host directory into a seed file for the default tree.
//
// Usage:
//
//	seed -dir ./content -into C:/Documents -out seed.yaml
//
// The output format follows the -out extension (yaml, yml, toml or json);
// without -out the seed is written to stdout as YAML. Load the result with
// SEED_FILE=seed.yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
)

func main() {
	dir := flag.String("dir", "", "Host directory to import")
	into := flag.String("into", "C:/Documents", "Tree folder the directory is placed under")
	out := flag.String("out", "", "Output file (stdout when empty)")
	maxContent := flag.Int64("max-content", 64<<10, "Largest text file whose content is copied")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seed, err := vfs.ImportDir(ctx, *dir, vfs.ImportOptions{
		Into:       vfs.ParsePath(*into),
		MaxContent: *maxContent,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	// The seed must build before it is worth writing.
	if _, err := seed.Build(); err != nil {
		log.Fatalf("Imported seed is invalid: %v", err)
	}

	format := "yaml"
	if *out != "" {
		format = strings.TrimPrefix(filepath.Ext(*out), ".")
	}
	data, err := encode(seed, format)
	if err != nil {
		log.Fatalf("Encode failed: %v", err)
	}

	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	log.Printf("Wrote %d entries to %s", len(seed.Entries), *out)
}

func encode(seed *vfs.Seed, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(seed)
	case "toml":
		return toml.Marshal(seed)
	case "json":
		return sonic.ConfigStd.MarshalIndent(seed, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
}
