// Command tablegen converts a trigram transition table between its JSON and
// msgpack forms. The output format follows the output file extension.
//
//	go run ./cmd/tablegen -input data/transitions.json -output data/transitions.msgpack
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/internal/logger"
	"github.com/cognicore/keyphrase/pkg/keyphrase/transition"
)

func main() {
	input := flag.String("input", "", "Transition table, .json or .msgpack (required)")
	output := flag.String("output", "", "Output path, .json or .msgpack (required)")
	debug := flag.Bool("d", false, "Debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	l := logger.New("tablegen")

	if *input == "" || *output == "" {
		l.Fatal("usage: tablegen -input <file> -output <file>")
	}

	stats, err := convert(*input, *output)
	if err != nil {
		l.Fatal("convert", "err", err)
	}
	l.Info("table written", "output", *output, "tags", stats.Tags, "entries", stats.Entries)
}

// convert reads the table at in and writes it to out.
func convert(in, out string) (transition.Stats, error) {
	t, err := transition.Load(in)
	if err != nil {
		return transition.Stats{}, err
	}

	var write func(*transition.Table, *bufio.Writer) error
	switch strings.ToLower(filepath.Ext(out)) {
	case ".json":
		write = func(t *transition.Table, w *bufio.Writer) error { return t.WriteJSON(w) }
	case ".msgpack", ".mpk":
		write = func(t *transition.Table, w *bufio.Writer) error { return t.WriteMsgpack(w) }
	default:
		return transition.Stats{}, fmt.Errorf("unsupported output format %q", out)
	}

	f, err := os.Create(out)
	if err != nil {
		return transition.Stats{}, fmt.Errorf("create output: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := write(t, w); err != nil {
		f.Close()
		return transition.Stats{}, fmt.Errorf("encode %s: %w", out, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return transition.Stats{}, fmt.Errorf("flush %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return transition.Stats{}, fmt.Errorf("close output: %w", err)
	}
	return t.Stats(), nil
}
