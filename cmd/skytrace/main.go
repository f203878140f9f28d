package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"skycycle/internal/environment"
	"skycycle/internal/trace"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "./data/trace", "directory holding recorded frame traces")
	flag.Parse()

	if err := run(dir, os.Stdout); err != nil {
		log.Fatalf("skytrace: %v", err)
	}
}

func run(dir string, w io.Writer) error {
	files, err := trace.Files(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no trace files in " + dir)
	}
	sum, err := trace.Summarize(files)
	if err != nil {
		return err
	}
	report(w, len(files), sum)
	return nil
}

func report(w io.Writer, files int, sum *trace.Summary) {
	fmt.Fprintf(w, "files:   %d\n", files)
	fmt.Fprintf(w, "records: %d\n", sum.Records)
	fmt.Fprintf(w, "ticks:   %d..%d\n", sum.FirstTick, sum.LastTick)
	fmt.Fprintf(w, "days:    %d..%d (%d rollovers)\n", sum.FirstDay, sum.LastDay, sum.DaysSpanned())

	fmt.Fprintln(w, "phases:")
	for _, p := range environment.Phases() {
		n := sum.Phases[p]
		fmt.Fprintf(w, "  %-8s %6d %5.1f%%\n", p, n, percent(n, sum.Records))
	}

	if len(sum.Windows) == 0 {
		return
	}
	names := make([]string, 0, len(sum.Windows))
	for name := range sum.Windows {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "windows:")
	for _, name := range names {
		n := sum.Windows[name]
		fmt.Fprintf(w, "  %-8s %6d %5.1f%%\n", name, n, percent(n, sum.Records))
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
