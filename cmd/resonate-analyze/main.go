// ABOUTME: Offline spectral analysis tool
// ABOUTME: Prints the per-slice peak frequency and level of an audio file
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/pkg/analysis"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/resample"
)

var (
	slices  = flag.Int("slices", analysis.DefaultSlicesPerSecond, "Spectral slices per second")
	rate    = flag.Int("rate", 0, "Resample to this rate before analysis (0 keeps the file's rate)")
	asCSV   = flag.Bool("csv", false, "Write CSV instead of a table")
	summary = flag.Bool("summary", false, "Print only the summary")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <audio-file>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.SetOutput(os.Stderr)

	path := flag.Arg(0)
	buf, err := decode.Load(path)
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}

	if *rate > 0 {
		if buf, err = resample.Buffer(buf, *rate); err != nil {
			log.Fatalf("Failed to resample: %v", err)
		}
	}

	result, err := analysis.Analyze(buf, *slices)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if !*summary {
		if *asCSV {
			err = writeCSV(os.Stdout, result)
		} else {
			err = writeTable(os.Stdout, result)
		}
		if err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "%s: %d slices of %v, window %d frames, RMS %.1f\n",
		path, result.Len(), result.SliceDuration, result.WindowSize, analysis.RMS(buf))
}

func writeTable(w io.Writer, result *analysis.Result) error {
	if _, err := fmt.Fprintf(w, "%6s %9s %10s %6s\n", "slice", "time", "peak", "level"); err != nil {
		return err
	}
	for i, peak := range result.Peaks {
		at := result.SliceDuration * time.Duration(i)
		if _, err := fmt.Fprintf(w, "%6d %8.3fs %7.1f Hz %6.3f\n", i, at.Seconds(), peak, result.Levels[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, result *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"slice", "seconds", "peak_hz", "level"}); err != nil {
		return err
	}
	for i, peak := range result.Peaks {
		at := result.SliceDuration * time.Duration(i)
		record := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
			strconv.FormatFloat(peak, 'f', 1, 64),
			strconv.FormatFloat(result.Levels[i], 'f', 3, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
