// Command ecgdigit digitizes a 12-lead ECG sheet image and prints the
// per-lead feature table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-ecg-digitizer/internal/analyzer"
	"go-ecg-digitizer/internal/logger"
	"go-ecg-digitizer/internal/waveform"
	"go-ecg-digitizer/pkg/export"
	"go-ecg-digitizer/pkg/models"
)

func main() {
	imagePath := flag.String("image", "", "Path to ECG sheet image (PNG, JPEG, BMP or TIFF)")
	csvPath := flag.String("csv", "", "Write the feature table to this CSV file")
	waveformDir := flag.String("waveforms", "", "Write one time/amplitude CSV per lead into this directory")
	fs := flag.Float64("fs", analyzer.DefaultSamplingRate, "Sampling rate in samples per second")
	prominence := flag.Float64("prominence", waveform.DefaultBaseProminence, "Minimum peak prominence in pixels")
	smoothing := flag.Bool("smoothing", true, "Apply Savitzky-Golay smoothing to each lead")
	gridMask := flag.Bool("grid-mask", false, "Trace leads from the grid-suppressed ink mask")
	timeout := flag.Duration("timeout", time.Minute, "Digitization timeout")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: ecgdigit -image <path> [-csv out.csv] [-waveforms dir] [-fs 500] [-prominence 10] [-smoothing=true] [-grid-mask]")
		os.Exit(1)
	}

	logger.Logger.SetLevel(logger.ParseLevel(*logLevel))

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	opts := analyzer.DefaultOptions().
		WithSamplingRate(*fs).
		WithBaseProminence(*prominence).
		WithSmoothing(*smoothing).
		WithGridMask(*gridMask).
		WithWaveforms(*waveformDir != "")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	table, err := analyzer.NewDigitizer().Digitize(ctx, data, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Digitization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %s: %dx%d pixels, grid coverage %.1f%%\n",
		filepath.Base(*imagePath), table.Width, table.Height, table.GridCoverage*100)
	for _, w := range table.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	fmt.Println()
	printTable(table.Records)
	fmt.Printf("\nProcessed in %.3fs\n", table.ProcessingTimeSec)

	if *csvPath != "" {
		if err := writeFile(*csvPath, func(f *os.File) error { return export.WriteFeatureCSV(f, table.Records) }); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results saved to %s\n", *csvPath)
	}

	if *waveformDir != "" {
		if err := os.MkdirAll(*waveformDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create waveform directory: %v\n", err)
			os.Exit(1)
		}
		for _, wf := range table.Waveforms {
			path := filepath.Join(*waveformDir, fmt.Sprintf("lead_%s.csv", wf.Lead))
			if err := writeFile(path, func(f *os.File) error { return export.WriteWaveformCSV(f, wf) }); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write waveform %s: %v\n", wf.Lead, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Waveforms saved to %s\n", *waveformDir)
	}
}

func printTable(records []models.FeatureRecord) {
	fmt.Printf("%-5s %10s %8s %8s %8s %8s %6s\n", "Lead", "HR (BPM)", "RR (s)", "QRS (s)", "QT (s)", "PR (s)", "Peaks")
	for _, r := range records {
		fmt.Printf("%-5s %10s %8s %8s %8s %8s %6d\n",
			r.Lead,
			cell(r.HeartRate, 1),
			cell(r.RRInterval, 3),
			cell(r.QRSDuration, 3),
			cell(r.QTInterval, 3),
			cell(r.PRInterval, 3),
			r.DetectedPeaks)
	}
}

func cell(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
