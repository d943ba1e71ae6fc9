// Package main provides a performance benchmarking tool for the burndown CLI.
// It generates synthetic burndown documents of increasing size, serves them over
// a local HTTP server and measures execution times of each command,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - burndown binary installed and available in PATH
//
// Usage: go run benchmark/main.go [output-dir]
//
//	output-dir: Directory receiving the generated documents and the CSV results
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Document    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// DocumentSize describes one synthetic burndown document.
type DocumentSize struct {
	Name   string
	Envs   int
	Points int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	OutputDir   string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Now         string
	Commands    []string
	Sizes       []DocumentSize
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		OutputDir:   os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Now:         "2025-01-01",
		Commands:    []string{"progress", "series", "check"},
		Sizes: []DocumentSize{
			{Name: "small", Envs: 4, Points: 30},
			{Name: "medium", Envs: 20, Points: 365},
			{Name: "large", Envs: 100, Points: 1460},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	baseURL, stop, err := serveDocuments(config)
	if err != nil {
		fmt.Printf("Failed to serve documents: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("burndown", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config, baseURL)

	if err := saveResults(config.OutputDir, results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the burndown binary exists and the output directory is usable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("burndown"); err != nil {
		return fmt.Errorf("burndown binary not found in PATH")
	}
	return os.MkdirAll(config.OutputDir, 0o755)
}

// generateDocument writes a synthetic document with linearly decreasing backlogs.
func generateDocument(size DocumentSize, path string) error {
	rng := rand.New(rand.NewPCG(uint64(size.Envs), uint64(size.Points)))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	envs := make(map[string]any, size.Envs)
	for e := range size.Envs {
		spaTotal := 50 + rng.IntN(500)
		msTotal := 20 + rng.IntN(200)
		spa := make([]map[string]any, 0, size.Points)
		ms := make([]map[string]any, 0, size.Points)
		for p := range size.Points {
			day := start.AddDate(0, 0, p).Format(time.DateOnly)
			frac := 1 - float64(p)/float64(size.Points)
			spa = append(spa, map[string]any{"x": day, "y": int(float64(spaTotal) * frac), "total": spaTotal})
			ms = append(ms, map[string]any{"x": day, "y": int(float64(msTotal) * frac), "total": msTotal})
		}
		envs[fmt.Sprintf("env-%03d", e)] = map[string]any{
			"target": start.AddDate(0, 0, size.Points+rng.IntN(60)-30).Format(time.DateOnly),
			"series": []map[string]any{
				{"key": "spa.actual", "points": spa},
				{"key": "microservice.actual", "points": ms},
			},
		}
	}

	data, err := json.Marshal(map[string]any{"environments": envs})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// serveDocuments generates every document and serves the directory over HTTP so
// that the source cache takes part in the measurements.
func serveDocuments(config BenchmarkConfig) (string, func(), error) {
	docDir := filepath.Join(config.OutputDir, "documents")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return "", nil, err
	}
	for _, size := range config.Sizes {
		path := filepath.Join(docDir, size.Name+".json")
		if err := generateDocument(size, path); err != nil {
			return "", nil, fmt.Errorf("generate %s: %w", size.Name, err)
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: http.FileServer(http.Dir(docDir)), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Warning: document server stopped: %v\n", err)
		}
	}()
	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}

// runBenchmarks executes all benchmark tests across configured document sizes
func runBenchmarks(config BenchmarkConfig, baseURL string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d documents, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.Sizes {
		fmt.Printf("Benchmarking %s (%d environments x %d points)\n", size.Name, size.Envs, size.Points)
		source := fmt.Sprintf("%s/%s.json", baseURL, size.Name)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, size.Name, source, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, doc, source, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, doc)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, source, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Document:    doc,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a burndown command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, source, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, source, "--now", config.Now, "--output", "json", "--cache-backend", cacheBackend}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("burndown", args...)

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if isSuccess(err, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess accepts a clean exit, or the failing gate status of the check command.
func isSuccess(err error, command string) bool {
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	return command == "check" && errors.As(err, &exitErr) && exitErr.ExitCode() == 2
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(outputDir string, results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("burndown_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"document", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Document, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Document, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
