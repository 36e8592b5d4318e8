package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klyr/fragpath/internal/logging"
)

const topN = 5

type Summary struct {
	Total      int            `json:"total"`
	Resolves   int            `json:"resolves"`
	Relatives  int            `json:"relatives"`
	TempFiles  int            `json:"temp_files"`
	Absolute   int            `json:"absolute"`
	Relative   int            `json:"relative"`
	Empty      int            `json:"empty"`
	Errors     int            `json:"errors"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	TopResults []CountItem    `json:"top_results"`
	TopClients []CountItem    `json:"top_clients"`
	Latency    LatencySummary `json:"latency"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type LatencySummary struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type Reader struct {
	Since time.Time
}

func (r *Reader) Read(path string) ([]logging.Resolution, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return r.ReadFrom(file)
}

func (r *Reader) ReadFrom(in io.Reader) ([]logging.Resolution, error) {
	var resolutions []logging.Resolution
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var res logging.Resolution
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			return nil, err
		}
		if !r.Since.IsZero() && res.Timestamp.Before(r.Since) {
			continue
		}
		resolutions = append(resolutions, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return resolutions, nil
}

func Summarize(resolutions []logging.Resolution) Summary {
	var summary Summary
	if len(resolutions) == 0 {
		return summary
	}

	summary.Start = resolutions[0].Timestamp
	summary.End = resolutions[0].Timestamp

	resultCounts := map[string]int{}
	clientCounts := map[string]int{}
	latencies := make([]int64, 0, len(resolutions))

	for _, res := range resolutions {
		summary.Total++
		if res.Timestamp.Before(summary.Start) {
			summary.Start = res.Timestamp
		}
		if res.Timestamp.After(summary.End) {
			summary.End = res.Timestamp
		}

		switch res.Operation {
		case logging.OpResolve:
			summary.Resolves++
		case logging.OpRelative:
			summary.Relatives++
		case logging.OpTempFile:
			summary.TempFiles++
		}

		switch res.Kind {
		case "absolute":
			summary.Absolute++
		case "relative":
			summary.Relative++
		case "empty":
			summary.Empty++
		}

		if res.Error != "" {
			summary.Errors++
		} else if res.Operation != logging.OpTempFile {
			resultCounts[res.Result]++
		}
		if res.ClientIP != "" {
			clientCounts[res.ClientIP]++
		}

		latencies = append(latencies, res.DurationMS)
	}

	summary.TopResults = topCounts(resultCounts, topN)
	summary.TopClients = topCounts(clientCounts, topN)
	summary.Latency = latencySummary(latencies)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func latencySummary(values []int64) LatencySummary {
	if len(values) == 0 {
		return LatencySummary{}
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencySummary{
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
	}
}

func percentile(values []int64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	idx := int(float64(len(values)-1) * p)
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return float64(values[idx])
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "Operations resolve/relative/tempfile: %d/%d/%d\n", summary.Resolves, summary.Relatives, summary.TempFiles)
	fmt.Fprintf(&b, "Results absolute/relative/empty: %d/%d/%d\n", summary.Absolute, summary.Relative, summary.Empty)
	fmt.Fprintf(&b, "Errors: %d\n", summary.Errors)
	fmt.Fprintf(&b, "Latency p50/p95/p99 (ms): %.0f/%.0f/%.0f\n", summary.Latency.P50, summary.Latency.P95, summary.Latency.P99)

	writeCounts(&b, "Top results", summary.TopResults)
	writeCounts(&b, "Top clients", summary.TopClients)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# fragpath Report\n\n")
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "- Resolve: %d\n", summary.Resolves)
	fmt.Fprintf(&b, "- Relative: %d\n", summary.Relatives)
	fmt.Fprintf(&b, "- Temp files: %d\n", summary.TempFiles)
	fmt.Fprintf(&b, "- Errors: %d\n", summary.Errors)
	fmt.Fprintf(&b, "- Latency p50/p95/p99 (ms): %.0f/%.0f/%.0f\n\n", summary.Latency.P50, summary.Latency.P95, summary.Latency.P99)

	writeCountsMarkdown(&b, "Top results", summary.TopResults)
	writeCountsMarkdown(&b, "Top clients", summary.TopClients)

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %q: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- `%s`: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}

// WriteOutput writes content to path, or to w when path is empty.
func WriteOutput(w io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := io.Copy(w, bytes.NewReader(content))
		return err
	}
	return os.WriteFile(path, content, 0o600)
}
