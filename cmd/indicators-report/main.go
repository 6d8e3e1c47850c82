// Command indicators-report prints per-(year, source) non-null metric counts
// from the indicator store, the quick operational check that an ingestion
// pass extracted what it should have. With -csv it also dumps every record to
// a spreadsheet-friendly file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"insurstat/internal/config"
	"insurstat/internal/exporter"
	"insurstat/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	csvPath := flag.String("csv", "", "also export all records to this CSV file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Paths.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	coverage, err := st.MetricCoverage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metric coverage: %v\n", err)
		os.Exit(1)
	}
	if len(coverage) == 0 {
		fmt.Println("no indicator data found")
		return
	}

	metrics := store.KnownMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "year\tsource\trows")
	for _, m := range metrics {
		fmt.Fprintf(w, "\t%s", m)
	}
	fmt.Fprintln(w)
	for _, cov := range coverage {
		fmt.Fprintf(w, "%d\t%s\t%d", cov.Year, cov.Source, cov.Rows)
		for _, m := range metrics {
			fmt.Fprintf(w, "\t%d", cov.Metrics[m])
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()

	if *csvPath != "" {
		records, err := st.Records(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list records: %v\n", err)
			os.Exit(1)
		}
		names, err := st.InsurerNames(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list insurers: %v\n", err)
			os.Exit(1)
		}
		if err := exporter.WriteIndicatorsCSV(*csvPath, records, names); err != nil {
			fmt.Fprintf(os.Stderr, "export csv: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("exported %d records to %s\n", len(records), *csvPath)
	}
}
