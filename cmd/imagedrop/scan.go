package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imagedrop/internal/domain/intake"
)

var (
	loadedColor  = color.New(color.FgGreen, color.Bold)
	invalidColor = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

type scanRow struct {
	Name    string `json:"name"`
	Archive string `json:"archive,omitempty"`
	Kind    string `json:"kind"`
	Outcome string `json:"outcome"`
	Size    int64  `json:"size"`
	Reason  string `json:"reason,omitempty"`
	DataURL string `json:"data_url,omitempty"`
}

var errScanFailures = errors.New("some files failed to extract")

type dataURLResult struct {
	i   int
	url string
	err error
}

var scanCmd = &cobra.Command{
	Use:   "scan <path>...",
	Short: "Classify local images and zip archives",
	Example: `  imagedrop scan holiday.jpg scans.zip
  imagedrop scan --output json --data-url *.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		withDataURL, _ := cmd.Flags().GetBool("data-url")

		var files []intake.File
		for _, path := range args {
			f, err := intake.OpenDiskFile(path)
			if err != nil {
				return err
			}
			files = append(files, f)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rows, err := scan(ctx, files, withDataURL)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if output == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rows); err != nil {
				return err
			}
		} else {
			renderTable(out, rows)
		}

		for _, r := range rows {
			if r.Outcome == string(intake.OutcomeFailed) {
				return errScanFailures
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("output", "o", "table", "output format: table, json")
	scanCmd.Flags().Bool("data-url", false, "include data URLs of accepted images")
}

func scan(ctx context.Context, files []intake.File, withDataURL bool) ([]scanRow, error) {
	m := intake.NewManager(
		intake.WithPolicy(cfg.Policy()),
		intake.WithEntryConcurrency(cfg.EntryConcurrency),
		intake.WithLogger(log.Logger),
	)
	m.OnDone = func(s intake.Summary) {
		log.Debug("scan finished", "batch_id", s.BatchID, "loaded", s.Loaded, "invalid", s.Invalid, "failed", s.Failed)
	}

	results, err := m.HandleFiles(ctx, files, files).Wait(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]scanRow, len(results))
	urls := make(chan dataURLResult, len(results))
	pending := 0
	for i, r := range results {
		rows[i] = scanRow{
			Name:    r.File.Name(),
			Archive: r.Archive,
			Kind:    string(r.Kind),
			Outcome: string(r.Outcome),
			Size:    r.File.Size(),
		}
		if r.Err != nil {
			rows[i].Reason = r.Err.Error()
		}
		if withDataURL && r.Outcome == intake.OutcomeLoaded {
			pending++
			i := i
			intake.LoadAsDataURL(ctx, r.File, func(url string, err error) {
				urls <- dataURLResult{i: i, url: url, err: err}
			})
		}
	}

	for ; pending > 0; pending-- {
		u := <-urls
		if u.err != nil {
			return nil, u.err
		}
		rows[u.i].DataURL = u.url
	}
	return rows, nil
}

func renderTable(w io.Writer, rows []scanRow) {
	headers := []string{"NAME", "ARCHIVE", "KIND", "OUTCOME", "SIZE", "REASON"}
	widths := make([]int, len(headers))
	cells := make([][]string, len(rows))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for i, r := range rows {
		cells[i] = []string{r.Name, r.Archive, r.Kind, r.Outcome, strconv.FormatInt(r.Size, 10), r.Reason}
		for j, c := range cells[i] {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}

	for i, h := range headers {
		headerColor.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)

	for i, row := range cells {
		for j, c := range row {
			text := fmt.Sprintf("%-*s  ", widths[j], c)
			if j == 3 {
				outcomeColor(rows[i].Outcome).Fprint(w, text)
				continue
			}
			fmt.Fprint(w, text)
		}
		fmt.Fprintln(w)
	}
}

func outcomeColor(outcome string) *color.Color {
	switch intake.Outcome(outcome) {
	case intake.OutcomeLoaded:
		return loadedColor
	case intake.OutcomeInvalid:
		return invalidColor
	default:
		return failedColor
	}
}
