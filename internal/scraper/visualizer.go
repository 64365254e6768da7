package scraper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tesh254/wikimd/internal/logger"
	"github.com/tesh254/wikimd/internal/markdown"
)

// snippets renders search snippets, which arrive as HTML fragments.
var snippets = markdown.New(&markdown.Config{})

func (s *Scraper) displayInitBanner() {
	if s.Config.Verbose {
		green := color.New(color.FgGreen).SprintFunc()
		banner := "==============================================================================\n"
		banner += green("       🌐 Wiki Client Initialized 🌐\n")
		banner += "==============================================================================\n"
		banner += fmt.Sprintf("Search API: %s\n", s.Config.APIURL)
		banner += fmt.Sprintf("Wiki URL: %s\n", s.Config.WikiURL)
		banner += "Configuration:\n"
		banner += fmt.Sprintf("  - Timeout: %s\n", s.Config.Timeout)
		banner += fmt.Sprintf("  - Request Delay: %s\n", s.Config.RequestDelay)
		banner += fmt.Sprintf("  - Max Concurrent: %d\n", s.Config.MaxConcurrent)
		banner += "=============================================================================="
		fmt.Fprintln(logger.Output(), banner)
	}
}

func (s *Scraper) displaySearchResults(query string, results []SearchResult) {
	if s.Config.Verbose {
		t := table.NewWriter()
		t.SetOutputMirror(logger.Output())
		t.SetStyle(table.StyleLight)
		t.SetTitle("Results for " + strconv.Quote(query))
		t.AppendHeader(table.Row{"#", "Title", "Words", "Snippet"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 2, Align: text.AlignLeft, WidthMax: 40},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignLeft, WidthMax: 60},
		})

		for i, r := range results {
			snippet, err := snippets.Convert(r.Snippet)
			if err != nil {
				snippet = r.Snippet
			}
			t.AppendRow(table.Row{i + 1, r.Title, r.WordCount, snippet})
		}
		t.Render()
	}
}

func (s *Scraper) displayMetadata(a *Article) {
	if s.Config.Verbose {
		t := table.NewWriter()
		t.SetOutputMirror(logger.Output())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, WidthMax: 20},
			{Number: 2, Align: text.AlignLeft, WidthMax: 80},
		})

		t.AppendRow(table.Row{"URL", a.URL})
		t.AppendRow(table.Row{"Title", a.Metadata.Title})
		t.AppendRow(table.Row{"Description", a.Metadata.Description})
		t.AppendSeparator()
		t.Render()
	}
}

func (s *Scraper) displayError(err error) {
	if s.Config.Verbose {
		red := color.New(color.FgRed).SprintFunc()
		box := "┌────── " + red("⚠ Error") + " ──────┐\n"
		box += fmt.Sprintf("│ %-20s │\n", err.Error())
		box += "└─────────────────────┘"
		fmt.Fprintln(logger.Output(), box)
	}
}

// startSpinner animates message until the returned channel is closed. It
// is a no-op outside verbose mode.
func (s *Scraper) startSpinner(message string) chan struct{} {
	done := make(chan struct{})
	if s.Config.Verbose {
		out := logger.Output()
		go func() {
			spinner := `|/-\`
			i := 0
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					fmt.Fprintf(out, "\r%s... [%s]", color.YellowString("%s", message), string(spinner[i]))
					i = (i + 1) % len(spinner)
				case <-done:
					fmt.Fprintf(out, "\r%s... [%s]\n", color.GreenString("%s", message), "✔")
					return
				}
			}
		}()
	}
	return done
}
