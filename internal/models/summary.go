package models

import (
	"fmt"
	"strings"
	"time"
)

// RunSummary is the structured result of a full pipeline run. Printing it is
// the only required observable output of a run.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	Mode            string        `json:"mode"`
	CitiesProcessed int           `json:"cities_processed"`
	CitiesTotal     int           `json:"cities_total"`
	Requests        int           `json:"requests"`
	CreditsUsed     int           `json:"credits_used"`
	APIErrors       int           `json:"api_errors"`
	EventsFound     int           `json:"events_found"`
	EventsParsed    int           `json:"events_parsed"`
	EventsRejected  int           `json:"events_rejected"`
	EnrichAttempts  int           `json:"enrich_attempts"`
	RewriteAttempts int           `json:"rewrite_attempts"`
	UpsertsOK       int           `json:"upserts_ok"`
	UpsertsFailed   int           `json:"upserts_failed"`
	Runtime         time.Duration `json:"runtime"`
}

// String renders the summary as the human-readable block printed at the end
// of a run.
func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline Run Summary (%s, run %s)\n", s.Mode, s.RunID)
	fmt.Fprintf(&b, "--------------------------------------\n")
	fmt.Fprintf(&b, "Cities Processed:     %d/%d\n", s.CitiesProcessed, s.CitiesTotal)
	fmt.Fprintf(&b, "API Requests:         %d\n", s.Requests)
	fmt.Fprintf(&b, "API Credits Used:     %d\n", s.CreditsUsed)
	fmt.Fprintf(&b, "API Errors:           %d\n", s.APIErrors)
	fmt.Fprintf(&b, "Events Found:         %d\n", s.EventsFound)
	fmt.Fprintf(&b, "Events Parsed:        %d\n", s.EventsParsed)
	fmt.Fprintf(&b, "Events Rejected:      %d\n", s.EventsRejected)
	fmt.Fprintf(&b, "Enrichment Attempts:  %d\n", s.EnrichAttempts)
	fmt.Fprintf(&b, "Rewrite Attempts:     %d\n", s.RewriteAttempts)
	fmt.Fprintf(&b, "Upserts OK:           %d\n", s.UpsertsOK)
	fmt.Fprintf(&b, "Upserts Failed:       %d\n", s.UpsertsFailed)
	fmt.Fprintf(&b, "Runtime:              %s\n", s.Runtime.Round(time.Second))
	fmt.Fprintf(&b, "--------------------------------------")
	return b.String()
}
