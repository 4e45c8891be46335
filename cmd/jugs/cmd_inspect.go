package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/logging"
	"github.com/spf13/cobra"
)

type listRow struct {
	SessionID  string `json:"session_id"`
	Capacities []int  `json:"capacities"`
	Target     int    `json:"target"`
	Steps      int    `json:"steps"`
	Solved     bool   `json:"solved"`
	UpdatedAt  string `json:"updated_at"`
}

type detailOutput struct {
	listRow
	Entries []archive.EntryRecord      `json:"entries"`
	Events  []logging.ProvenanceEntry `json:"events,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if inspectSession != "" {
		return runDetailMode(w, store, inspectSession, inspectEvents, inspectJSON)
	}
	return runListMode(w, store, inspectLast, inspectJSON)
}

// #region list-mode
func runListMode(w io.Writer, store *archive.Store, last int, jsonOut bool) error {
	records, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no sessions found")
		return nil
	}

	// store returns newest first; show chronologically
	slices.Reverse(records)
	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[i] = toListRow(rec)
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	fmt.Fprintf(w, "%-36s  %-12s  %6s  %5s  %-6s  %s\n", "Session", "Jars", "Target", "Steps", "Solved", "Updated")
	fmt.Fprintf(w, "%-36s+-%-12s+-%6s+-%5s+-%-6s+-%s\n",
		"------------------------------------", "------------", "------", "-----", "------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %-12s  %6d  %5d  %-6t  %s\n",
			r.SessionID, fmt.Sprint(r.Capacities), r.Target, r.Steps, r.Solved, r.UpdatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode
func runDetailMode(w io.Writer, store *archive.Store, id string, withEvents, jsonOut bool) error {
	rec, err := store.GetSession(id)
	if err != nil {
		return err
	}
	out := detailOutput{listRow: toListRow(rec), Entries: rec.Entries}
	if withEvents {
		if out.Events, err = logging.ListEvents(store.DB(), id); err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(w, out)
	}
	fmt.Fprintf(w, "Session %s\n  jars %v, target %d, solved %t\n\n", rec.SessionID, rec.Capacities, rec.Target, rec.Solved)
	for _, e := range rec.Entries {
		fmt.Fprintf(w, "%3d  %-16s  %s\n", e.Seq, formatState(rec.Capacities, e.Amounts), e.Description)
	}
	if withEvents {
		fmt.Fprintln(w, "\nEvents:")
		for _, e := range out.Events {
			fmt.Fprintf(w, "  %s  %-8s  %s\n", e.CreatedAt.Format("15:04:05.000"), e.EventType, e.Description)
		}
	}
	return nil
}

// #endregion detail-mode

// #region helpers
func toListRow(rec archive.SessionRecord) listRow {
	return listRow{
		SessionID:  rec.SessionID,
		Capacities: rec.Capacities,
		Target:     rec.Target,
		Steps:      rec.EntryCount,
		Solved:     rec.Solved,
		UpdatedAt:  rec.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
