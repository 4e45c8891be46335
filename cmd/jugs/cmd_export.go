package main

import (
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/replay"
	"github.com/spf13/cobra"
)

func runExport(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetSession(exportSession)
	if err != nil {
		return err
	}
	f, err := fixtureFromRecord(rec, exportDescription)
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(exportOut, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d steps from session %s to %s\n", len(f.Requests), rec.SessionID, exportOut)
	return nil
}
