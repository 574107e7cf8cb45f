package main

import (
	"fmt"
	"os"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/service/reconciliation"
	"github.com/capstack/goregistrar/utils/initializer"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/uuid"
	"github.com/urfave/cli"
)

func main() {
	initializer.Initialize()

	app := cli.NewApp()
	app.Name = "reconcile"
	app.Usage = "Detect and repair sign drift between the ledger and the position cache"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "issuer, i", Usage: "issuer id (required)"},
		cli.StringFlag{Name: "security, s", Usage: "limit the pass to one security"},
		cli.BoolFlag{Name: "dry-run, n", Usage: "report anomalies without writing"},
		cli.Int64Flag{Name: "expected-total, t", Usage: "verify the security total against this share count", Value: -1},
		cli.StringFlag{Name: "operator, o", Usage: "operator principal id recorded on audit rows"},
	}
	app.Action = func(c *cli.Context) error {
		issuerID, err := uuid.FromString(c.String("issuer"))
		if err != nil {
			return cli.NewExitError("--issuer is required and must be a uuid", 1)
		}

		var securityID *uuid.UUID
		if s := c.String("security"); s != "" {
			id, err := uuid.FromString(s)
			if err != nil {
				return cli.NewExitError("--security must be a uuid", 1)
			}
			securityID = &id
		}

		var expectedTotal *int64
		if t := c.Int64("expected-total"); t >= 0 {
			if securityID == nil {
				return cli.NewExitError("--expected-total requires --security", 1)
			}
			expectedTotal = &t
		}

		operatorID := uuid.Nil
		if o := c.String("operator"); o != "" {
			if operatorID, err = uuid.FromString(o); err != nil {
				return cli.NewExitError("--operator must be a uuid", 1)
			}
		}

		dryRun := c.Bool("dry-run")

		tx := db.RepeatableRead()
		srv := reconciliation.Service().WithTx(tx)

		report, err := srv.Run(issuerID, securityID, dryRun, expectedTotal, operatorID)
		if err != nil {
			tx.Rollback()
			return cli.NewExitError(err.Error(), 1)
		}

		if dryRun {
			tx.Rollback()
		} else if err := tx.Commit().Error; err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		printReport(report)
		return nil
	}

	app.Run(os.Args)
}

func printReport(report *reconciliation.Report) {
	mode := "applied"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("reconciliation (%s): %d anomalies, %d applied, %d skipped\n",
		mode, len(report.Anomalies), report.AppliedCount, report.SkippedCount)

	for _, a := range report.Anomalies {
		fmt.Printf("  txn %d shareholder %s security %s: stored %s, corrected %s\n",
			a.TransactionID, a.ShareholderID, a.SecurityID,
			humanize.Comma(a.StoredQty), humanize.Comma(a.CorrectedQty))
	}

	for _, d := range report.Deltas {
		fmt.Printf("  position %s/%s: %s -> %s\n",
			d.ShareholderID, d.SecurityID,
			humanize.Comma(d.OldTotal), humanize.Comma(d.NewTotal))
	}

	if report.ExpectedTotal != nil && report.RecomputedTotal != nil {
		fmt.Printf("  security total: expected %s, recomputed %s, verified=%v\n",
			humanize.Comma(*report.ExpectedTotal),
			humanize.Comma(*report.RecomputedTotal), report.Verified)
	} else {
		fmt.Printf("  verified=%v\n", report.Verified)
	}
}
