package main

import (
	"fmt"
	"os"

	"github.com/capstack/goregistrar/db"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	"github.com/capstack/goregistrar/service/ledger"
	"github.com/capstack/goregistrar/utils/initializer"
	"github.com/gocarina/gocsv"
	"github.com/gofrs/uuid"
	"github.com/urfave/cli"
	try "gopkg.in/matryer/try.v1"
)

// row is one CSV line of a transfer agent ledger extract.
type row struct {
	ShareholderID string `csv:"shareholder_id"`
	SecurityID    string `csv:"security_id"`
	Category      string `csv:"category"`
	Qty           int64  `csv:"qty"`
	Direction     string `csv:"direction"`
	Date          string `csv:"date"`
	Note          string `csv:"note"`
	SubmissionID  string `csv:"submission_id"`
}

func main() {
	initializer.Initialize()

	app := cli.NewApp()
	app.Name = "ledgerloader"
	app.Usage = "Bulk load ledger transactions for an issuer from a CSV extract"
	app.ArgsUsage = "<csv_file>"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "issuer, i", Usage: "issuer id (required)"},
		cli.IntFlag{Name: "retries, r", Usage: "attempts per row on transient store failures", Value: 3},
	}
	app.Action = func(c *cli.Context) error {
		issuerID, err := uuid.FromString(c.String("issuer"))
		if err != nil {
			return cli.NewExitError("--issuer is required and must be a uuid", 1)
		}
		if len(c.Args()) < 1 {
			cli.ShowAppHelpAndExit(c, 0)
			return nil
		}

		file, err := os.Open(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer file.Close()

		rows := []*row{}
		if err := gocsv.UnmarshalFile(file, &rows); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		retries := c.Int("retries")

		loaded, failed := 0, 0

		for i, r := range rows {
			req := toRequest(r)

			err := try.Do(func(attempt int) (bool, error) {
				tx := db.Begin()
				if tx.Error != nil {
					return attempt < retries, tx.Error
				}

				if _, err := ledger.Service().WithTx(tx).Ingest(issuerID, req); err != nil {
					tx.Rollback()
					retry := grerrors.IsRetryable(err) && attempt < retries
					return retry, err
				}

				if err := tx.Commit().Error; err != nil {
					return attempt < retries, err
				}
				return false, nil
			})
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "row %d: %v\n", i+1, err)
				continue
			}
			loaded++
		}

		fmt.Printf("loaded %d rows, %d failed\n", loaded, failed)

		if failed > 0 {
			return cli.NewExitError("some rows failed to load", 1)
		}
		return nil
	}

	app.Run(os.Args)
}

func toRequest(r *row) ledger.IngestRequest {
	req := ledger.IngestRequest{
		ShareholderID: r.ShareholderID,
		SecurityID:    r.SecurityID,
		Category:      enum.TransactionCategory(r.Category),
		Qty:           r.Qty,
		Date:          r.Date,
	}
	if r.Direction != "" {
		req.Direction = &r.Direction
	}
	if r.Note != "" {
		req.Note = &r.Note
	}
	if r.SubmissionID != "" {
		req.SubmissionID = &r.SubmissionID
	}
	return req
}
