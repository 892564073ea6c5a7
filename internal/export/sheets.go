// Package export writes the fund report to a Google Sheet, one export per
// treasurer request. The sheet is the handover artifact: whoever runs the
// fund next semester gets the numbers without running the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kaskelas/internal/report"
)

// SheetsExporter appends report snapshots to a spreadsheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter from service-account credentials.
// credentialsJSON takes precedence over credentialsFile.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName, credentialsFile, credentialsJSON string) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		var err error
		creds, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Export appends the summary as rows: a header with the export date, the
// headline totals, then one row per indebted member.
func (e *SheetsExporter) Export(ctx context.Context, sum report.Summary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{
		{"Laporan Kas", sum.GeneratedAt},
		{"Pemasukan", int64(sum.Totals.Income)},
		{"Pengeluaran", int64(sum.Totals.Expense)},
		{"Saldo", int64(sum.Totals.Balance)},
		{"Tunggakan", int64(sum.Totals.Arrears)},
	}
	if len(sum.Debts) > 0 {
		rows = append(rows, []any{"Daftar Penunggak"})
		for _, d := range sum.Debts {
			rows = append(rows, []any{d.Member.Name, d.Member.NIM, int64(d.Debt)})
		}
	}
	rows = append(rows, []any{}) // blank separator between exports

	rng := fmt.Sprintf("%s!A:C", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report rows: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName,
		"rows", len(rows),
		"exported_at", time.Now().Format(time.RFC3339))

	return nil
}
