package rowstore

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets is a Store backed by one worksheet of a Google spreadsheet.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheets(ctx context.Context, jsonPath, spreadsheetID, sheetName string) (*Sheets, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(jsonPath))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Sheets{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ReadAll fetches the whole worksheet. Reads are idempotent, so rate-limit
// responses are retried with backoff; mutations below are single-attempt.
func (s *Sheets) ReadAll(ctx context.Context) ([][]string, error) {
	var resp *sheets.ValueRange
	var err error
	maxRetries := 15
	maxBackoff := 60 * time.Second
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err = s.service.Spreadsheets.Values.Get(
			s.spreadsheetID,
			s.sheetName+"!A:Z",
		).Context(ctx).Do()
		if err == nil {
			break
		}
		if gErr, ok := err.(*googleapi.Error); ok && (gErr.Code == 429 || gErr.Code == 403) {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			log.Printf("Rate limited by Google Sheets API, retrying in %v...", backoff)
			time.Sleep(backoff)
			continue
		}
		return nil, &TransportError{Op: "read all", Err: err}
	}
	if err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("read all after %d retries", maxRetries), Err: err}
	}

	table := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		table[i] = cells
	}
	return padToHeaderWidth(table), nil
}

// padToHeaderWidth pads short data rows with empty cells up to the header's
// width. The Values API omits trailing blank cells, so a row with empty
// flag cells at the end comes back narrower than the header; that is a
// transport quirk, not a malformed row. Rows wider than the header are left
// alone for the loader to reject.
func padToHeaderWidth(table [][]string) [][]string {
	if len(table) == 0 {
		return table
	}
	width := len(table[0])
	for i, row := range table[1:] {
		for len(row) < width {
			row = append(row, "")
		}
		table[i+1] = row
	}
	return table
}

func (s *Sheets) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A:Z",
		&sheets.ValueRange{Values: [][]interface{}{row}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return &TransportError{Op: "append row", Err: err}
	}
	return nil
}

func (s *Sheets) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", s.sheetName, columnLetter(col), row)
	_, err := s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		rng,
		&sheets.ValueRange{Values: [][]interface{}{{value}}},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return &TransportError{Op: "update cell " + rng, Err: err}
	}
	return nil
}

func (s *Sheets) DeleteRow(ctx context.Context, row int) error {
	sheetID, err := s.sheetID(ctx)
	if err != nil {
		return &TransportError{Op: "delete row", Err: err}
	}
	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(row - 1),
				EndIndex:   int64(row),
			},
		},
	}
	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{req},
	}).Context(ctx).Do()
	if err != nil {
		return &TransportError{Op: fmt.Sprintf("delete row %d", row), Err: err}
	}
	return nil
}

func (s *Sheets) Clear(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Clear(
		s.spreadsheetID,
		s.sheetName+"!A:Z",
		&sheets.ClearValuesRequest{},
	).Context(ctx).Do()
	if err != nil {
		return &TransportError{Op: "clear", Err: err}
	}
	return nil
}

// sheetID resolves the numeric sheet id for the configured worksheet title.
func (s *Sheets) sheetID(ctx context.Context) (int64, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", s.sheetName)
}

func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
