package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// PendingRange is the A1 range rows are appended to.
const PendingRange = "pending!A:M"

// SheetsOptions configures a [SheetsQueue].
type SheetsOptions struct {
	SpreadsheetID string
	// Service account credentials.
	Email      string
	PrivateKey string
}

// Configured reports whether all credentials are present.
func (o SheetsOptions) Configured() bool {
	return o.SpreadsheetID != "" && o.Email != "" && o.PrivateKey != ""
}

// UnescapePrivateKey turns literal "\n" sequences, as found in environment
// variables, into newlines.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// SheetsQueue appends entries to the moderation spreadsheet.
type SheetsQueue struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsQueue authenticates with the service account in opts. Extra client
// options are applied last, so callers can override the endpoint or transport.
func NewSheetsQueue(ctx context.Context, opts SheetsOptions, extra ...option.ClientOption) (*SheetsQueue, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	var clientOpts []option.ClientOption
	if opts.Email != "" && opts.PrivateKey != "" {
		creds, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"client_email": opts.Email,
			"private_key":  UnescapePrivateKey(opts.PrivateKey),
			"token_uri":    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, fmt.Errorf("encode credentials: %w", err)
		}
		clientOpts = append(clientOpts,
			option.WithCredentialsJSON(creds),
			option.WithScopes(sheets.SpreadsheetsScope))
	}
	clientOpts = append(clientOpts, extra...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &SheetsQueue{svc: svc, spreadsheetID: opts.SpreadsheetID}, nil
}

func (q *SheetsQueue) String() string { return "sheets" }

func (q *SheetsQueue) Append(ctx context.Context, e Entry) error {
	row := e.Row()
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := q.svc.Spreadsheets.Values.
		Append(q.spreadsheetID, PendingRange, &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", PendingRange, err)
	}
	return nil
}

func (q *SheetsQueue) Close() error { return nil }
