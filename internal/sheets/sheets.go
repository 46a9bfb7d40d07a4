// Package sheets appends interview transcripts to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client appends rows to the first worksheet of one spreadsheet. The worksheet
// title is looked up on first use and cached.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string

	mu    sync.Mutex
	title string
}

// New authenticates with a service-account JSON key.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Client, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return NewWithOptions(ctx, spreadsheetID, option.WithHTTPClient(conf.Client(ctx)))
}

// NewWithOptions builds a client from explicit API options.
func NewWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// FirstSheetTitle returns the title of the first worksheet.
func (c *Client) FirstSheetTitle(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title != "" {
		return c.title, nil
	}
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet %s has no worksheets", c.spreadsheetID)
	}
	c.title = ss.Sheets[0].Properties.Title
	return c.title, nil
}

// AppendRow appends cells as one new row after the last filled row.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	title, err := c.FirstSheetTitle(ctx)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err = c.srv.Spreadsheets.Values.Append(c.spreadsheetID, a1(title), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", title, err)
	}
	return nil
}

func a1(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A1"
}
