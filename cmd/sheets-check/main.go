package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sbmn-interviewer/internal/sheets"
)

// serviceAccount holds the fields worth echoing back from a credentials file.
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	credentialsData, err := loadCredentials(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to read credentials: %v", err)
	}
	sa, err := parseServiceAccount(credentialsData)
	if err != nil {
		log.Fatalf("Failed to parse credentials: %v", err)
	}

	sheetID := os.Getenv("SHEET_ID")
	if len(os.Args) > 2 {
		sheetID = os.Args[2]
	}
	if sheetID == "" {
		log.Fatal("Usage: sheets-check [credentials.json] [sheet-id] (or set GOOGLE_CREDENTIALS and SHEET_ID)")
	}

	fmt.Printf("Google Sheets access check\n")
	fmt.Printf("==========================\n")
	fmt.Printf("Service account: %s (project %s)\n", sa.ClientEmail, sa.ProjectID)
	fmt.Printf("Spreadsheet:     %s\n\n", sheetID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := sheets.New(ctx, credentialsData, sheetID)
	if err != nil {
		log.Fatalf("Failed to create sheets client: %v", err)
	}
	title, err := client.FirstSheetTitle(ctx)
	if err != nil {
		log.Fatalf("Failed to read spreadsheet (is it shared with %s?): %v", sa.ClientEmail, err)
	}
	fmt.Printf("First worksheet: %q\n", title)
	fmt.Printf("Transcripts will be appended to this worksheet.\n")
}

// loadCredentials reads the file named by the first argument, falling back
// to GOOGLE_CREDENTIALS and GOOGLE_CREDENTIALS_FILE.
func loadCredentials(args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "" {
		return os.ReadFile(args[0])
	}
	if inline := os.Getenv("GOOGLE_CREDENTIALS"); inline != "" {
		return []byte(inline), nil
	}
	if path := os.Getenv("GOOGLE_CREDENTIALS_FILE"); path != "" {
		return os.ReadFile(path)
	}
	return nil, fmt.Errorf("no credentials given")
}

func parseServiceAccount(data []byte) (*serviceAccount, error) {
	var sa serviceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if sa.Type != "service_account" {
		return nil, fmt.Errorf("expected a service_account key, got type %q", sa.Type)
	}
	if sa.ClientEmail == "" {
		return nil, fmt.Errorf("client_email is missing")
	}
	return &sa, nil
}
