package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gestao-report/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

const (
	apiBaseURL = "https://sheets.googleapis.com/v4"
	scope      = "https://www.googleapis.com/auth/spreadsheets"
)

var ErrMissingSpreadsheetID = errors.New("spreadsheet id is required")

// Exporter writes a report into a Google Sheets partition via the
// values.update endpoint, authenticating with a service-account key file.
// The key file is only read on the first export, so a run that never exports
// needs no credentials.
type Exporter struct {
	credentialsFile string
	timeout         time.Duration
	logger          *zap.Logger

	// http overrides the authenticated client; tests point it at a fake.
	http *resty.Client
}

func NewExporter(cfg config.Config, logger *zap.Logger) *Exporter {
	return &Exporter{
		credentialsFile: cfg.CredentialsFile,
		timeout:         cfg.Timeout,
		logger:          logger.Named("sheets"),
	}
}

// Export writes a header row plus one row per record into sheetName, sized
// exactly to the data extent. Cell values are stringified; non-scalar values
// become embedded JSON text.
func (e *Exporter) Export(ctx context.Context, records []map[string]any, spreadsheetID, sheetName string, headers []string) error {
	if spreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}

	client, err := e.client(ctx)
	if err != nil {
		return err
	}

	values := formatRecords(records, headers)
	rng := fmt.Sprintf("%s!%s", sheetName, rangeFor(len(values), len(headers)))

	body := map[string]any{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         values,
	}
	path := fmt.Sprintf("/spreadsheets/%s/values/%s", url.PathEscape(spreadsheetID), url.PathEscape(rng))

	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "USER_ENTERED").
		SetBody(body).
		Put(path)
	if err != nil {
		return fmt.Errorf("updating sheet values: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("updating sheet values: %s: %s", resp.Status(), resp.String())
	}

	e.logger.Info("report exported",
		zap.String("sheet", sheetName),
		zap.Int("rows", len(values)-1),
		zap.String("range", rng),
	)
	return nil
}

func (e *Exporter) client(ctx context.Context) (*resty.Client, error) {
	if e.http != nil {
		return e.http, nil
	}

	key, err := os.ReadFile(e.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(key, scope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	e.http = resty.NewWithClient(conf.Client(ctx)).
		SetBaseURL(apiBaseURL).
		SetTimeout(e.timeout)
	return e.http, nil
}

// formatRecords builds the 2-D grid: header row first, then one row per
// record in header order.
func formatRecords(records []map[string]any, headers []string) [][]string {
	values := make([][]string, 0, len(records)+1)
	values = append(values, headers)

	for _, record := range records {
		row := make([]string, len(headers))
		for i, header := range headers {
			row[i] = formatCell(record[header])
		}
		values = append(values, row)
	}
	return values
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// rangeFor is the A1 range covering rows × cols starting at A1.
func rangeFor(rows, cols int) string {
	return fmt.Sprintf("A1:%s%d", columnLetter(cols), rows)
}

// columnLetter converts a 1-based column index to its base-26 letter form
// (1 → A, 26 → Z, 27 → AA).
func columnLetter(n int) string {
	letters := ""
	for n > 0 {
		rem := (n - 1) % 26
		letters = string(rune('A'+rem)) + letters
		n = (n - rem - 1) / 26
	}
	return letters
}
