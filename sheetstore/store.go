// Package sheetstore implements the spreadsheet collaborator on Google Sheets: control
// sheet export, sheet title lookup and report sheet replacement.
package sheetstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/context/ctxhttp"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	DEFAULT_EXPORT_URL = "https://docs.google.com/spreadsheets/d"

	DEFAULT_ROWS    = 100
	DEFAULT_COLUMNS = 2
)

type Store struct {
	ExportURL string

	client *http.Client
	sheets *sheets.Service
	drive  *drive.Service
}

// Revision identifies the latest revision of a spreadsheet file.
type Revision struct {
	ID       string
	Modified time.Time
}

// NewStore authorises with the service account credentials file and returns a store
// backed by the Google Sheets and Drive APIs.
func NewStore(ctx context.Context, credentials string) (*Store, error) {
	client, err := authorize(ctx, credentials, SHEETS, DRIVE_FILE, DRIVE_METADATA)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	return NewStoreWithClient(ctx, client)
}

// NewStoreWithClient returns a store using an already authorised HTTP client. Extra
// options are passed to the Sheets and Drive services.
func NewStoreWithClient(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)

	google, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	gdrive, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Drive client (%w)", err)
	}

	return &Store{
		ExportURL: DEFAULT_EXPORT_URL,
		client:    client,
		sheets:    google,
		drive:     gdrive,
	}, nil
}

// Export downloads a single worksheet in the requested format (csv, tsv, pdf, xlsx, ods).
func (s *Store) Export(ctx context.Context, tableID, sheetID, format string) ([]byte, error) {
	uri := fmt.Sprintf("%v/%v/export?format=%v&gid=%v",
		strings.TrimSuffix(s.ExportURL, "/"),
		url.PathEscape(tableID),
		url.QueryEscape(format),
		url.QueryEscape(sheetID))

	response, err := ctxhttp.Get(ctx, s.client, uri)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("export of %v/%v failed (%v: %v)", tableID, sheetID, response.Status, strings.TrimSpace(string(msg)))
	}

	return io.ReadAll(response.Body)
}

// SheetTitle returns the title of the worksheet with the numeric ID sheetID.
func (s *Store) SheetTitle(ctx context.Context, tableID, sheetID string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(sheetID), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid sheet ID '%v'", sheetID)
	}

	spreadsheet, err := s.getSpreadsheet(ctx, tableID)
	if err != nil {
		return "", err
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == id {
			return sheet.Properties.Title, nil
		}
	}

	return "", fmt.Errorf("unable to identify worksheet with ID %v", id)
}

// Values returns the formatted cell values of the worksheet named 'worksheet'. Rows are
// returned as the API returns them, so trailing empty cells are omitted.
func (s *Store) Values(ctx context.Context, tableID, worksheet string) ([][]string, error) {
	response, err := s.sheets.Spreadsheets.Values.Get(tableID, quote(worksheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from worksheet '%v' (%w)", worksheet, err)
	}

	rows := make([][]string, 0, len(response.Values))
	for _, row := range response.Values {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}

		rows = append(rows, record)
	}

	return rows, nil
}

// Replace clears (or creates) the worksheet 'title' and writes rows starting at A1.
func (s *Store) Replace(ctx context.Context, tableID, title string, rows [][]string) error {
	spreadsheet, err := s.getSpreadsheet(ctx, tableID)
	if err != nil {
		return err
	}

	if sheet := getSheet(spreadsheet, title); sheet == nil {
		if err := s.addSheet(ctx, spreadsheet, title, rows); err != nil {
			return err
		}
	} else if err := s.clear(ctx, spreadsheet, []string{quote(title)}); err != nil {
		return fmt.Errorf("error clearing worksheet '%v' (%w)", title, err)
	}

	values := sheets.ValueRange{
		Values: make([][]interface{}, 0, len(rows)),
	}

	for _, row := range rows {
		record := make([]interface{}, len(row))
		for i, v := range row {
			record[i] = v
		}

		values.Values = append(values.Values, record)
	}

	if _, err := s.sheets.Spreadsheets.Values.Append(spreadsheet.SpreadsheetId, quote(title)+"!A1", &values).
		ValueInputOption("RAW").
		InsertDataOption("OVERWRITE").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("error writing worksheet '%v' (%w)", title, err)
	}

	return nil
}

// Revision returns the most recent revision of a spreadsheet file.
func (s *Store) Revision(ctx context.Context, fileID string) (*Revision, error) {
	page := ""
	latest := Revision{}

	for {
		call := s.drive.Revisions.List(fileID).Fields("nextPageToken", "revisions(id,modifiedTime)").Context(ctx)
		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, revision := range revisions.Revisions {
			datetime, err := time.Parse(time.RFC3339, revision.ModifiedTime)
			if err != nil {
				return nil, err
			}

			if latest.Modified.Before(datetime) {
				latest.ID = revision.Id
				latest.Modified = datetime
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.Modified.IsZero() {
		return nil, fmt.Errorf("unable to identify latest revision for file ID %s", fileID)
	}

	return &latest, nil
}

func (s *Store) getSpreadsheet(ctx context.Context, id string) (*sheets.Spreadsheet, error) {
	spreadsheet, err := s.sheets.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	return spreadsheet, nil
}

func (s *Store) addSheet(ctx context.Context, spreadsheet *sheets.Spreadsheet, title string, rows [][]string) error {
	nrows := int64(DEFAULT_ROWS)
	if n := int64(len(rows)); n > nrows {
		nrows = n
	}

	ncols := int64(DEFAULT_COLUMNS)
	for _, row := range rows {
		if n := int64(len(row)); n > ncols {
			ncols = n
		}
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: title,
						GridProperties: &sheets.GridProperties{
							RowCount:    nrows,
							ColumnCount: ncols,
						},
					},
				},
			},
		},
	}

	if _, err := s.sheets.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error creating worksheet '%v' (%w)", title, err)
	}

	return nil
}

func (s *Store) clear(ctx context.Context, spreadsheet *sheets.Spreadsheet, ranges []string) error {
	rq := sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}

	if _, err := s.sheets.Spreadsheets.Values.BatchClear(spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

func getSheet(spreadsheet *sheets.Spreadsheet, name string) *sheets.Sheet {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && normalise(sheet.Properties.Title) == normalise(name) {
			return sheet
		}
	}

	return nil
}

// quote returns a sheet name in A1 notation, e.g. 'Spring 2025' or 'O''Brien'.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
