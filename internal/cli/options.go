package cli

type Options struct {
	SpreadsheetID string
	SheetName     string
	WindowStart   string
	OutputDir     string
}
