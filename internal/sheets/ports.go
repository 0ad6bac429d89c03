package sheets

import "context"

// ValuesWriter replaces cell values in a spreadsheet. Ranges use A1
// notation including the sheet name, e.g. "'Ledger'!A1".
type ValuesWriter interface {
	ClearRange(ctx context.Context, rng string) error
	WriteRange(ctx context.Context, rng string, rows [][]any) error
}
