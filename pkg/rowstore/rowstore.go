package rowstore

import "context"

// Store is the remote row store the order book lives in. Rows and columns
// are 1-based; row 1 holds the column headers.
type Store interface {
	ReadAll(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
	DeleteRow(ctx context.Context, row int) error
	Clear(ctx context.Context) error
}

// TransportError wraps a failed call against the remote store so callers
// can tell a transport problem apart from a missing record.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "rowstore: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
