package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by dev mode and tests. It applies the
// same 1-based addressing rules as the Sheets implementation.
type Memory struct {
	mu   sync.Mutex
	rows [][]string

	// FailOps marks operations that should fail with a TransportError,
	// keyed by the Op name ("append row", "update cell", ...).
	FailOps map[string]error
}

func NewMemory(rows [][]string) *Memory {
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	return &Memory{rows: copied}
}

func (m *Memory) fail(op string) error {
	if err, ok := m.FailOps[op]; ok {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

func (m *Memory) ReadAll(ctx context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("read all"); err != nil {
		return nil, err
	}
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *Memory) AppendRow(ctx context.Context, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("append row"); err != nil {
		return err
	}
	m.rows = append(m.rows, append([]string(nil), values...))
	return nil
}

func (m *Memory) UpdateCell(ctx context.Context, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update cell"); err != nil {
		return err
	}
	if row < 1 || row > len(m.rows) {
		return &TransportError{Op: "update cell", Err: fmt.Errorf("row %d out of range", row)}
	}
	cells := m.rows[row-1]
	if col < 1 {
		return &TransportError{Op: "update cell", Err: fmt.Errorf("column %d out of range", col)}
	}
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	m.rows[row-1] = cells
	return nil
}

func (m *Memory) DeleteRow(ctx context.Context, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete row"); err != nil {
		return err
	}
	if row < 1 || row > len(m.rows) {
		return &TransportError{Op: "delete row", Err: fmt.Errorf("row %d out of range", row)}
	}
	m.rows = append(m.rows[:row-1], m.rows[row:]...)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("clear"); err != nil {
		return err
	}
	m.rows = nil
	return nil
}
