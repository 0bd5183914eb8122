/*
result.go - Result normalization

PURPOSE:
  Reshapes the statement API's raw payload (rows of string cells in
  fixed column order: dimension, current value, prior value) into the
  typed response contract. Only ever called for a SUCCEEDED job, so
  every defect found here is the service breaking its contract, not a
  client error.

NUMERIC HANDLING:
  Warehouse numerics arrive as decimal strings. They are parsed with
  shopspring/decimal rather than strconv so wide aggregates survive
  the trip without float artifacts, then rendered to float64 only at
  the JSON boundary. Empty and "null" cells become JSON null.
*/
package warehouse

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Row is one normalized result row.
type Row struct {
	Dimension    string   `json:"dimension"`
	CurrentValue *float64 `json:"current_value"`
	PriorValue   *float64 `json:"prior_value"`
}

// Table is the normalized tabular result returned to the caller.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// resultColumns is the fixed column order every compiled statement
// selects, and therefore the order the payload must arrive in.
var resultColumns = []string{"dimension", "current_value", "prior_value"}

// Normalize converts a succeeded statement's payload into a Table.
// A missing payload or a malformed row is a ContractError.
func Normalize(res *ResultData) (*Table, error) {
	if res == nil {
		return nil, &ContractError{Reason: "succeeded statement carried no result payload"}
	}

	table := &Table{
		Columns: resultColumns,
		Rows:    make([]Row, 0, len(res.DataArray)),
	}
	for i, cells := range res.DataArray {
		if len(cells) < 3 {
			return nil, &ContractError{Reason: fmt.Sprintf("row %d has %d cells, want 3", i, len(cells))}
		}
		cur, err := parseCell(cells[1])
		if err != nil {
			return nil, &ContractError{Reason: fmt.Sprintf("row %d current value %q is not numeric", i, cells[1])}
		}
		prior, err := parseCell(cells[2])
		if err != nil {
			return nil, &ContractError{Reason: fmt.Sprintf("row %d prior value %q is not numeric", i, cells[2])}
		}
		table.Rows = append(table.Rows, Row{
			Dimension:    cells[0],
			CurrentValue: cur,
			PriorValue:   prior,
		})
	}
	return table, nil
}

// parseCell parses one numeric cell. Empty and "null" cells are SQL
// NULLs and map to nil.
func parseCell(cell string) (*float64, error) {
	if cell == "" || cell == "null" {
		return nil, nil
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return nil, err
	}
	f, _ := d.Float64()
	return &f, nil
}
