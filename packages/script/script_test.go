package script

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

const budgetScript = `
- type: set_value
  cell: A1
  value: 10
- type: set_value
  cell: A2
  value: "20"
- type: set_value
  cell: A3
  value: =SUM(A1:A2)
- type: sort
  range: A1:A3
- type: set_value
  cell: 9Z
  value: 1
- type: replace
  value: foo
  formula: bar
- type: calculate
  range: A1:A3
  formula: average
`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(budgetScript))
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, spreadsheet.CommandRecord{Type: "set_value", Cell: "A1", Value: "10"}, records[0])
	assert.Equal(t, spreadsheet.Scalar("=SUM(A1:A2)"), records[2].Value)
	assert.Equal(t, "bar", records[5].Formula)

	records, err = Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Decode(strings.NewReader(`[{"type": "add_row"}]`))
	require.NoError(t, err)
	assert.Equal(t, []spreadsheet.CommandRecord{{Type: "add_row"}}, records)

	_, err = Decode(strings.NewReader("type: set_value\n"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	records, err := Decode(strings.NewReader(budgetScript))
	require.NoError(t, err)

	s := spreadsheet.NewSheet("budget", 0, 0)
	report, err := Run(context.Background(), s, records)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 7)
	assert.Equal(t, 2, report.Failed)

	assert.True(t, spreadsheet.IsUnsupportedCommand(report.Outcomes[3].Err))
	assert.True(t, spreadsheet.IsInvalidReference(report.Outcomes[4].Err))
	assert.Equal(t, 0, report.Outcomes[5].Result.Count)

	calc := report.Outcomes[6].Result
	require.NoError(t, report.Outcomes[6].Err)
	assert.Equal(t, 20.0, calc.Value)
	assert.Equal(t, "AVERAGE of A1:A3 = 20", calc.Message)

	v, ok := s.Value("A3")
	require.True(t, ok)
	assert.Equal(t, "30", v.String())
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := spreadsheet.NewSheet("", 0, 0)
	report, err := Run(ctx, s, []spreadsheet.CommandRecord{{Type: "add_row"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, spreadsheet.DefaultRows, s.Rows())
}
