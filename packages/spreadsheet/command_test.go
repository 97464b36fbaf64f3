package spreadsheet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValueCommand(t *testing.T) {
	newSheetTestCase(t, "classifies input").
		Set("A1", "42").
		Set("A2", " 3.5 ").
		Set("A3", "hello").
		Set("A4", "=A1+A2").
		AssertNumber("A1", 42).
		AssertNumber("A2", 3.5).
		AssertText("A3", "hello").
		AssertNumber("A4", 45.5).
		AssertContent("A4", "=A1+A2").
		End()

	newSheetTestCase(t, "empty string clears").
		Set("A1", "5").
		Set("A1", "").
		AssertEmpty("A1").
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, KindSetValue, res.Kind)
			assert.Equal(t, []string{"A1"}, res.Changed)
		}).
		End()

	newSheetTestCase(t, "lowercase label is normalized").
		Set("b7", "1").
		AssertNumber("B7", 1).
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, "Set B7 to 1", res.Message)
		}).
		End()

	newSheetTestCase(t, "invalid reference is rejected").
		Run(SetValue{Cell: "7B", Value: "1"}).
		ExpectAppError(InvalidArgument).
		End()

	newSmallSheetTestCase(t, "write beyond bounds is rejected", 10, 10).
		Run(SetValue{Cell: "K1", Value: "1"}).
		ExpectAppError(OutOfRange).
		AssertEmpty("K1").
		End()
}

func TestDeleteCellCommand(t *testing.T) {
	newSheetTestCase(t, "deletes a cell").
		Set("A1", "5").
		Run(DeleteCell{Cell: "A1"}).
		ExpectNoError().
		AssertEmpty("A1").
		End()

	newSheetTestCase(t, "absent cell is a no-op").
		Run(DeleteCell{Cell: "C9"}).
		ExpectNoError().
		AssertResult(func(t *testing.T, res Result) {
			assert.Empty(t, res.Changed)
		}).
		End()

	newSheetTestCase(t, "invalid reference").
		Run(DeleteCell{Cell: "A"}).
		ExpectAppError(InvalidArgument).
		End()
}

func TestStructuralCommands(t *testing.T) {
	s := NewSheet("grow", 2, 2)
	Execute(s, SetValue{Cell: "B2", Value: "=A1+1"})

	_, err := Execute(s, AddRow{})
	require.NoError(t, err)
	_, err = Execute(s, AddColumn{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, 3, s.Cols())

	cell, ok := s.Get("B2")
	require.True(t, ok)
	assert.Equal(t, "=A1+1", cell.Content())

	_, err = Execute(s, SetValue{Cell: "C3", Value: "x"})
	assert.NoError(t, err)
}

func TestCalculateCommand(t *testing.T) {
	s := NewSheet("calc", 0, 0)
	for label, value := range map[string]string{"A1": "10", "A2": "20", "A3": "text", "A4": "=A1*3"} {
		_, err := Execute(s, SetValue{Cell: label, Value: value})
		require.NoError(t, err)
	}
	before := s.Len()

	tests := []struct {
		name    string
		cmd     Calculate
		want    float64
		message string
	}{
		{"default is sum", Calculate{Range: "A1:A4"}, 60, "SUM of A1:A4 = 60"},
		{"sum hint", Calculate{Range: "A1:A4", Formula: "SUM(A1:A4)"}, 60, "SUM of A1:A4 = 60"},
		{"average hint", Calculate{Range: "A1:A4", Formula: "average"}, 20, "AVERAGE of A1:A4 = 20"},
		{"count hint", Calculate{Range: "A1:A4", Formula: "COUNT(A1:A4)"}, 4, "COUNT of A1:A4 = 4"},
		{"unknown hint", Calculate{Range: "A1:A2", Formula: "MAX"}, 30, "SUM of A1:A2 = 30"},
		{"reversed range", Calculate{Range: "A2:A1"}, 30, "SUM of A1:A2 = 30"},
		{"single cell", Calculate{Range: "A2"}, 20, "SUM of A2 = 20"},
		{"empty range", Calculate{Range: ""}, 0, `SUM of "" = 0`},
		{"invalid range", Calculate{Range: "A1:??"}, 0, `SUM of "A1:??" = 0`},
		{"no numbers", Calculate{Range: "A3", Formula: "AVERAGE"}, 0, "AVERAGE of A3 = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Execute(s, tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, KindCalculate, res.Kind)
			assert.InDelta(t, tt.want, res.Value, 1e-10)
			assert.Equal(t, tt.message, res.Message)
			assert.Empty(t, res.Changed)
		})
	}
	assert.Equal(t, before, s.Len())
}

func TestFormatCommand(t *testing.T) {
	newSheetTestCase(t, "format has no effect").
		Set("A1", "5").
		Run(Format{Range: "A1:B2", Style: "bold"}).
		ExpectNoError().
		AssertNumber("A1", 5).
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, KindFormat, res.Kind)
			assert.Contains(t, res.Message, "A1:B2")
		}).
		End()

	newSheetTestCase(t, "format with a bad range").
		Run(Format{Range: "nope", Style: "bold"}).
		ExpectAppError(InvalidArgument).
		End()
}

func TestCopyCommand(t *testing.T) {
	newSheetTestCase(t, "formula text is copied verbatim").
		Set("A1", "5").
		Set("A2", "10").
		Set("B1", "=A1+A2").
		Run(Copy{SourceRange: "B1", DestCell: "C1"}).
		ExpectNoError().
		AssertContent("C1", "=A1+A2").
		AssertNumber("C1", 15).
		AssertNumber("B1", 15).
		End()

	newSheetTestCase(t, "range keeps its shape").
		Set("A1", "1").
		Set("B1", "two").
		Set("B2", "=A1*4").
		Run(Copy{SourceRange: "A1:B2", DestCell: "D5"}).
		ExpectNoError().
		AssertNumber("D5", 1).
		AssertText("E5", "two").
		AssertContent("E6", "=A1*4").
		AssertNumber("E6", 4).
		AssertEmpty("D6").
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, 3, res.Count)
			assert.Equal(t, []string{"D5", "E5", "E6"}, res.Changed)
		}).
		End()

	newSheetTestCase(t, "absent sources leave destinations alone").
		Set("C3", "keep").
		Run(Copy{SourceRange: "A1:A1", DestCell: "C3"}).
		ExpectNoError().
		AssertText("C3", "keep").
		End()

	newSheetTestCase(t, "overlapping copy reads the original content").
		Set("A1", "1").
		Set("A2", "2").
		Set("A3", "3").
		Run(Copy{SourceRange: "A1:A3", DestCell: "A2"}).
		ExpectNoError().
		AssertNumber("A1", 1).
		AssertNumber("A2", 1).
		AssertNumber("A3", 2).
		AssertNumber("A4", 3).
		End()

	newSmallSheetTestCase(t, "copy beyond bounds changes nothing", 3, 3).
		Set("A1", "1").
		Set("A2", "2").
		Run(Copy{SourceRange: "A1:A2", DestCell: "C3"}).
		ExpectAppError(OutOfRange).
		AssertEmpty("C3").
		End()

	newSheetTestCase(t, "bad destination").
		Set("A1", "1").
		Run(Copy{SourceRange: "A1", DestCell: "1A"}).
		ExpectAppError(InvalidArgument).
		End()
}

func TestMoveCommand(t *testing.T) {
	newSheetTestCase(t, "move clears the source").
		Set("A1", "5").
		Set("A2", "hello").
		Set("B1", "=A1*2").
		Run(Move{SourceRange: "A1:A2", DestCell: "C1"}).
		ExpectNoError().
		AssertEmpty("A1").
		AssertEmpty("A2").
		AssertNumber("C1", 5).
		AssertText("C2", "hello").
		AssertNumber("B1", 0).
		End()

	newSheetTestCase(t, "moved formulas keep their references").
		Set("A1", "5").
		Set("B1", "=A1+1").
		Run(Move{SourceRange: "B1", DestCell: "B5"}).
		ExpectNoError().
		AssertEmpty("B1").
		AssertContent("B5", "=A1+1").
		AssertNumber("B5", 6).
		End()

	newSheetTestCase(t, "overlapping move clears every source cell").
		Set("A1", "1").
		Set("A2", "2").
		Run(Move{SourceRange: "A1:A2", DestCell: "A2"}).
		ExpectNoError().
		AssertEmpty("A1").
		AssertEmpty("A2").
		AssertNumber("A3", 2).
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, 2, res.Count)
			assert.Equal(t, []string{"A1", "A2", "A3"}, res.Changed)
		}).
		End()

	newSheetTestCase(t, "invalid source").
		Run(Move{SourceRange: "A1:", DestCell: "B1"}).
		ExpectAppError(InvalidArgument).
		End()
}

func TestReplaceCommand(t *testing.T) {
	newSheetTestCase(t, "replace everywhere").
		Set("A1", "foo bar").
		Set("A2", "foo").
		Set("B1", "nothing").
		Run(Replace{Find: "foo", ReplaceWith: "baz", Range: "ALL"}).
		ExpectNoError().
		AssertText("A1", "baz bar").
		AssertText("A2", "baz").
		AssertText("B1", "nothing").
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, 2, res.Count)
			assert.Equal(t, []string{"A1", "A2"}, res.Changed)
		}).
		End()

	newSheetTestCase(t, "count is cells, not occurrences").
		Set("A1", "aaa").
		Run(Replace{Find: "a", ReplaceWith: "b", Range: "all"}).
		ExpectNoError().
		AssertText("A1", "bbb").
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, 1, res.Count)
		}).
		End()

	newSheetTestCase(t, "replace within a range").
		Set("A1", "foo").
		Set("A5", "foo").
		Run(Replace{Find: "foo", ReplaceWith: "x", Range: "A1:B2"}).
		ExpectNoError().
		AssertText("A1", "x").
		AssertText("A5", "foo").
		End()

	newSheetTestCase(t, "formulas and numbers are untouched").
		Set("A1", "11").
		Set("A2", "=A1+1").
		Set("A3", "1 apple").
		Run(Replace{Find: "1", ReplaceWith: "2", Range: "ALL"}).
		ExpectNoError().
		AssertNumber("A1", 11).
		AssertContent("A2", "=A1+1").
		AssertText("A3", "2 apple").
		AssertResult(func(t *testing.T, res Result) {
			assert.Equal(t, 1, res.Count)
		}).
		End()

	newSheetTestCase(t, "the search text is literal").
		Set("A1", "a.c abc").
		Run(Replace{Find: ".", ReplaceWith: "-", Range: "ALL"}).
		ExpectNoError().
		AssertText("A1", "a-c abc").
		End()

	newSheetTestCase(t, "replacing everything clears the cell").
		Set("A1", "gone").
		Run(Replace{Find: "gone", ReplaceWith: "", Range: "ALL"}).
		ExpectNoError().
		AssertEmpty("A1").
		End()

	newSheetTestCase(t, "empty search text").
		Set("A1", "foo").
		Run(Replace{Find: "", ReplaceWith: "x", Range: "ALL"}).
		ExpectAppError(InvalidArgument).
		AssertText("A1", "foo").
		End()

	newSheetTestCase(t, "invalid range").
		Run(Replace{Find: "a", ReplaceWith: "b", Range: "A1:Q"}).
		ExpectAppError(InvalidArgument).
		End()
}

type renameSheet struct{}

func (renameSheet) Kind() string { return "rename_sheet" }

func TestUnsupportedCommands(t *testing.T) {
	newSheetTestCase(t, "foreign command").
		Set("A1", "1").
		Run(renameSheet{}).
		ExpectAppError(Unimplemented).
		AssertNumber("A1", 1).
		End()

	newSheetTestCase(t, "nil command").
		Run(nil).
		ExpectAppError(Unimplemented).
		End()

	for _, kind := range []string{KindFilter, KindSort, KindChart, "explode"} {
		_, err := DecodeCommand(CommandRecord{Type: kind})
		assert.True(t, IsUnsupportedCommand(err), kind)
	}
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		rec  CommandRecord
		want Command
	}{
		{CommandRecord{Type: "set_value", Cell: "A1", Value: "10"}, SetValue{Cell: "A1", Value: "10"}},
		{CommandRecord{Type: "DELETE_CELL", Cell: "A1"}, DeleteCell{Cell: "A1"}},
		{CommandRecord{Type: "add_row"}, AddRow{}},
		{CommandRecord{Type: "add_column"}, AddColumn{}},
		{CommandRecord{Type: "calculate", Range: "A1:A3", Formula: "AVERAGE(A1:A3)"}, Calculate{Range: "A1:A3", Formula: "AVERAGE(A1:A3)"}},
		{CommandRecord{Type: "format", Range: "A1", Value: "bold"}, Format{Range: "A1", Style: "bold"}},
		{CommandRecord{Type: "copy", Range: "A1:B2", Cell: "C1"}, Copy{SourceRange: "A1:B2", DestCell: "C1"}},
		{CommandRecord{Type: "move", Range: "A1", Cell: "C1"}, Move{SourceRange: "A1", DestCell: "C1"}},
		{CommandRecord{Type: "replace", Value: "old", Formula: "new"}, Replace{Find: "old", ReplaceWith: "new", Range: "ALL"}},
		{CommandRecord{Type: "replace", Value: "old", Formula: "new", Range: "A1:A9"}, Replace{Find: "old", ReplaceWith: "new", Range: "A1:A9"}},
	}
	for _, tt := range tests {
		t.Run(tt.rec.Type, func(t *testing.T) {
			got, err := DecodeCommand(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandRecordJSON(t *testing.T) {
	var recs []CommandRecord
	err := json.Unmarshal([]byte(`[
		{"type": "set_value", "cell": "A1", "value": 10},
		{"type": "set_value", "cell": "A2", "value": "hello"},
		{"type": "set_value", "cell": "A3", "value": 2.5}
	]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, Scalar("10"), recs[0].Value)
	assert.Equal(t, Scalar("hello"), recs[1].Value)
	assert.Equal(t, Scalar("2.5"), recs[2].Value)

	var bad CommandRecord
	assert.Error(t, json.Unmarshal([]byte(`{"type": "set_value", "value": {"x": 1}}`), &bad))
}

func TestRunner(t *testing.T) {
	r := NewRunner(NewSheet("runner", 0, 0)).
		Set("A1", 10).
		Set("B1", 20.5).
		Set("C1", "=SUM(A1:B1)")
	_, err := r.Result()
	require.NoError(t, err)

	v, ok := r.Sheet().Value("C1")
	require.True(t, ok)
	assert.Equal(t, "30.5", v.String())

	res, err := r.Run(Calculate{Range: "A1:C1", Formula: "COUNT"}).Result()
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Value)
}
