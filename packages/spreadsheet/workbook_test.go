package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbookNaming(t *testing.T) {
	wb := NewWorkbook()
	require.NoError(t, wb.Add(NewSheet("", 0, 0)))
	require.NoError(t, wb.Add(NewSheet("Budget", 0, 0)))
	require.NoError(t, wb.Add(NewSheet("", 0, 0)))
	assert.Equal(t, []string{"Sheet1", "Budget", "Sheet3"}, wb.Names())

	err := wb.Add(NewSheet("budget", 0, 0))
	require.Error(t, err)
	assert.True(t, IsInvalidReference(err))
	assert.Equal(t, 3, wb.Len())

	s, ok := wb.Sheet("BUDGET")
	require.True(t, ok)
	assert.Equal(t, "Budget", s.Name())
}

func TestWorkbookRename(t *testing.T) {
	wb := NewWorkbook()
	require.NoError(t, wb.Add(NewSheet("a", 0, 0)))
	require.NoError(t, wb.Add(NewSheet("b", 0, 0)))

	require.NoError(t, wb.Rename("a", "A"))
	require.NoError(t, wb.Rename("A", "first"))
	assert.Equal(t, []string{"first", "b"}, wb.Names())

	_, ok := wb.Sheet("a")
	assert.False(t, ok)
	assert.Error(t, wb.Rename("first", "B"))
	assert.Error(t, wb.Rename("first", " "))

	var appErr *AppError
	require.ErrorAs(t, wb.Rename("missing", "x"), &appErr)
	assert.Equal(t, NotFound, appErr.Code)
}

func TestWorkbookDuplicateAndRemove(t *testing.T) {
	wb := NewWorkbook()
	src := NewSheet("Data", 10, 10)
	require.NoError(t, wb.Add(src))
	_, err := NewRunner(src).Set("A1", 2).Set("A2", "=A1*10").Result()
	require.NoError(t, err)

	dup, err := wb.Duplicate("data", "")
	require.NoError(t, err)
	assert.Equal(t, "Data (Copy)", dup.Name())
	assert.Equal(t, 10, dup.Rows())
	v, ok := dup.Value("A2")
	require.True(t, ok)
	assert.Equal(t, "20", v.String())

	// the copy is independent of its source
	_, err = Execute(dup, SetValue{Cell: "A1", Value: "5"})
	require.NoError(t, err)
	v, _ = src.Value("A2")
	assert.Equal(t, "20", v.String())

	assert.True(t, wb.Remove("DATA"))
	assert.False(t, wb.Remove("Data"))
	assert.Equal(t, []string{"Data (Copy)"}, wb.Names())
	got, ok := wb.Sheet("data (copy)")
	require.True(t, ok)
	assert.Same(t, dup, got)
}
