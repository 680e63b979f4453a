package survey

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadWorkbook(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{" ID ", "Q1", "Q2"},
		{1634, "とてもそう思う", "3"},
		{nil, nil, nil},
		{"2101", "そう思わない"},
	})

	ds, err := Load("answers.xlsx", bytes.NewReader(data), testIDColumn)
	require.NoError(t, err)

	assert.Equal(t, "answers.xlsx", ds.Filename)
	assert.Equal(t, []string{"ID", "Q1", "Q2"}, ds.Headers)
	assert.True(t, ds.HasIdentifier)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "1634", ds.Rows[0].Identifier)
	assert.Equal(t, 2, ds.Rows[0].Row)
	assert.Equal(t, "", ds.Rows[1].Answers["Q2"])
}

func TestLoadCSVWithBOM(t *testing.T) {
	data := "\ufeffID,Q1,備考\n1101,3,\n,,\nabc,とてもそう思う,メモ\n"

	ds, err := Load("export.CSV", strings.NewReader(data), testIDColumn)
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Q1", "備考"}, ds.Headers)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "abc", ds.Rows[1].Identifier)
	assert.Equal(t, "メモ", ds.Rows[1].Answers["備考"])
}

func TestLoadWithoutIdentifierColumn(t *testing.T) {
	ds, err := Load("export.csv", strings.NewReader("Q1\n4\n"), testIDColumn)
	require.NoError(t, err)
	assert.False(t, ds.HasIdentifier)
	assert.Empty(t, ds.Rows[0].Identifier)
}

func TestLoadRejectsUnreadableInput(t *testing.T) {
	_, err := Load("notes.txt", strings.NewReader("hello"), testIDColumn)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load("broken.xlsx", strings.NewReader("not a zip"), testIDColumn)
	assert.True(t, errors.Is(err, ErrNotTabular))

	_, err = Load("empty.csv", strings.NewReader(""), testIDColumn)
	assert.True(t, errors.Is(err, ErrNotTabular))

	_, err = Load("blank-header.csv", strings.NewReader(",,\n1,2,3\n"), testIDColumn)
	assert.True(t, errors.Is(err, ErrNotTabular))
}
