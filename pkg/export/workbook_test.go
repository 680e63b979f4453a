package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbookWritesCellsAndMerges(t *testing.T) {
	wb := NewWorkbook()
	defer wb.Close()

	first, err := wb.AddSheet("第二回1年")
	require.NoError(t, err)
	second, err := wb.AddSheet("集計結果表示")
	require.NoError(t, err)
	_, err = wb.AddSheet("集計結果表示")
	require.Error(t, err)

	require.NoError(t, first.SetCell(0, 0, "人数", FormatBold))
	require.NoError(t, first.SetCell(13, 2, 3.25, FormatAverage2))
	require.NoError(t, second.MergeCells(1, 0, 3, 0, "R", FormatCategory))
	require.NoError(t, second.MergeCells(4, 1, 4, 1, "single", FormatCategory))
	require.Error(t, second.MergeCells(3, 0, 1, 0, "bad", FormatCategory))
	require.NoError(t, second.SetColumnWidth(4, 7, 8))

	data, err := wb.Bytes()
	require.NoError(t, err)

	f := reopen(t, data)
	assert.Equal(t, []string{"第二回1年", "集計結果表示"}, f.GetSheetList())

	v, err := f.GetCellValue("第二回1年", "A1")
	require.NoError(t, err)
	assert.Equal(t, "人数", v)

	v, err = f.GetCellValue("第二回1年", "C14")
	require.NoError(t, err)
	assert.Equal(t, "3.25", v)

	merged, err := f.GetMergeCells("集計結果表示")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A2", merged[0].GetStartAxis())
	assert.Equal(t, "A4", merged[0].GetEndAxis())
	assert.Equal(t, "R", merged[0].GetCellValue())

	v, err = f.GetCellValue("集計結果表示", "B5")
	require.NoError(t, err)
	assert.Equal(t, "single", v)

	width, err := f.GetColWidth("集計結果表示", "F")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, width, 0.01)
}

func TestWorkbookAddChart(t *testing.T) {
	wb := NewWorkbook()
	defer wb.Close()

	sheet, err := wb.AddSheet("学年別比較")
	require.NoError(t, err)
	require.NoError(t, sheet.SetCell(0, 0, "Competency", FormatNone))
	require.NoError(t, sheet.SetCell(0, 1, "1年", FormatNone))
	require.NoError(t, sheet.SetCell(1, 0, "協働力", FormatNone))
	require.NoError(t, sheet.SetCell(1, 1, 3.1, FormatNone))

	lo, hi := 1.0, 4.0
	err = sheet.AddChart(ChartSpec{
		Type:      ChartRadar,
		Title:     "RGB Competency Radar Chart - 学年別比較",
		AnchorRow: 1,
		AnchorCol: 5,
		YMin:      &lo,
		YMax:      &hi,
		Series: []ChartSeries{{
			NameRow: 0, NameCol: 1,
			Categories: Column(0, 1, 1),
			Values:     Column(1, 1, 1),
			Color:      "4F81BD",
		}},
	})
	require.NoError(t, err)

	require.Error(t, sheet.AddChart(ChartSpec{Type: ChartRadar}))
	require.Error(t, sheet.AddChart(ChartSpec{Type: "pie", Series: []ChartSeries{{Categories: Column(0, 1, 1), Values: Column(1, 1, 1)}}}))

	_, err = wb.Bytes()
	require.NoError(t, err)
}

func TestAbsoluteRange(t *testing.T) {
	ref, err := absoluteRange("学年別比較", 1, 0, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, "'学年別比較'!$A$2:$A$9", ref)

	ref, err = absoluteRange("Overall", 0, 1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "'Overall'!$B$1", ref)
}

func TestTemplatePreservesStyleWhenSettingNumbers(t *testing.T) {
	src := excelize.NewFile()
	_, err := src.NewSheet("意識調査")
	require.NoError(t, err)
	require.NoError(t, src.SetCellValue("意識調査", "C2", "質問"))
	bold, err := src.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, src.SetCellStyle("意識調査", "M2", "M2", bold))
	buf, err := src.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, src.Close())

	tpl, err := OpenTemplate(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer tpl.Close()

	_, err = tpl.Sheet("missing")
	require.ErrorIs(t, err, ErrSheetNotFound)

	sheet, err := tpl.Sheet("意識調査")
	require.NoError(t, err)

	text, err := sheet.Text(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "質問", text)

	n, err := sheet.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, sheet.SetNumber(1, 12, 3.456, "0.0"))

	out, err := tpl.Bytes()
	require.NoError(t, err)

	f := reopen(t, out)
	v, err := f.GetCellValue("意識調査", "M2")
	require.NoError(t, err)
	assert.Equal(t, "3.5", v)

	styleID, err := f.GetCellStyle("意識調査", "M2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestOpenTemplateRejectsGarbage(t *testing.T) {
	_, err := OpenTemplate(bytes.NewReader([]byte("nope")))
	require.Error(t, err)
}
