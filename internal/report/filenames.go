package report

import (
	"fmt"

	"github.com/noah-isme/rgb-survey-api/internal/survey"
)

const unknownMonth = "UnknownMonth"

// TemplateReportFilename is the download name of the filled staff-meeting template.
const TemplateReportFilename = "【その１データ】 RGB意識調査の質問項目と表(職員会議用）.xlsx"

func month(period string) string {
	if m := survey.MonthLabel(period); m != "" {
		return m
	}
	return unknownMonth
}

// GradeReportFilename names the per-grade distribution workbook.
func GradeReportFilename(in Input, label string) string {
	return fmt.Sprintf("1.RGB意識調査%s.%s結果（%s・分布あり）.xlsx", in.Config.CurrentPeriod, month(in.Period), label)
}

// RadarFilename names the radar chart workbook.
func RadarFilename(in Input) string {
	return fmt.Sprintf("【その２データ】RGBレーダーチャート（%s職員会議資料用）.xlsx", in.Config.CurrentPeriod)
}

// TrendFilename names the trend chart workbook, spanning the first benchmark period to the
// current one.
func TrendFilename(in Input) string {
	first := in.Config.CurrentPeriod
	if len(in.Config.Benchmarks.Periods) > 0 {
		first = in.Config.Benchmarks.Periods[0]
	}
	return fmt.Sprintf("【その３データ】【%s～%s】RGB推移グラフ（%s職員会議用）.xlsx", first, in.Config.CurrentPeriod, in.Config.CurrentPeriod)
}

// NormalizedCSVFilename names the normalized response export.
func NormalizedCSVFilename(in Input) string {
	return fmt.Sprintf("RGB意識調査%s.%s正規化データ.csv", in.Config.CurrentPeriod, month(in.Period))
}

// CompetencyPDFFilename names the competency digest.
func CompetencyPDFFilename(in Input) string {
	return fmt.Sprintf("RGB意識調査%s.%s能力指標平均.pdf", in.Config.CurrentPeriod, month(in.Period))
}
