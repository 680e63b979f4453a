package report

import (
	"fmt"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

const competencyHeader = "能力指標"

// NormalizedCSV is the normalized response set as a flat table: upload columns with scores
// in place of answers, then 学年 and クラス when an identifier column exists.
func NormalizedCSV(set *models.ResponseSet) export.Dataset {
	columns := dumpColumns(set)
	ds := export.Dataset{Headers: columns, Rows: make([]map[string]string, 0, len(set.Rows))}
	for _, r := range set.Rows {
		row := make(map[string]string, len(columns))
		for _, c := range columns {
			row[c] = dumpText(set, r, c)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// CompetencyDigest tabulates competency averages overall and per grade with respondents.
func CompetencyDigest(in Input) export.Dataset {
	grades := in.Breakdown.NonEmptyGrades()

	headers := []string{competencyHeader, in.Config.OverallLabel}
	for _, g := range grades {
		headers = append(headers, g.Label)
	}

	ds := export.Dataset{Headers: headers}
	for _, name := range in.Config.Competencies.Names() {
		row := map[string]string{
			competencyHeader:       name,
			in.Config.OverallLabel: formatAverage(in.Breakdown.Overall.Competency(name)),
		}
		for _, g := range grades {
			row[g.Label] = formatAverage(g.Aggregate.Competency(name))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func formatAverage(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// BuildNormalizedCSV renders the normalized response export.
func BuildNormalizedCSV(in Input, exporter *export.CSVExporter) (Artifact, error) {
	data, err := exporter.Render(NormalizedCSV(in.Responses))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:        "normalized",
		Kind:        models.ArtifactNormalizedCSV,
		Filename:    NormalizedCSVFilename(in),
		ContentType: export.ContentTypeCSV,
		Data:        data,
	}, nil
}

// BuildCompetencyPDF renders the competency digest. It reports false without error when
// the exporter has no usable font.
func BuildCompetencyPDF(in Input, exporter *export.PDFExporter) (Artifact, bool, error) {
	if !exporter.Enabled() {
		return Artifact{}, false, nil
	}

	subtitle := fmt.Sprintf("%s / %s / %d名", in.Period, in.Responses.Filename, in.Breakdown.Overall.Respondents)
	data, err := exporter.Render(CompetencyDigest(in), fmt.Sprintf("RGB意識調査%s 能力指標平均", in.Config.CurrentPeriod), subtitle)
	if err != nil {
		return Artifact{}, false, err
	}
	return Artifact{
		Name:        "competency_digest",
		Kind:        models.ArtifactCompetencyPDF,
		Filename:    CompetencyPDFFilename(in),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, true, nil
}
