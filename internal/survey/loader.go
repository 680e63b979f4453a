package survey

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported survey file format")
	// ErrNotTabular is returned when the upload cannot be read as a header row plus data rows.
	ErrNotTabular = errors.New("survey file is not a tabular document")
)

const utf8BOM = "\ufeff"

// Load reads an uploaded survey export. The first sheet (xlsx) or the whole file (csv) is
// read as one header row followed by one row per respondent.
func Load(filename string, r io.Reader, identifierColumn string) (*models.Dataset, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	return buildDataset(filename, records, identifierColumn)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNotTabular)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	return records, nil
}

func buildDataset(filename string, records [][]string, identifierColumn string) (*models.Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrNotTabular)
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
	}
	if !hasNamedHeader(headers) {
		return nil, fmt.Errorf("%w: header row is empty", ErrNotTabular)
	}

	identifierColumn = strings.TrimSpace(identifierColumn)
	ds := &models.Dataset{
		Filename:         filepath.Base(filename),
		Headers:          headers,
		IdentifierColumn: identifierColumn,
	}
	for _, h := range headers {
		if identifierColumn != "" && h == identifierColumn {
			ds.HasIdentifier = true
			break
		}
	}

	for i, record := range records[1:] {
		if blankRecord(record) {
			continue
		}

		answers := make(map[string]string, len(headers))
		for col, h := range headers {
			if h == "" {
				continue
			}
			if _, dup := answers[h]; dup {
				continue
			}
			value := ""
			if col < len(record) {
				value = record[col]
			}
			answers[h] = value
		}

		row := models.RawResponse{Row: i + 2, Answers: answers}
		if ds.HasIdentifier {
			row.Identifier = strings.TrimSpace(answers[identifierColumn])
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func hasNamedHeader(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return true
		}
	}
	return false
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
