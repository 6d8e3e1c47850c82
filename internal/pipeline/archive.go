package pipeline

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"insurstat/pkg/contracts/domain"
)

// sheet is one parseable table candidate pulled out of an archive member: a
// CSV member yields one, an Excel member one per worksheet.
type sheet struct {
	Member string
	Name   string
	Rows   [][]string
}

// walkArchive extracts every tabular sheet from the cached ZIP. Members that
// are not spreadsheets or are too small to hold a table are skipped silently;
// members that fail to read are reported through the failure callback and do
// not stop the walk.
func walkArchive(path string, minMemberBytes int64, fail func(TableFailure)) ([]sheet, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer reader.Close()

	var sheets []sheet
	for _, member := range reader.File {
		name := strings.ToLower(member.Name)
		isCSV := strings.HasSuffix(name, ".csv")
		isExcel := strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls")
		if !isCSV && !isExcel {
			continue
		}
		if minMemberBytes > 0 && int64(member.UncompressedSize64) < minMemberBytes {
			continue
		}

		data, err := readMember(member)
		if err != nil {
			fail(TableFailure{Member: member.Name, Reason: err.Error()})
			continue
		}
		if isCSV {
			rows, err := parseCSV(data)
			if err != nil {
				fail(TableFailure{Member: member.Name, Reason: err.Error()})
				continue
			}
			sheets = append(sheets, sheet{Member: member.Name, Name: "csv", Rows: rows})
			continue
		}
		excelSheets, err := parseExcel(member.Name, data)
		if err != nil {
			fail(TableFailure{Member: member.Name, Reason: err.Error()})
			continue
		}
		sheets = append(sheets, excelSheets...)
	}
	return sheets, nil
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read member: %w", err)
	}
	return data, nil
}

func parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func parseExcel(memberName string, data []byte) ([]sheet, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	var sheets []sheet
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		sheets = append(sheets, sheet{Member: memberName, Name: name, Rows: rows})
	}
	return sheets, nil
}

// observationCount sums observations per metric label, for debug logging.
func observationCount(observations []domain.Observation) map[string]int {
	counts := make(map[string]int)
	for _, obs := range observations {
		counts[obs.Metric]++
	}
	return counts
}
