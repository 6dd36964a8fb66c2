package constants

import "strings"

// ExportFormat is the artifact type produced by the exporter.
type ExportFormat string

const (
	FormatJSON    ExportFormat = "json"
	FormatCSV     ExportFormat = "csv"
	FormatXLSX    ExportFormat = "xlsx"
	FormatParquet ExportFormat = "parquet"
)

var exportFilenames = map[ExportFormat]string{
	FormatJSON:    "cards.json",
	FormatCSV:     "cards.csv",
	FormatXLSX:    "cards.xlsx",
	FormatParquet: "cards.parquet",
}

var exportContentTypes = map[ExportFormat]string{
	FormatJSON:    "application/json",
	FormatCSV:     "text/csv",
	FormatXLSX:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatParquet: "application/vnd.apache.parquet",
}

// ParseExportFormat accepts a format name or a filename with a known extension.
func ParseExportFormat(s string) (ExportFormat, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	f := ExportFormat(s)
	_, ok := exportFilenames[f]
	return f, ok
}

// Filename is the default artifact name for the format.
func (f ExportFormat) Filename() string { return exportFilenames[f] }

// ContentType is the MIME type of the artifact.
func (f ExportFormat) ContentType() string { return exportContentTypes[f] }
