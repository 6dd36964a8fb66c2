// Package export renders the card list as downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Header is the column row shared by the flat formats.
var Header = []string{"Name", "Phone(s)", "Email", "Other"}

// Artifact is a rendered export ready to be written or streamed.
type Artifact struct {
	Format      constants.ExportFormat
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Service renders card lists. It holds no state besides its logger.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Export renders cards in format. An empty list is rejected with ErrNothingToExport.
func (s *Service) Export(format constants.ExportFormat, cards []entity.Card) (Artifact, error) {
	start := time.Now()
	if len(cards) == 0 {
		s.logger.Warn("export.rejected.empty", "format", format)
		return Artifact{}, common.ErrNothingToExport
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case constants.FormatJSON:
		data, err = JSON(cards)
	case constants.FormatCSV:
		data, err = CSV(cards)
	case constants.FormatXLSX:
		data, err = XLSX(cards)
	case constants.FormatParquet:
		data, err = Parquet(cards)
	default:
		return Artifact{}, common.NewAppError("EXPORT_FORMAT", fmt.Sprintf("unsupported format %q", format), common.ErrInvalidInput)
	}
	if err != nil {
		s.logger.Error("export.failed", "format", format, "error", err)
		return Artifact{}, err
	}

	s.logger.Info("export.ok",
		"format", format,
		"rows", len(cards),
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Artifact{
		Format:      format,
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Data:        data,
		Rows:        len(cards),
	}, nil
}

// JSON pretty-prints the list with two-space indentation.
func JSON(cards []entity.Card) ([]byte, error) {
	norm := normalized(cards)
	b, err := json.MarshalIndent(norm, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return b, nil
}

// CSV writes one row per card with every field quoted and embedded quotes
// doubled. Sequence fields are joined with "; ".
func CSV(cards []entity.Card) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteByte('\n')
	for _, c := range cards {
		for i, v := range row(c) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(v))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// XLSX builds a single-sheet workbook with the same columns as CSV.
func XLSX(cards []entity.Card) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Cards"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, c := range cards {
		for i, v := range row(c) {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // name
	_ = f.SetColWidth(sheet, "B", "B", 32) // phones
	_ = f.SetColWidth(sheet, "C", "C", 32) // email
	_ = f.SetColWidth(sheet, "D", "D", 60) // other

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Parquet writes one row per card with phones and other as list columns.
func Parquet(cards []entity.Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, normalized(cards)); err != nil {
		return nil, fmt.Errorf("parquet write: %w", err)
	}
	return buf.Bytes(), nil
}

func row(c entity.Card) []string {
	return []string{
		c.Name,
		strings.Join(c.Phones, constants.ListJoiner),
		c.Email,
		strings.Join(c.Other, constants.ListJoiner),
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func normalized(cards []entity.Card) []entity.Card {
	out := make([]entity.Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}
