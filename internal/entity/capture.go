package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionSource records which extractor produced a card.
type ExtractionSource string

const (
	SourceAI    ExtractionSource = "ai"
	SourceRegex ExtractionSource = "regex"
)

// Capture describes one processed image for data transfer between layers.
type Capture struct {
	ID            uuid.UUID        `json:"id"`
	SourcePath    string           `json:"source_path,omitempty"`
	OCRText       string           `json:"ocr_text"`
	OCRConfidence float32          `json:"ocr_confidence"`
	Source        ExtractionSource `json:"source"`
	Card          Card             `json:"card"`
	StartedAt     time.Time        `json:"started_at"`
	Duration      time.Duration    `json:"duration"`
}
