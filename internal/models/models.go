package models

import (
	"strings"
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UploadedFile is one ingested input. Data holds a base64 data URL for
// images and the extracted plain text for documents.
type UploadedFile struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Data    string `json:"data"`
	Preview string `json:"preview,omitempty"` // images only
}

// IsImage reports whether the file carries image data rather than text.
func (f UploadedFile) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// ResearchGap is one gap reported by the analysis.
type ResearchGap struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity"` // low | medium | high
	RelatedConcepts []string `json:"relatedConcepts,omitempty"`
}

// ConceptNode is a vertex of the concept graph.
type ConceptNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
	Value int    `json:"val"`
}

// ConceptLink connects two ConceptNode IDs.
type ConceptLink struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength"`
}

type ConceptGraph struct {
	Nodes []ConceptNode `json:"nodes"`
	Links []ConceptLink `json:"links"`
}

// SaturationRecord scores how thoroughly a topic is already covered (0-100).
type SaturationRecord struct {
	Topic      string  `json:"topic"`
	Saturation float64 `json:"saturation"`
	Trend      string  `json:"trend,omitempty"` // rising | stable | declining
}

type ResearchQuestion struct {
	Question    string `json:"question"`
	Rationale   string `json:"rationale"`
	Methodology string `json:"methodology,omitempty"`
	Impact      string `json:"impact,omitempty"`
}

// AnalysisResult is the fixed-schema payload returned by the generative model.
type AnalysisResult struct {
	Summary    string             `json:"summary"`
	Gaps       []ResearchGap      `json:"gaps"`
	Graph      ConceptGraph       `json:"conceptGraph"`
	Saturation []SaturationRecord `json:"saturation"`
	Questions  []ResearchQuestion `json:"questions"`
}

// AnalysisRecord is a saved analysis in the user's history.
type AnalysisRecord struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	Title      string         `db:"title" json:"title"`
	SourceText string         `db:"source_text" json:"-"`
	FileNames  []string       `db:"file_names" json:"file_names"`
	Result     AnalysisResult `db:"result" json:"result"`
	Status     string         `db:"status" json:"status"` // saved | indexing | ready | failed
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// AnalysisChunk represents one embedded text chunk of an analysis' sources.
type AnalysisChunk struct {
	ID         string    `db:"id" json:"id"`
	AnalysisID string    `db:"analysis_id" json:"analysis_id"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"embedding"` // pgvector column
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage represents an individual chat message (user or assistant).
type ChatMessage struct {
	Role    string `json:"role"`    // "user" or "model"
	Content string `json:"content"` // message text
}
