package db

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a list of strings stored as a JSON array
type StringList []string

// Value implements driver.Valuer, nil list is stored as an empty array
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var res []string
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	if res == nil {
		res = []string{}
	}
	*l = res
	return nil
}

// Document is a row of the documents table
type Document struct {
	ID              string       `db:"id"`
	ParentID        string       `db:"parent_id"`
	SourceType      string       `db:"source_type"`
	SenderRaw       string       `db:"sender_raw"`
	SenderTag       string       `db:"sender_tag"`
	Title           string       `db:"title"`
	ContentText     string       `db:"content_text"`
	ContentHTML     string       `db:"content_html"`
	Summary         string       `db:"summary"`
	Handler         string       `db:"handler"`
	Actors          StringList   `db:"actors"`
	Themes          StringList   `db:"themes"`
	Category        string       `db:"category"`
	RelevanceScore  float64      `db:"relevance_score"`
	Link            string       `db:"link"`
	MatchConfidence float64      `db:"match_confidence"`
	Ordinal         int          `db:"ordinal"`
	CreatedAt       time.Time    `db:"created_at"`
	EnrichedAt      sql.NullTime `db:"enriched_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}
