package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Report is the analytics output for one channel.
type Report struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Country         string   `json:"country,omitempty"`
	PublishedAt     string   `json:"publishedAt,omitempty"`
	SubscriberCount int64    `json:"subscriberCount"`
	ViewCount       int64    `json:"viewCount"`
	VideoCount      int64    `json:"videoCount"`
	Videos          []Video  `json:"videos"`
	VideoLinks      []string `json:"videoLinks"`

	ShortCount       int      `json:"shortCount"`
	UploadsInspected int      `json:"uploadsInspected"`
	FirstAdCount     int      `json:"firstAdCount"`
	FirstFiveAdCount int      `json:"firstFiveAdCount"`
	OverallAdCount   int      `json:"overallAdCount"`
	ViewsToSubRatio  *float64 `json:"viewsToSubRatio,omitempty"`

	// Nil when the demographic stage failed; its fields are then absent.
	*Demographics
	DemographicsError string `json:"demographicsError,omitempty"`
}

// Demographics is the commenter-derived audience estimate.
type Demographics struct {
	MalePercentage       float64            `json:"malePercentage"`
	FemalePercentage     float64            `json:"femalePercentage"`
	AuthorsSampled       int                `json:"authorsSampled"`
	CreationYearDivision YearHistogram      `json:"creation_year_division"`
	AgeBrackets          map[string]float64 `json:"age_brackets"`
}

// YearCount is one bucket of the account-creation histogram.
type YearCount struct {
	Year  string
	Count int
}

// YearHistogram is kept in ascending year order and marshals to a JSON object
// that preserves that order.
type YearHistogram []YearCount

func (h YearHistogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, yc := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(yc.Year)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(yc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Count returns the tally for year, or 0.
func (h YearHistogram) Count(year string) int {
	for _, yc := range h {
		if yc.Year == year {
			return yc.Count
		}
	}
	return 0
}

// InsightResponse is the API envelope for a report.
type InsightResponse struct {
	Data *Report `json:"data"`
}
