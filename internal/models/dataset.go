package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Year bounds accepted for year-partitioned datasets.
const (
	MinYear     = 1980
	MaxYear     = 2023
	DefaultYear = 2003
)

// DatasetSelector identifies which endpoint to call. Year is zero for
// datasets that are not partitioned by year.
type DatasetSelector struct {
	Name string `json:"name"`
	Year int    `json:"year,omitempty"`
}

// Key is the memoization key; it covers the full (name, year) tuple.
func (s DatasetSelector) Key() string {
	return fmt.Sprintf("%s:%d", s.Name, s.Year)
}

func (s DatasetSelector) String() string {
	if s.Year == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s (%d)", s.Name, s.Year)
}

// Dataset is a successfully fetched and decoded response body. Data holds
// the raw JSON so object key order survives for the digest.
type Dataset struct {
	Selector  DatasetSelector `json:"selector"`
	URL       string          `json:"url"`
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Cached    bool            `json:"cached"`
}
