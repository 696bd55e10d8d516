// pkg/registry/schema.go
package registry

// DatasetRegistry lists the endpoints the explorer can fetch.
type DatasetRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Datasets    []Dataset `json:"datasets"`
}

// Dataset maps a display name to a path template under the API base URL.
// Path may contain the {year} placeholder.
type Dataset struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Path            string   `json:"path"`
	YearPartitioned bool     `json:"yearPartitioned"`
	Tags            []string `json:"tags,omitempty"`
}
