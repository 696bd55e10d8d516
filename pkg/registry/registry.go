// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const YearPlaceholder = "{year}"

// Default returns the built-in catalog of IPEDS endpoints.
func Default() *DatasetRegistry {
	return &DatasetRegistry{
		Version: "1.0.0",
		Datasets: []Dataset{
			{
				Name:            "IPEDS Directory",
				Description:     "Institution names, locations and identifiers",
				Path:            "college-university/ipeds/directory/{year}/",
				YearPartitioned: true,
				Tags:            []string{"ipeds", "college-university"},
			},
			{
				Name:            "IPEDS Institutional Characteristics",
				Description:     "Control, level, calendar system and offerings",
				Path:            "college-university/ipeds/institutional-characteristics/{year}/",
				YearPartitioned: true,
				Tags:            []string{"ipeds", "college-university"},
			},
			{
				Name:            "IPEDS Admissions",
				Description:     "Applicants, admissions and enrollees",
				Path:            "college-university/ipeds/admissions/{year}/",
				YearPartitioned: true,
				Tags:            []string{"ipeds", "college-university"},
			},
		},
	}
}

func LoadRegistry(path string) (*DatasetRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg DatasetRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON.
func SaveRegistry(path string, reg *DatasetRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadWithDefaults merges the file at path, if any, over the built-in catalog.
func LoadWithDefaults(path string) (*DatasetRegistry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}
	extra, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	reg.Merge(extra)
	return reg, nil
}

// Lookup finds a dataset by exact name.
func (r *DatasetRegistry) Lookup(name string) (Dataset, bool) {
	for _, d := range r.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// Names returns dataset names in registry order.
func (r *DatasetRegistry) Names() []string {
	names := make([]string, len(r.Datasets))
	for i, d := range r.Datasets {
		names[i] = d.Name
	}
	return names
}

// Merge adds datasets from other, replacing entries with the same name.
func (r *DatasetRegistry) Merge(other *DatasetRegistry) {
	for _, d := range other.Datasets {
		replaced := false
		for i := range r.Datasets {
			if r.Datasets[i].Name == d.Name {
				r.Datasets[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			r.Datasets = append(r.Datasets, d)
		}
	}
	if other.Version != "" {
		r.Version = other.Version
	}
	if other.LastUpdated != "" {
		r.LastUpdated = other.LastUpdated
	}
}

func (r *DatasetRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Datasets))
	for i, d := range r.Datasets {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("dataset %d: name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("dataset %q: duplicate name", d.Name)
		}
		seen[d.Name] = true
		if d.Path == "" {
			return fmt.Errorf("dataset %q: path is required", d.Name)
		}
		hasPlaceholder := strings.Contains(d.Path, YearPlaceholder)
		if d.YearPartitioned && !hasPlaceholder {
			return fmt.Errorf("dataset %q: year-partitioned path must contain %s", d.Name, YearPlaceholder)
		}
		if !d.YearPartitioned && hasPlaceholder {
			return fmt.Errorf("dataset %q: path has %s but dataset is not year-partitioned", d.Name, YearPlaceholder)
		}
	}
	return nil
}

// ResolveURL substitutes year into the path and joins it onto base.
func (d Dataset) ResolveURL(base string, year int) string {
	path := strings.TrimLeft(d.Path, "/")
	if d.YearPartitioned {
		path = strings.ReplaceAll(path, YearPlaceholder, strconv.Itoa(year))
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path
}
