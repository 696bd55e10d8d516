// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"edudata-explorer/pkg/registry"
)

const defaultRegistryPath = "configs/datasets.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		name := fs.String("name", "", "Dataset name shown to users (e.g., IPEDS Enrollment)")
		description := fs.String("description", "", "Description")
		urlPath := fs.String("urlPath", "", "Path under the API base, {year} marks the year (e.g., college-university/ipeds/fall-enrollment/{year}/)")
		tags := fs.String("tags", "", "Comma-separated tags")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *name == "" || *urlPath == "" {
			fs.Usage()
			return fmt.Errorf("name and urlPath are required for add")
		}
		ds := registry.Dataset{
			Name:            *name,
			Description:     *description,
			Path:            *urlPath,
			YearPartitioned: strings.Contains(*urlPath, registry.YearPlaceholder),
			Tags:            splitTags(*tags),
		}
		if err := addDataset(*path, ds); err != nil {
			return fmt.Errorf("adding dataset: %w", err)
		}
		fmt.Fprintf(out, "Added dataset: %s\n", ds.Name)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		name := fs.String("name", "", "Dataset name to update")
		field := fs.String("field", "", "Field to update (description, urlPath, tags, yearPartitioned)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *name == "" || *field == "" {
			fs.Usage()
			return fmt.Errorf("name and field are required for update")
		}
		if err := updateDataset(*path, *name, *field, *value); err != nil {
			return fmt.Errorf("updating dataset: %w", err)
		}
		fmt.Fprintf(out, "Updated dataset %s, field %s to %s\n", *name, *field, *value)

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		path := fs.String("path", "", "Registry file merged over the built-in datasets")
		if err := fs.Parse(args); err != nil {
			return err
		}
		reg, err := registry.LoadWithDefaults(*path)
		if err != nil {
			return err
		}
		for i, d := range reg.Datasets {
			fmt.Fprintf(out, "%d. %s\t%s\n", i+1, d.Name, d.Path)
		}

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		reg, err := validateRegistry(*path)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d datasets.\n", len(reg.Datasets))

	case "help":
		help()

	default:
		help()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func addDataset(path string, ds registry.Dataset) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.DatasetRegistry{
				Version:  "1.0.0",
				Datasets: []registry.Dataset{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if _, exists := reg.Lookup(ds.Name); exists {
		return fmt.Errorf("dataset %s already exists", ds.Name)
	}

	reg.Datasets = append(reg.Datasets, ds)
	return save(reg, path)
}

func updateDataset(path, name, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Datasets {
		if reg.Datasets[i].Name != name {
			continue
		}
		found = true
		switch field {
		case "description":
			reg.Datasets[i].Description = value
		case "urlPath":
			reg.Datasets[i].Path = value
			reg.Datasets[i].YearPartitioned = strings.Contains(value, registry.YearPlaceholder)
		case "tags":
			reg.Datasets[i].Tags = splitTags(value)
		case "yearPartitioned":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid yearPartitioned value: %w", err)
			}
			reg.Datasets[i].YearPartitioned = b
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("dataset %s not found", name)
	}
	return save(reg, path)
}

func validateRegistry(path string) (*registry.DatasetRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	if len(reg.Datasets) == 0 {
		return nil, fmt.Errorf("registry contains no datasets")
	}
	return reg, nil
}

// save validates reg before writing it, creating the directory if needed.
func save(reg *registry.DatasetRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return registry.SaveRegistry(path, reg)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a dataset to a registry file
  update   Update a field of an existing dataset
  list     List built-in datasets merged with a registry file
  validate Validate a registry file
  help     Show this help message

Examples:
  registry-updater add -name "IPEDS Fall Enrollment" -urlPath "college-university/ipeds/fall-enrollment/{year}/" -tags ipeds
  registry-updater update -name "IPEDS Fall Enrollment" -field description -value "Headcount by level"
  registry-updater list -path configs/datasets.json
  registry-updater validate -path configs/datasets.json

Point explorer.registry_path at the file to make its datasets selectable.`)
}
