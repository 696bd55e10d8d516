// internal/explorer/fetch-dataset/models.go
package fetchdataset

import "edudata-explorer/internal/models"

type Input struct {
	Dataset string `json:"dataset"`
	Year    int    `json:"year,omitempty"`
}

func (i Input) Selector() models.DatasetSelector {
	return models.DatasetSelector{Name: i.Dataset, Year: i.Year}
}

type Output struct {
	Dataset *models.Dataset `json:"dataset"`
}
