package classifier

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Classes lists the iris species in the order probability vectors are aligned
// to. The index of a class here is its numeric label in the dataset.
var Classes = []string{"setosa", "versicolor", "virginica"}

//go:embed iris.csv
var irisCSV string

// loadDataset parses the embedded iris dataset into a feature matrix and a
// parallel slice of class indices.
func loadDataset() ([][]float64, []int, error) {
	reader := csv.NewReader(strings.NewReader(irisCSV))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse iris dataset: %w", err)
	}

	classIndex := make(map[string]int, len(Classes))
	for i, name := range Classes {
		classIndex[name] = i
	}

	var features [][]float64
	var labels []int
	for i, record := range records {
		if i == 0 {
			continue // header
		}
		if len(record) != 5 {
			return nil, nil, fmt.Errorf("row %d: expected 5 columns, got %d", i, len(record))
		}

		row := make([]float64, 4)
		for j := 0; j < 4; j++ {
			row[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i, err)
			}
		}

		label, ok := classIndex[record[4]]
		if !ok {
			return nil, nil, fmt.Errorf("row %d: unknown species %q", i, record[4])
		}

		features = append(features, row)
		labels = append(labels, label)
	}

	return features, labels, nil
}
