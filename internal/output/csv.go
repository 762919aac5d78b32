package output

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// StatsRecord is one exported invocation: the scene identity plus the
// statistics computed over its masked region.
type StatsRecord struct {
	Scene       string  `csv:"scene"`
	Source      string  `csv:"source"`
	ValidPixels int     `csv:"valid_pixels"`
	Mean        float64 `csv:"mean"`
	Max         float64 `csv:"max"`
	Min         float64 `csv:"min"`
	Std         float64 `csv:"std"`
}

// AppendStats appends one record to the CSV at path, writing the header only
// when the file is new or empty.
func AppendStats(path string, record StatsRecord) error {
	records := []*StatsRecord{&record}

	info, err := os.Stat(path)
	exists := err == nil && info.Size() > 0

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open csv %s: %w", path, err)
	}
	defer file.Close()

	if exists {
		if err := gocsv.MarshalWithoutHeaders(&records, file); err != nil {
			return fmt.Errorf("failed to append csv record: %w", err)
		}
		return nil
	}
	if err := gocsv.MarshalFile(&records, file); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
