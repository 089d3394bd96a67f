package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"cryptoForecaster/internal/domain"
)

// WriteBarsToCSV exports price bars to a CSV file, one row per bar.
func WriteBarsToCSV(bars []*domain.PriceBar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"symbol", "ts", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Symbol,
			b.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}
