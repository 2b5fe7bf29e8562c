package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// MaxImportCards bounds a single CSV import.
const MaxImportCards = 5000

// CardInput is the user-supplied content of a new card.
type CardInput struct {
	Front string `json:"front" validate:"required,max=2000"`
	Back  string `json:"back"  validate:"required,max=2000"`
}

// ParseCardsCSV reads front,back rows. A first row of exactly "front","back"
// (any case) is treated as a header. Extra columns are ignored; blank lines
// are skipped.
func ParseCardsCSV(r io.Reader) ([]CardInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []CardInput
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewValidationError("csv", err.Error())
		}

		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 2 {
			return nil, domain.NewValidationError("csv", fmt.Sprintf("line %d: expected front,back", line))
		}

		front := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		back := strings.TrimSpace(record[1])
		if front == "" || back == "" {
			return nil, domain.NewValidationError("csv", fmt.Sprintf("line %d: front and back are required", line))
		}

		out = append(out, CardInput{Front: front, Back: back})
		if len(out) > MaxImportCards {
			return nil, ErrImportTooLarge
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyImport
	}
	return out, nil
}

func isHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")))
	second := strings.ToLower(strings.TrimSpace(record[1]))
	return first == "front" && second == "back"
}

// WriteCardsCSV writes a header row followed by one front,back row per card.
func WriteCardsCSV(w io.Writer, cards []*domain.Card) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"front", "back"}); err != nil {
		return err
	}
	for _, c := range cards {
		if err := writer.Write([]string{c.Front, c.Back}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
