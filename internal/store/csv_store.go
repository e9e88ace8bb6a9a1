package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/fileutils"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"

	"github.com/gocarina/gocsv"
)

// csvRule is one row of the rules CSV. Field order matters for headerless
// decoding.
type csvRule struct {
	Key      string `csv:"key"`
	Category string `csv:"category"`
}

// Header names accepted for the key column. "name" is what older rules
// files used.
var keyHeaders = map[string]bool{"key": true, "name": true, "description": true}

// CSVStore keeps rules in a two-column CSV file with a key,category header.
type CSVStore struct {
	path   string
	logger logging.Logger
}

// NewCSVStore returns a CSV backed store for path.
func NewCSVStore(path string, logger logging.Logger) *CSVStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSVStore{path: path, logger: logger}
}

// Path returns the backing file.
func (s *CSVStore) Path() string { return s.path }

// Load returns the rules stored in the file.
func (s *CSVStore) Load() (*Rules, error) {
	return loadRules(s, s.logger)
}

// LoadEntries reads every row of the file in order.
func (s *CSVStore) LoadEntries() ([]models.CategoryRule, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("Category store not found, starting empty", logging.F(logging.FieldFile, s.path))
			return nil, nil
		}
		return nil, &apperror.FileFormatError{Path: s.path, Reason: "cannot open file", Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, s.formatError(err, "invalid header")
	}

	swapped, err := s.checkHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []csvRule
	if err := gocsv.UnmarshalCSVWithoutHeaders(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, s.formatError(err, "invalid row")
	}

	entries := make([]models.CategoryRule, 0, len(rows))
	for i, row := range rows {
		if swapped {
			row.Key, row.Category = row.Category, row.Key
		}
		if strings.TrimSpace(row.Key) == "" {
			return nil, &apperror.FileFormatError{Path: s.path, Line: i + 2, Reason: "empty key"}
		}
		entries = append(entries, models.CategoryRule{
			Key:      strings.TrimSpace(row.Key),
			Category: strings.TrimSpace(row.Category),
		})
	}
	return entries, nil
}

// checkHeader validates the two header cells and reports whether the file
// lists category before key.
func (s *CSVStore) checkHeader(header []string) (bool, error) {
	if len(header) != 2 {
		return false, &apperror.FileFormatError{
			Path:   s.path,
			Line:   1,
			Reason: fmt.Sprintf("expected 2 columns (key,category), got %d", len(header)),
		}
	}
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")))
	second := strings.ToLower(strings.TrimSpace(header[1]))

	switch {
	case keyHeaders[first] && second == "category":
		return false, nil
	case first == "category" && keyHeaders[second]:
		return true, nil
	default:
		return false, &apperror.FileFormatError{
			Path:   s.path,
			Line:   1,
			Reason: fmt.Sprintf("unrecognized header %q", strings.Join(header, ",")),
		}
	}
}

func (s *CSVStore) formatError(err error, reason string) error {
	line := 0
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		line = parseErr.Line
	}
	return &apperror.FileFormatError{Path: s.path, Line: line, Reason: reason, Err: err}
}

// Save rewrites the file with rules sorted by category then key.
func (s *CSVStore) Save(rules *Rules) error {
	entries := rules.Entries()
	rows := make([]csvRule, len(entries))
	for i, e := range entries {
		rows[i] = csvRule{Key: e.Key, Category: e.Category}
	}

	err := fileutils.WriteFileAtomic(s.path, models.PermissionDataFile, func(w io.Writer) error {
		if len(rows) == 0 {
			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"key", "category"}); err != nil {
				return err
			}
			cw.Flush()
			return cw.Error()
		}
		return gocsv.Marshal(rows, w)
	})
	if err != nil {
		return &apperror.OutputError{Path: s.path, Err: err}
	}

	s.logger.Debug("Saved category rules",
		logging.F(logging.FieldFile, s.path),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
