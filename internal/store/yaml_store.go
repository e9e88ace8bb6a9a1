package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/fileutils"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"

	"gopkg.in/yaml.v3"
)

// YAMLStore keeps rules as a flat YAML mapping:
//
//	COFFEE SHOP: Dining
//	GROCERY MART: Groceries
type YAMLStore struct {
	path   string
	logger logging.Logger
}

// NewYAMLStore returns a YAML backed store for path.
func NewYAMLStore(path string, logger logging.Logger) *YAMLStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &YAMLStore{path: path, logger: logger}
}

// Path returns the backing file.
func (s *YAMLStore) Path() string { return s.path }

// Load returns the rules stored in the file.
func (s *YAMLStore) Load() (*Rules, error) {
	return loadRules(s, s.logger)
}

// LoadEntries walks the mapping node by node, so repeated keys are kept in
// order instead of being rejected by the decoder.
func (s *YAMLStore) LoadEntries() ([]models.CategoryRule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("Category store not found, starting empty", logging.F(logging.FieldFile, s.path))
			return nil, nil
		}
		return nil, &apperror.FileFormatError{Path: s.path, Reason: "cannot read file", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &apperror.FileFormatError{Path: s.path, Reason: "invalid YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &apperror.FileFormatError{Path: s.path, Line: root.Line, Reason: "expected a mapping of key: category"}
	}

	entries := make([]models.CategoryRule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, &apperror.FileFormatError{Path: s.path, Line: k.Line, Reason: "keys and categories must be plain values"}
		}
		if strings.TrimSpace(k.Value) == "" {
			return nil, &apperror.FileFormatError{Path: s.path, Line: k.Line, Reason: "empty key"}
		}
		entries = append(entries, models.CategoryRule{
			Key:      strings.TrimSpace(k.Value),
			Category: strings.TrimSpace(v.Value),
		})
	}
	return entries, nil
}

// Save rewrites the file with rules sorted by category then key.
func (s *YAMLStore) Save(rules *Rules) error {
	entries := rules.Entries()
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range entries {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Category},
		)
	}

	err := fileutils.WriteFileAtomic(s.path, models.PermissionDataFile, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := io.WriteString(w, "{}\n")
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return fmt.Errorf("error marshaling category rules: %w", err)
		}
		return enc.Close()
	})
	if err != nil {
		return &apperror.OutputError{Path: s.path, Err: err}
	}

	s.logger.Debug("Saved category rules",
		logging.F(logging.FieldFile, s.path),
		logging.F(logging.FieldCount, len(entries)))
	return nil
}
