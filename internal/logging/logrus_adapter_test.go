package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(level logrus.Level) (Logger, *bytes.Buffer) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestLogrusAdapter_FieldsAndErrors(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.DebugLevel)

	logger.
		WithField(FieldFile, "in.csv").
		WithError(errors.New("boom")).
		Warn("row skipped", F(FieldLine, 7))

	out := buf.String()
	assert.Contains(t, out, "row skipped")
	assert.Contains(t, out, "file_path=in.csv")
	assert.Contains(t, out, "line=7")
	assert.Contains(t, out, "boom")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	require.NotNil(t, logger)
	logger.Error("nothing to see")
}

func TestMockLogger_SharesEntriesWithChildren(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldSheet, "January")
	child.Info("sheet written", F(FieldCount, 3))
	mock.WithError(errors.New("x")).Error("failed")

	entries := mock.Entries()
	require.Len(t, entries, 2)

	sheet, ok := entries[0].FieldValue(FieldSheet)
	assert.True(t, ok)
	assert.Equal(t, "January", sheet)
	assert.True(t, mock.HasEntry("ERROR", "failed"))
	assert.Len(t, mock.EntriesByLevel("INFO"), 1)
	assert.EqualError(t, entries[1].Error, "x")
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
