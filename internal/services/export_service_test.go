package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

func TestExportService_CSV(t *testing.T) {
	tb := loadedBank(t, "bio.md", "math.csv")
	ctx := context.Background()
	_, err := tb.service.UpdateRank(ctx, mathID, 2, 5)
	require.NoError(t, err)

	exporter := NewExportService(tb.service, discardLogger())
	data, err := exporter.Export(ctx, models.ExportRequest{FileIDs: []string{mathID}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, progressHeaders, records[0])
	assert.Equal(t, []string{"math.csv", mathID + "-001", "2", "single_choice", "Math", "What is 2+2?"}, records[1])
	assert.Equal(t, "5", records[2][2])
}

func TestExportService_Excel(t *testing.T) {
	tb := loadedBank(t, "bio.md")
	ctx := context.Background()

	exporter := NewExportService(tb.service, discardLogger())
	data, err := exporter.Export(ctx, models.ExportRequest{Format: models.ExportXLSX})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{progressSheet}, f.GetSheetList())
	rows, err := f.GetRows(progressSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, progressHeaders, rows[0])
	assert.Equal(t, "bio.md", rows[1][0])
	assert.Equal(t, "Which are mammals?", rows[2][5])
	assert.Equal(t, "multiple_choice", rows[2][3])
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	tb := loadedBank(t, "bio.md")

	_, err := NewExportService(tb.service, discardLogger()).Export(context.Background(), models.ExportRequest{Format: "pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedExport)
	assert.True(t, IsValidation(err))
}
