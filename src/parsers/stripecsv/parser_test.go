package stripecsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/trimestral/src/models"
)

func TestParseDashboardExport(t *testing.T) {
	input := strings.Join([]string{
		`id,Amount,Currency,Created (UTC),Status,Card Country,Country,Customer Email,Description`,
		`ch_1,"50,00",USD,2024-11-05 10:00:00,Paid,US,,ana@example.com,November invoice`,
		`ch_2,100.00,EUR,2024-12-01,succeeded,,FR,,`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, models.ShapeExport, first.Shape)
	require.NotNil(t, first.Export)
	assert.Equal(t, "ch_1", first.Export.ID)
	assert.Equal(t, "50,00", first.Export.Amount, "quoted comma amount survives CSV parsing")
	assert.True(t, first.Export.HasAmount)
	assert.Equal(t, "USD", first.Export.Currency)
	assert.Equal(t, "2024-11-05 10:00:00", first.Export.Created)
	assert.Equal(t, "Paid", first.Export.Status)
	assert.True(t, first.Export.HasStatus)
	assert.Equal(t, "US", first.Export.CardCountry)
	assert.Equal(t, "ana@example.com", first.Export.CustomerEmail)

	second := records[1]
	assert.Equal(t, "FR", second.Export.Country)
	assert.Empty(t, second.Export.CardCountry)
}

func TestParseReorderedColumns(t *testing.T) {
	input := strings.Join([]string{
		`Status,Currency,id,Amount`,
		`paid,GBP,ch_9,12.34`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ch_9", records[0].Export.ID)
	assert.Equal(t, "12.34", records[0].Export.Amount)
	assert.Equal(t, "GBP", records[0].Export.Currency)
}

func TestParseMetadataIDFallback(t *testing.T) {
	input := strings.Join([]string{
		`id,id (metadata),Amount`,
		`,ch_meta,10.00`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ch_meta", records[0].Export.ID)
}

func TestParseDateColumnFallback(t *testing.T) {
	input := strings.Join([]string{
		`id,Amount,Date`,
		`ch_1,10.00,2024-10-15`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-10-15", records[0].Export.Created)
}

func TestParseEmptyAmountCellKeepsColumnPresence(t *testing.T) {
	input := strings.Join([]string{
		`id,Amount,Currency`,
		`ch_1,,EUR`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Export.HasAmount, "the column exists even though the cell is empty")
	assert.Empty(t, records[0].Export.Amount)
}

func TestParseStatusColumnPresence(t *testing.T) {
	withStatus := strings.Join([]string{
		`id,Amount,Status`,
		`ch_1,10.00,`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(withStatus))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Export.HasStatus, "the column exists even though the cell is empty")
	assert.Empty(t, records[0].Export.Status)

	withoutStatus := strings.Join([]string{
		`id,Amount`,
		`ch_1,10.00`,
	}, "\n")

	records, err = NewParser().Parse(strings.NewReader(withoutStatus))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Export.HasStatus)
}

func TestParseMissingAmountColumn(t *testing.T) {
	input := strings.Join([]string{
		`id,Currency`,
		`ch_1,EUR`,
	}, "\n")

	records, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Export.HasAmount)
}

func TestParseHeaderOnly(t *testing.T) {
	records, err := NewParser().Parse(strings.NewReader("id,Amount,Currency\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}
