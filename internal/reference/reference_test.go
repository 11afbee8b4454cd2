package reference

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "2025-10", s.Tables().EffectiveMonth)
	assert.Len(t, s.InterestRates(), 5)
	assert.Equal(t, 4.80, s.InterestRates()[0].Rate)
	assert.Len(t, s.SpecialRates(), 4)
	assert.Len(t, s.ApprovalAuthorities(""), 8)
	assert.Len(t, s.RTIRatios(), 3)
	assert.Len(t, s.AddOnRates(), 6)
	assert.Contains(t, s.Links().DSRCalculator, "/DSR")
	assert.NotEmpty(t, s.Links().TaxCalculator)
}

func TestDepositProtection(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	tests := []struct {
		region     DepositRegion
		housing    int64
		commercial int64
	}{
		{DepositRegionSeoul, 55000000, 22000000},
		{DepositRegionOverConcentrated, 48000000, 19000000},
		{DepositRegionMetropolitan, 28000000, 13000000},
		{DepositRegionOthers, 25000000, 10000000},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			d, err := s.DepositProtection(tt.region)
			require.NoError(t, err)
			assert.Equal(t, tt.housing, d.Housing)
			assert.Equal(t, tt.commercial, d.Commercial)
		})
	}

	_, err = s.DepositProtection("JEJU")
	assert.True(t, errors.Is(err, ErrUnknownRegion))
}

func TestApprovalAuthorities(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	highRisk := s.ApprovalAuthorities(CollateralHighRisk)
	require.Len(t, highRisk, 4)
	for _, row := range highRisk {
		assert.Equal(t, CollateralHighRisk, row.Risk)
	}

	tests := []struct {
		name      string
		risk      CollateralRisk
		area      AuthorityArea
		amount    string
		id        int
		authority string
	}{
		{"general seoul at threshold", CollateralGeneral, AreaSeoul, "1500", 7, "Branch manager"},
		{"general seoul above threshold", CollateralGeneral, AreaSeoul, "1500.01", 8, "Standing director"},
		{"high risk outside seoul small", CollateralHighRisk, AreaOutsideSeoul, "120", 1, "Branch manager"},
		{"high risk seoul large", CollateralHighRisk, AreaSeoul, "1200", 4, "Standing director"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := s.ApprovalAuthorityFor(tt.risk, tt.area, decimal.RequireFromString(tt.amount))
			require.True(t, ok)
			assert.Equal(t, tt.id, row.ID)
			assert.Equal(t, tt.authority, row.Authority)
		})
	}
}

func TestParseMatrixKeys(t *testing.T) {
	risk, err := ParseCollateralRisk(" high risk ")
	require.NoError(t, err)
	assert.Equal(t, CollateralHighRisk, risk)

	area, err := ParseAuthorityArea("outside-seoul")
	require.NoError(t, err)
	assert.Equal(t, AreaOutsideSeoul, area)

	_, err = ParseCollateralRisk("LOW")
	assert.Error(t, err)
	_, err = ParseAuthorityArea("")
	assert.Error(t, err)
}

func TestTablesReturnsCopies(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	rates := s.InterestRates()
	rates[0].Rate = 99
	tables := s.Tables()
	tables.DepositProtection[0].Housing = 1

	assert.Equal(t, 4.80, s.InterestRates()[0].Rate)
	d, err := s.DepositProtection(DepositRegionSeoul)
	require.NoError(t, err)
	assert.Equal(t, int64(55000000), d.Housing)
}

func TestTableByName(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	for _, name := range TableNames {
		t.Run(name, func(t *testing.T) {
			table, err := Table(s, name)
			require.NoError(t, err)
			assert.NotNil(t, table)
		})
	}

	_, err = Table(s, "mortgage-rates")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	valid, err := os.ReadFile("tables.yaml")
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		errText string
	}{
		{"bad month", strings.Replace(string(valid), `effectiveMonth: "2025-10"`, `effectiveMonth: "October"`, 1), "effectiveMonth"},
		{"unknown key", string(valid) + "\nsurprise: true\n", "surprise"},
		{"duplicate region", strings.Replace(string(valid), "region: OTHERS", "region: SEOUL", 1), "duplicate region"},
		{"unknown region", strings.Replace(string(valid), "region: OTHERS", "region: JEJU", 1), "JEJU"},
		{"duplicate authority", strings.Replace(string(valid), "id: 8", "id: 7", 1), "duplicate id 7"},
		{"empty document", "", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadFile(t *testing.T) {
	valid, err := os.ReadFile("tables.yaml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	doc := strings.Replace(string(valid), `effectiveMonth: "2025-10"`, `effectiveMonth: "2026-01"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-01", s.Effective().Format("2006-01"))
	assert.Equal(t, 9, s.AgeInMonths(time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)))

	s, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "2025-10", s.Tables().EffectiveMonth)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
