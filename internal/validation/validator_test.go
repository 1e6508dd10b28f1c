package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sdmx-mapper/internal/sdmx"
	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
)

func testSchema() *sdmx.Schema {
	return &sdmx.Schema{
		Context: sdmx.ContextDataflow,
		Agency:  "WB",
		ID:      "WDI",
		Version: "1.0",
		Components: sdmx.NewComponents(
			sdmx.Component{
				ID:       "REF_AREA",
				Required: true,
				Role:     sdmx.RoleDimension,
				LocalCodes: &sdmx.Codelist{
					ID:    "CL_AREA",
					Items: []sdmx.Code{{ID: "US"}, {ID: "FR"}},
				},
			},
			sdmx.Component{
				ID:       "OBS_VALUE",
				Required: true,
				Role:     sdmx.RoleMeasure,
			},
			sdmx.Component{
				ID:   "SEX",
				Role: sdmx.RoleAttribute,
				LocalCodes: &sdmx.Codelist{
					ID:    "CL_SEX",
					Items: []sdmx.Code{{ID: "M"}, {ID: "F"}},
				},
			},
		),
	}
}

func TestExtractInfo(t *testing.T) {
	info := ExtractInfo(testSchema())

	assert.Equal(t, []string{"REF_AREA", "OBS_VALUE", "SEX"}, info.Valid)
	assert.Equal(t, []string{"REF_AREA", "OBS_VALUE"}, info.Mandatory)
	assert.Equal(t, []string{"REF_AREA", "SEX"}, info.Coded)
	assert.Equal(t, []string{"REF_AREA"}, info.Dimensions)
	assert.Equal(t, []string{"US", "FR"}, info.Codelists["REF_AREA"])
	assert.Equal(t, []string{"M", "F"}, info.Codelists["SEX"])
}

func makeTable(t *testing.T) *tabular.Table {
	t.Helper()
	tb := tabular.MustNew("REF_AREA", "SEX", "OBS_VALUE")
	rows := [][]tabular.Cell{
		{tabular.V("US"), tabular.V("M"), tabular.V("1")},  // valid
		{tabular.V("XX"), tabular.V("M"), tabular.V("2")},  // bad REF_AREA
		{tabular.V("FR"), tabular.Null, tabular.V("3")},    // null SEX
		{tabular.V("FR"), tabular.V("??"), tabular.V("4")}, // bad SEX
	}
	for _, row := range rows {
		require.NoError(t, tb.AppendRow(row))
	}
	return tb
}

func TestFilterRowsKeepNull(t *testing.T) {
	tb := makeTable(t)
	info := ExtractInfo(testSchema())

	out, report := FilterRows(tb, info.Codelists, KeepNull)

	assert.Equal(t, 4, report.RowsIn)
	assert.Equal(t, 2, report.RowsKept)
	assert.Equal(t, 2, report.Dropped())
	assert.Equal(t, 1, report.DroppedByColumn["REF_AREA"])
	assert.Equal(t, 1, report.DroppedByColumn["SEX"])

	// Rows 0 and 2 survive: missing data is not a violation.
	require.Equal(t, 2, out.NumRows())
	cell, _ := out.Cell("OBS_VALUE", 0)
	assert.Equal(t, "1", cell.Value)
	cell, _ = out.Cell("OBS_VALUE", 1)
	assert.Equal(t, "3", cell.Value)
}

func TestFilterRowsDropNull(t *testing.T) {
	tb := makeTable(t)
	info := ExtractInfo(testSchema())

	out, report := FilterRows(tb, info.Codelists, DropNull)
	assert.Equal(t, 1, report.RowsKept)
	require.Equal(t, 1, out.NumRows())
	cell, _ := out.Cell("REF_AREA", 0)
	assert.Equal(t, "US", cell.Value)
}

func TestFilterRowsNeverMutatesInput(t *testing.T) {
	tb := makeTable(t)
	snapshot := tb.Clone()

	FilterRows(tb, ExtractInfo(testSchema()).Codelists, KeepNull)
	assert.True(t, tb.Equal(snapshot))
}

func TestFilterRowsSkipsAbsentColumns(t *testing.T) {
	tb := tabular.MustNew("OBS_VALUE")
	require.NoError(t, tb.AppendRow([]tabular.Cell{tabular.V("1")}))

	out, report := FilterRows(tb, map[string][]string{"REF_AREA": {"US"}}, KeepNull)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"REF_AREA"}, report.MissingColumns)
	assert.Contains(t, report.String(), "REF_AREA")
}

func TestFilterRowsNoConstraints(t *testing.T) {
	tb := makeTable(t)
	out, report := FilterRows(tb, nil, KeepNull)
	assert.Equal(t, 4, out.NumRows())
	assert.Zero(t, report.Dropped())
}

func TestFilterRaw(t *testing.T) {
	out, report := FilterRaw(makeTable(t), testSchema())
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, 2, report.Dropped())
}

func TestMissingMandatory(t *testing.T) {
	tb := tabular.MustNew("REF_AREA")
	info := ExtractInfo(testSchema())
	assert.Equal(t, []string{"OBS_VALUE"}, MissingMandatory(tb, info))
}
