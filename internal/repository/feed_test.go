package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradelineTSV = "crn\tloan_type_new\tsector\tsanction_amount\tout_standing_balance\tover_due_amount\tcreditlimit\tdate_opened\tdate_closed\tlast_payment_date\tloan_status\tdpd_string\tmax_dpd\tmonths_since_max_dpd\ttl_vin_1\n" +
	"101\tPersonal Loan\tKOTAK BANK\t2,00,000\t150000\t0\tNULL\t12-01-2024\tNULL\t2026-09-01 00:00:00\tLive\t000000\t45\t2\t21\n" +
	"101\tCredit Card\tHDFC BANK\t0\t40000\t\t100000\t2019-12-15\t\t\tLive\tSTDSTD\tNULL\tNULL\t80\n" +
	"NULL\tGold Loan\tX\t1\t1\t1\t1\t\t\t\tClosed\t\t\t\t\n" +
	"202.0\t Home Loan \tSBI\t3500000\t2900000\t0\t0\t05-06-2018\t\t\tClosed\n"

const featureTSV = "crn\tno_tr_open_l6m_pl_onc\tuns_enq_l12m\n" +
	"101\t2\t12\n" +
	"101\t9\t9\n" +
	"\t1\t1\n" +
	"303\tNULL\t4\n"

func TestReadTradelines(t *testing.T) {
	rows, err := ReadTradelines(strings.NewReader(tradelineTSV), '\t')
	require.NoError(t, err)
	require.Len(t, rows, 3, "row without crn is skipped")

	pl := rows[0]
	assert.Equal(t, int64(101), pl.CRN)
	assert.Equal(t, "Personal Loan", pl.LoanTypeLabel)
	assert.Equal(t, 200000.0, pl.SanctionAmount)
	assert.Equal(t, 0.0, pl.CreditLimit)
	require.NotNil(t, pl.DateOpened)
	assert.Equal(t, "2024-01-12", pl.DateOpened.Format("2006-01-02"))
	assert.Nil(t, pl.DateClosed)
	require.NotNil(t, pl.LastPaymentDate)
	assert.Equal(t, "2026-09-01", pl.LastPaymentDate.Format("2006-01-02"))
	require.NotNil(t, pl.MaxDPD)
	assert.Equal(t, 45, *pl.MaxDPD)
	assert.Equal(t, 21.0, pl.VintageMonths)

	cc := rows[1]
	assert.Equal(t, 0.0, cc.OverdueAmount)
	assert.Nil(t, cc.MaxDPD)
	assert.Equal(t, 100000.0, cc.CreditLimit)

	hl := rows[2]
	assert.Equal(t, int64(202), hl.CRN)
	assert.Equal(t, "Home Loan", hl.LoanTypeLabel, "values are trimmed")
	assert.True(t, hl.IsClosed())
	assert.Empty(t, hl.DPDString, "short rows fill missing cells")
}

func TestReadFeatureRows(t *testing.T) {
	rows, err := ReadFeatureRows(strings.NewReader(featureTSV), '\t')
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[101]["no_tr_open_l6m_pl_onc"], "first row per customer wins")
	assert.Equal(t, "NULL", rows[303]["no_tr_open_l6m_pl_onc"])
}

func TestReadRecordsEmptyInput(t *testing.T) {
	rows, err := ReadTradelines(strings.NewReader(""), '\t')
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadTradelinesCommaDelimited(t *testing.T) {
	in := "\ufeffcrn,loan_type_new,sanction_amount\n7,\"Loan Against Property\",\"1,00,000\"\n"

	rows, err := ReadTradelines(strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].CRN)
	assert.Equal(t, 100000.0, rows[0].SanctionAmount)
}

func TestDelimitedFeedLoad(t *testing.T) {
	dir := t.TempDir()
	tlPath := filepath.Join(dir, "tl_base.tsv")
	ftPath := filepath.Join(dir, "tl_features.tsv")
	require.NoError(t, os.WriteFile(tlPath, []byte(tradelineTSV), 0o600))
	require.NoError(t, os.WriteFile(ftPath, []byte(featureTSV), 0o600))

	feed := NewDelimitedFeed(FileOpener{}, tlPath, ftPath, '\t')
	snap, err := feed.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.rows)
	assert.Len(t, snap.tradelines[101], 2)
	assert.Len(t, snap.tradelines[202], 1)
	assert.Contains(t, snap.features, int64(303))
}

func TestDelimitedFeedMissingFile(t *testing.T) {
	feed := NewDelimitedFeed(FileOpener{}, filepath.Join(t.TempDir(), "missing.tsv"), "x", '\t')

	_, err := feed.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open feed")
}

func TestParseTradelineNonFinite(t *testing.T) {
	tl, ok := ParseTradeline(map[string]string{
		ColCRN:               "101",
		ColLoanType:          "Personal Loan",
		ColSanctionAmount:    "NaN",
		ColOutstanding:       "inf",
		ColMaxDPD:            "nan",
		ColMonthsSinceMaxDPD: "1e30",
	})
	require.True(t, ok)
	assert.Equal(t, 0.0, tl.SanctionAmount)
	assert.Equal(t, 0.0, tl.OutstandingBalance)
	assert.Nil(t, tl.MaxDPD)
	assert.Nil(t, tl.MonthsSinceMaxDPD)

	_, err := json.Marshal(tl)
	assert.NoError(t, err)

	for _, crn := range []string{"NaN", "1e30", "-5"} {
		_, ok := ParseTradeline(map[string]string{ColCRN: crn})
		assert.False(t, ok, crn)
	}
}
