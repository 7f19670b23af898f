package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// Tradeline feed columns.
const (
	ColCRN               = "crn"
	ColLoanType          = "loan_type_new"
	ColSector            = "sector"
	ColSanctionAmount    = "sanction_amount"
	ColOutstanding       = "out_standing_balance"
	ColOverdue           = "over_due_amount"
	ColCreditLimit       = "creditlimit"
	ColDateOpened        = "date_opened"
	ColDateClosed        = "date_closed"
	ColLastPaymentDate   = "last_payment_date"
	ColLoanStatus        = "loan_status"
	ColDPDString         = "dpd_string"
	ColMaxDPD            = "max_dpd"
	ColMonthsSinceMaxDPD = "months_since_max_dpd"
	ColVintage           = "tl_vin_1"
)

// TradelineColumns lists the tradeline feed columns in the order the Postgres
// backend selects them.
var TradelineColumns = []string{
	ColCRN, ColLoanType, ColSector, ColSanctionAmount, ColOutstanding, ColOverdue,
	ColCreditLimit, ColDateOpened, ColDateClosed, ColLastPaymentDate, ColLoanStatus,
	ColDPDString, ColMaxDPD, ColMonthsSinceMaxDPD, ColVintage,
}

// Opener opens a named feed object for reading.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileOpener opens feeds from the local filesystem.
type FileOpener struct{}

// Open opens the file at name.
func (FileOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed %s: %w", name, err)
	}
	return f, nil
}

// DelimitedFeed loads both tables from delimiter-separated text objects.
type DelimitedFeed struct {
	opener        Opener
	tradelinePath string
	featurePath   string
	comma         rune
}

// NewDelimitedFeed creates a feed reading tradelinePath and featurePath through opener.
func NewDelimitedFeed(opener Opener, tradelinePath, featurePath string, comma rune) *DelimitedFeed {
	return &DelimitedFeed{
		opener:        opener,
		tradelinePath: tradelinePath,
		featurePath:   featurePath,
		comma:         comma,
	}
}

// Name identifies the feed in logs.
func (f *DelimitedFeed) Name() string {
	return f.tradelinePath + "," + f.featurePath
}

// Load reads both feeds into a fresh snapshot.
func (f *DelimitedFeed) Load(ctx context.Context) (*Snapshot, error) {
	tl, err := f.opener.Open(ctx, f.tradelinePath)
	if err != nil {
		return nil, err
	}
	defer tl.Close()

	tradelines, err := ReadTradelines(tl, f.comma)
	if err != nil {
		return nil, fmt.Errorf("failed to read tradeline feed: %w", err)
	}

	ft, err := f.opener.Open(ctx, f.featurePath)
	if err != nil {
		return nil, err
	}
	defer ft.Close()

	features, err := ReadFeatureRows(ft, f.comma)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature feed: %w", err)
	}

	return NewSnapshot(tradelines, features), nil
}

// ReadTradelines parses a tradeline feed. Rows without a customer id are skipped.
func ReadTradelines(r io.Reader, comma rune) ([]models.RawTradeline, error) {
	var out []models.RawTradeline
	err := readRecords(r, comma, func(row map[string]string) {
		if tl, ok := ParseTradeline(row); ok {
			out = append(out, tl)
		}
	})
	return out, err
}

// ReadFeatureRows parses a feature feed into raw rows keyed by customer id.
// When a customer appears twice the first row wins.
func ReadFeatureRows(r io.Reader, comma rune) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string)
	err := readRecords(r, comma, func(row map[string]string) {
		crn, ok := parseCRN(row[ColCRN])
		if !ok {
			return
		}
		if _, seen := out[crn]; !seen {
			out[crn] = row
		}
	})
	return out, err
}

// ParseTradeline converts a raw feed row into a RawTradeline. It reports false
// when the row has no usable customer id.
func ParseTradeline(row map[string]string) (models.RawTradeline, bool) {
	crn, ok := parseCRN(row[ColCRN])
	if !ok {
		return models.RawTradeline{}, false
	}
	return models.RawTradeline{
		CRN:                crn,
		LoanTypeLabel:      row[ColLoanType],
		Sector:             row[ColSector],
		SanctionAmount:     utils.ParseAmount(row[ColSanctionAmount]),
		OutstandingBalance: utils.ParseAmount(row[ColOutstanding]),
		OverdueAmount:      utils.ParseAmount(row[ColOverdue]),
		CreditLimit:        utils.ParseAmount(row[ColCreditLimit]),
		VintageMonths:      utils.ParseAmount(row[ColVintage]),
		Status:             row[ColLoanStatus],
		DateOpened:         utils.ParseDate(row[ColDateOpened]),
		DateClosed:         utils.ParseDate(row[ColDateClosed]),
		LastPaymentDate:    utils.ParseDate(row[ColLastPaymentDate]),
		DPDString:          row[ColDPDString],
		MaxDPD:             utils.ParseOptionalInt(row[ColMaxDPD]),
		MonthsSinceMaxDPD:  utils.ParseOptionalInt(row[ColMonthsSinceMaxDPD]),
	}, true
}

func parseCRN(s string) (int64, bool) {
	f := utils.ParseOptionalFloat(s)
	if f == nil || *f < 0 || *f >= math.MaxInt64 {
		return 0, false
	}
	return int64(*f), true
}

// readRecords streams a headed delimited file, calling fn with each row keyed
// by trimmed header names. Values are trimmed; missing trailing cells are empty.
func readRecords(r io.Reader, comma rune, fn func(map[string]string)) error {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		row := make(map[string]string, len(names))
		for i, name := range names {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		fn(row)
	}
}
