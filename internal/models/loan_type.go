package models

import "strings"

// LoanType is the canonical loan-type category a raw bureau label normalizes to.
type LoanType string

const (
	LoanTypePL    LoanType = "personal_loan"
	LoanTypeCC    LoanType = "credit_card"
	LoanTypeHL    LoanType = "home_loan"
	LoanTypeAL    LoanType = "auto_loan"
	LoanTypeBL    LoanType = "business_loan"
	LoanTypeLAP   LoanType = "lap"
	LoanTypeLAS   LoanType = "las"
	LoanTypeLAD   LoanType = "lad"
	LoanTypeGL    LoanType = "gold_loan"
	LoanTypeTWL   LoanType = "two_wheeler_loan"
	LoanTypeCD    LoanType = "consumer_durable"
	LoanTypeCMVL  LoanType = "commercial_vehicle_loan"
	LoanTypeOther LoanType = "other"
)

// AllLoanTypes lists every canonical loan type in canonical order. Anything
// that walks a per-loan-type map uses this order so results are reproducible.
var AllLoanTypes = []LoanType{
	LoanTypePL,
	LoanTypeCC,
	LoanTypeHL,
	LoanTypeAL,
	LoanTypeBL,
	LoanTypeLAP,
	LoanTypeLAS,
	LoanTypeLAD,
	LoanTypeGL,
	LoanTypeTWL,
	LoanTypeCD,
	LoanTypeCMVL,
	LoanTypeOther,
}

var loanTypeCodes = map[LoanType]string{
	LoanTypePL:    "PL",
	LoanTypeCC:    "CC",
	LoanTypeHL:    "HL",
	LoanTypeAL:    "AL",
	LoanTypeBL:    "BL",
	LoanTypeLAP:   "LAP",
	LoanTypeLAS:   "LAS",
	LoanTypeLAD:   "LAD",
	LoanTypeGL:    "GL",
	LoanTypeTWL:   "TWL",
	LoanTypeCD:    "CD",
	LoanTypeCMVL:  "CMVL",
	LoanTypeOther: "OTHER",
}

var loanTypeDisplayNames = map[LoanType]string{
	LoanTypePL:    "Personal Loan",
	LoanTypeCC:    "Credit Card",
	LoanTypeHL:    "Home Loan",
	LoanTypeAL:    "Auto Loan",
	LoanTypeBL:    "Business Loan",
	LoanTypeLAP:   "LAP",
	LoanTypeLAS:   "LAS",
	LoanTypeLAD:   "LAD",
	LoanTypeGL:    "Gold Loan",
	LoanTypeTWL:   "Two Wheeler Loan",
	LoanTypeCD:    "Consumer Durable",
	LoanTypeCMVL:  "Commercial Vehicle Loan",
	LoanTypeOther: "Other",
}

// Code returns the short code used for chart series and compact labels (e.g. "PL").
func (lt LoanType) Code() string {
	if c, ok := loanTypeCodes[lt]; ok {
		return c
	}
	return strings.ToUpper(string(lt))
}

// DisplayName returns the human-readable name used in findings and reports.
func (lt LoanType) DisplayName() string {
	if name, ok := loanTypeDisplayNames[lt]; ok {
		return name
	}
	words := strings.Split(string(lt), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// LoanTypeFromCode maps a short code such as "PL" back to its canonical loan type.
func LoanTypeFromCode(code string) (LoanType, bool) {
	for _, lt := range AllLoanTypes {
		if loanTypeCodes[lt] == code {
			return lt, true
		}
	}
	return "", false
}

// Raw bureau labels mapped to their canonical type. Matching is exact.
var loanTypeNormalization = map[string]LoanType{
	// Personal loans
	"Personal Loan":               LoanTypePL,
	"Short Term Personal Loan":    LoanTypePL,
	"Microfinance - Personal Loan": LoanTypePL,
	"P2P Personal Loan":           LoanTypePL,
	"Loan to Professional":        LoanTypePL,

	// Credit cards
	"Credit Card":           LoanTypeCC,
	"Secured Credit Card":   LoanTypeCC,
	"Corporate Credit Card": LoanTypeCC,
	"Fleet Card":            LoanTypeCC,
	"Kisan Credit Card":     LoanTypeCC,
	"Loan on Credit Card":   LoanTypeCC,

	// Housing
	"Housing Loan":                LoanTypeHL,
	"Home Loan":                   LoanTypeHL,
	"Microfinance - Housing Loan": LoanTypeHL,
	"Pradhan Mantri Awas Yojana - Credit Link Subsidy Scheme MAY CLSS": LoanTypeHL,

	// Auto
	"Auto Loan (Personal)": LoanTypeAL,
	"Auto Loan":            LoanTypeAL,
	"Used Car Loan":        LoanTypeAL,

	// Commercial vehicles
	"Commercial Vehicle Loan":     LoanTypeCMVL,
	"Construction Equipment Loan": LoanTypeCMVL,
	"Tractor Loan":                LoanTypeCMVL,
	"P2P Auto Loan":               LoanTypeCMVL,

	// Business
	"Business Loan - General":                                                LoanTypeBL,
	"Business Loan - Secured":                                                LoanTypeBL,
	"Business Loan - Unsecured":                                              LoanTypeBL,
	"Business Loan - Priority Sector - Agriculture":                          LoanTypeBL,
	"Business Loan - Priority Sector - Others":                               LoanTypeBL,
	"Business Loan - Priority Sector - Small Business":                       LoanTypeBL,
	"Business Loan Against Bank Deposits":                                    LoanTypeBL,
	"Business Non-Funded Credit Facility - General":                          LoanTypeBL,
	"Business Non-Funded Credit Facility - Priority Sector-Others":           LoanTypeBL,
	"Business Non-Funded Credit Facility - Priority Sector - Agriculture":    LoanTypeBL,
	"Business Non-Funded Credit Facility - Priority Sector - Small Business": LoanTypeBL,

	// Property / securities / deposits
	"Property Loan":                  LoanTypeLAP,
	"Loan_against_securities":        LoanTypeLAS,
	"Loan Against Shares/Securities": LoanTypeLAS,
	"Loan Against Bank Deposits":     LoanTypeLAD,

	// Gold
	"Gold Loan":                   LoanTypeGL,
	"Priority Sector - Gold Loan": LoanTypeGL,

	"Two-wheeler Loan": LoanTypeTWL,
	"Consumer Loan":    LoanTypeCD,

	// Explicitly other
	"Education Loan":                              LoanTypeOther,
	"P2P Education Loan":                          LoanTypeOther,
	"Seller Financing":                            LoanTypeOther,
	"Temporary Overdraft":                         LoanTypeOther,
	"Overdraft":                                   LoanTypeOther,
	"Prime Minister Jaan Dhan Yojana - Overdraft": LoanTypeOther,
	"Leasing":                                     LoanTypeOther,
	"Microfinance - Other":                        LoanTypeOther,
	"Non-Funded Credit Facility":                  LoanTypeOther,
	"Microfinance - Business Loan":                LoanTypeOther,
	"Mudra Loans - Shishu / Kishor / Tarun":       LoanTypeOther,
	"GECL Loan Secured":                           LoanTypeOther,
	"GECL Loan Unsecured":                         LoanTypeOther,
	"Other":                                       LoanTypeOther,
}

// Raw labels that are collateral-backed. Checked on the raw label because
// credit cards and business loans have both secured and unsecured variants.
var securedLoanLabels = map[string]struct{}{
	"Gold Loan":                      {},
	"Priority Sector - Gold Loan":    {},
	"Two-wheeler Loan":               {},
	"Tractor Loan":                   {},
	"Loan Against Bank Deposits":     {},
	"Loan_against_securities":        {},
	"Loan Against Shares/Securities": {},
	"Secured Credit Card":            {},
	"Pradhan Mantri Awas Yojana - Credit Link Subsidy Scheme MAY CLSS": {},
	"GECL Loan Secured":                   {},
	"Microfinance - Housing Loan":         {},
	"Leasing":                             {},
	"P2P Auto Loan":                       {},
	"Housing Loan":                        {},
	"Home Loan":                           {},
	"Property Loan":                       {},
	"Auto Loan (Personal)":                {},
	"Auto Loan":                           {},
	"Used Car Loan":                       {},
	"Commercial Vehicle Loan":             {},
	"Construction Equipment Loan":         {},
	"Business Loan - Secured":             {},
	"Business Loan Against Bank Deposits": {},
}

// NormalizeLoanType maps a raw bureau loan-type label to its canonical type.
// Unknown labels resolve to LoanTypeOther.
func NormalizeLoanType(raw string) LoanType {
	if lt, ok := loanTypeNormalization[raw]; ok {
		return lt
	}
	return LoanTypeOther
}

// IsSecuredLabel reports whether a raw bureau loan-type label is secured.
func IsSecuredLabel(raw string) bool {
	_, ok := securedLoanLabels[raw]
	return ok
}
