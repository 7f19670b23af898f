package email

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/bureau-service/internal/config"
	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

func riskyReport() *models.BureauReport {
	return &models.BureauReport{
		Meta: models.ReportMeta{
			ReportID:    "r-42",
			CustomerID:  987654321,
			GeneratedAt: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC),
		},
		ExecutiveInputs: models.BureauExecutiveSummaryInputs{
			TotalTradelines: 5, LiveTradelines: 4, ClosedTradelines: 1,
			TotalSanctioned: 18572860, TotalOutstanding: 5431000,
			MaxDPD: utils.IntPtr(120),
		},
		KeyFindings: []models.KeyFinding{
			{Category: "Delinquency", Finding: "Active delinquency detected with Max DPD of 120 days", Inference: "NPA risk", Severity: models.SeverityHighRisk},
			{Category: "Portfolio", Finding: "Unsecured sanction is 60% of total", Severity: models.SeverityConcern},
		},
	}
}

func newTestSender(sent *[]*email.Email, err error) *Sender {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewSender(&config.Config{SenderEmail: "bureau@bank.test", RiskAlertEmail: "risk@bank.test"}, log)
	s.send = func(e *email.Email) error {
		*sent = append(*sent, e)
		return err
	}
	return s
}

func TestRiskAlertBody(t *testing.T) {
	body := RiskAlertBody(riskyReport())

	assert.Contains(t, body, "Bureau report r-42 for customer ###4321 (generated 2026-10-15 10:00:00)")
	assert.Contains(t, body, "Tradelines: 5 (live 4, closed 1)")
	assert.Contains(t, body, "Total sanctioned: INR 1.86 Cr")
	assert.Contains(t, body, "Total outstanding: INR 54.31 L")
	assert.Contains(t, body, "Max DPD: 120 days")
	assert.Contains(t, body, "- [Delinquency] Active delinquency detected with Max DPD of 120 days\n  NPA risk")
	assert.NotContains(t, body, "Unsecured sanction")
}

func TestSendRiskAlert(t *testing.T) {
	var sent []*email.Email
	s := newTestSender(&sent, nil)

	require.NoError(t, s.SendRiskAlert(context.Background(), riskyReport()))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"risk@bank.test"}, sent[0].To)
	assert.Equal(t, "bureau@bank.test", sent[0].From)
	assert.Equal(t, "High-risk bureau findings for customer ###4321", sent[0].Subject)
}

func TestSendRiskAlertSkipsCleanReport(t *testing.T) {
	var sent []*email.Email
	s := newTestSender(&sent, nil)

	report := riskyReport()
	report.KeyFindings = report.KeyFindings[1:]
	require.NoError(t, s.SendRiskAlert(context.Background(), report))
	assert.Empty(t, sent)
}

func TestSendRiskAlertError(t *testing.T) {
	var sent []*email.Email
	s := newTestSender(&sent, errors.New("smtp down"))

	err := s.SendRiskAlert(context.Background(), riskyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestSendRiskAlertTimeout(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewSender(&config.Config{SenderEmail: "bureau@bank.test", RiskAlertEmail: "risk@bank.test"}, log)
	release := make(chan struct{})
	defer close(release)
	s.send = func(*email.Email) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.SendRiskAlert(ctx, riskyReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
