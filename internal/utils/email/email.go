package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bureau-service/internal/config"
	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}

// SendRiskAlert notifies the risk desk about a report carrying high-risk findings.
// Reports without high-risk findings are ignored. It gives up when ctx is done;
// the SMTP exchange itself is abandoned in the background.
func (s *Sender) SendRiskAlert(ctx context.Context, report *models.BureauReport) error {
	if !report.HasSeverity(models.SeverityHighRisk) {
		return nil
	}
	to := s.cfg.RiskAlertEmail

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("High-risk bureau findings for customer %s", utils.MaskCustomerID(report.Meta.CustomerID))
	e.Text = []byte(RiskAlertBody(report))

	done := make(chan error, 1)
	go func() { done <- s.send(e) }()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Errorf("Failed to send risk alert to %s: %v", to, err)
			return fmt.Errorf("failed to send risk alert: %w", err)
		}
	case <-ctx.Done():
		s.logger.Errorf("Risk alert to %s timed out: %v", to, ctx.Err())
		return fmt.Errorf("failed to send risk alert: %w", ctx.Err())
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// RiskAlertBody renders the plain-text alert: report identity, portfolio
// totals and every high-risk finding.
func RiskAlertBody(report *models.BureauReport) string {
	var b strings.Builder
	in := report.ExecutiveInputs

	b.WriteString("Dear Risk Team,\n\n")
	fmt.Fprintf(&b, "Bureau report %s for customer %s (generated %s) contains high-risk findings.\n\n",
		report.Meta.ReportID,
		utils.MaskCustomerID(report.Meta.CustomerID),
		report.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Tradelines: %d (live %d, closed %d)\n", in.TotalTradelines, in.LiveTradelines, in.ClosedTradelines)
	fmt.Fprintf(&b, "Total sanctioned: INR %s\n", utils.FormatINRUnits(in.TotalSanctioned))
	fmt.Fprintf(&b, "Total outstanding: INR %s\n", utils.FormatINRUnits(in.TotalOutstanding))
	if in.MaxDPD != nil {
		fmt.Fprintf(&b, "Max DPD: %d days\n", *in.MaxDPD)
	}

	b.WriteString("\nHigh-risk findings:\n")
	for _, f := range report.KeyFindings {
		if f.Severity != models.SeverityHighRisk {
			continue
		}
		fmt.Fprintf(&b, "- [%s] %s\n  %s\n", f.Category, f.Finding, f.Inference)
	}

	b.WriteString("\nBest regards,\nBureau Service")
	return b.String()
}
