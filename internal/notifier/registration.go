package notifier

import (
	"context"
	"fmt"
	"strings"

	"job-portal/internal/model"
)

// RegistrationMailer 在企业提交注册后提醒管理员审核。
type RegistrationMailer struct {
	from   string
	to     []string
	mailer Mailer
}

// NewRegistrationMailer 创建提醒器，mailer 为空时使用 SMTP。
func NewRegistrationMailer(cfg MailConfig, mailer Mailer) *RegistrationMailer {
	if mailer == nil {
		mailer = NewSMTPMailer(cfg)
	}
	return &RegistrationMailer{from: cfg.From, to: cfg.AdminTo, mailer: mailer}
}

func (r *RegistrationMailer) PendingRegistration(ctx context.Context, p model.PendingCompany) error {
	var body strings.Builder
	body.WriteString("A company is waiting for approval.\n\n")
	fmt.Fprintf(&body, "Name:      %s\n", p.Name)
	fmt.Fprintf(&body, "Email:     %s\n", p.Email)
	fmt.Fprintf(&body, "Website:   %s\n", p.Website)
	fmt.Fprintf(&body, "Domain:    %s\n", p.Domain)
	fmt.Fprintf(&body, "CIN:       %s\n", p.CIN)
	fmt.Fprintf(&body, "Submitted: %s\n", p.SubmittedAt.UTC().Format("2006-01-02 15:04 MST"))

	err := r.mailer.Send(ctx, Mail{
		From:    r.from,
		To:      r.to,
		Subject: "Pending company registration: " + p.Name,
		Body:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("mail registration alert: %w", err)
	}
	return nil
}
