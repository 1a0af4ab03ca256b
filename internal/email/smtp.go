package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	content, err := renderEmailTemplate("verification.html", verificationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Confirmez votre adresse email",
			Heading:  "Bienvenue sur Seido",
			CTALabel: "Confirmer mon adresse",
			CTAURL:   verifyURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectVerification, content)
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	content, err := renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    "Réinitialisation de votre mot de passe",
			Heading:  "Réinitialisation de votre mot de passe",
			CTALabel: "Choisir un nouveau mot de passe",
			CTAURL:   resetURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectPasswordReset, content)
}

func (s *SMTPSender) SendTeamInviteEmail(ctx context.Context, toEmail, teamName, role, inviteURL string) error {
	subject := fmt.Sprintf(subjectTeamInviteFmt, teamName)
	content, err := renderEmailTemplate("team_invite.html", teamInviteEmailData{
		baseEmailData: baseEmailData{
			Title:    "Invitation",
			Heading:  "Vous êtes invité",
			CTALabel: "Accepter l'invitation",
			CTAURL:   inviteURL,
		},
		TeamName: teamName,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendInterventionStatusEmail(ctx context.Context, toEmail, reference, title, status, detailURL string) error {
	label := statusLabel(status)
	subject := fmt.Sprintf(subjectStatusChangedFmt, reference, label)
	content, err := renderEmailTemplate("intervention_status.html", interventionStatusEmailData{
		baseEmailData: baseEmailData{
			Title:    label,
			Heading:  label,
			CTALabel: "Voir l'intervention",
			CTAURL:   detailURL,
		},
		Reference:   reference,
		Title:       title,
		StatusLabel: label,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuoteReceivedEmail(ctx context.Context, toEmail, reference, quoteNumber string, totalCents int64, detailURL string) error {
	subject := fmt.Sprintf(subjectQuoteReceivedFmt, quoteNumber, reference)
	content, err := renderEmailTemplate("quote_received.html", quoteReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:    "Nouveau devis",
			Heading:  "Nouveau devis reçu",
			CTALabel: "Consulter le devis",
			CTAURL:   detailURL,
		},
		Reference:      reference,
		QuoteNumber:    quoteNumber,
		TotalFormatted: formatCurrencyEUR(totalCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuoteDecisionEmail(ctx context.Context, toEmail, quoteNumber string, accepted bool, reason, detailURL string) error {
	subject := fmt.Sprintf(subjectQuoteAcceptedFmt, quoteNumber)
	heading := "Devis accepté"
	if !accepted {
		subject = fmt.Sprintf(subjectQuoteRejectedFmt, quoteNumber)
		heading = "Devis refusé"
	}

	content, err := renderEmailTemplate("quote_decision.html", quoteDecisionEmailData{
		baseEmailData: baseEmailData{
			Title:    heading,
			Heading:  heading,
			CTALabel: "Consulter le devis",
			CTAURL:   detailURL,
		},
		QuoteNumber: quoteNumber,
		Accepted:    accepted,
		Reason:      reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendSlotProposedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error {
	subject := fmt.Sprintf(subjectSlotProposedFmt, reference)
	content, err := renderEmailTemplate("slot_proposed.html", slotEmailData{
		baseEmailData: baseEmailData{
			Title:    "Nouveau créneau proposé",
			Heading:  "Nouveau créneau proposé",
			CTALabel: "Répondre à la proposition",
			CTAURL:   detailURL,
		},
		Reference: reference,
		SlotDate:  slotDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendSlotConfirmedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error {
	subject := fmt.Sprintf(subjectSlotConfirmedFmt, reference)
	content, err := renderEmailTemplate("slot_confirmed.html", slotEmailData{
		baseEmailData: baseEmailData{
			Title:    "Créneau confirmé",
			Heading:  "Créneau confirmé",
			CTALabel: "Voir l'intervention",
			CTAURL:   detailURL,
		},
		Reference: reference,
		SlotDate:  slotDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendSlotReminderEmail(ctx context.Context, toEmail, reference, title, slotDate string) error {
	subject := fmt.Sprintf(subjectSlotReminderFmt, reference)
	content, err := renderEmailTemplate("slot_reminder.html", slotReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Rappel d'intervention",
			Heading: "Votre intervention approche",
		},
		Reference: reference,
		Title:     title,
		SlotDate:  slotDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}

var _ Sender = (*SMTPSender)(nil)
