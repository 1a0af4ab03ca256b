// Package email renders and delivers transactional mail.
package email

import "context"

// Attachment is a file shipped with an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers the platform's transactional emails. The notification
// module is the only caller; domain modules publish events instead.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendTeamInviteEmail(ctx context.Context, toEmail, teamName, role, inviteURL string) error
	SendInterventionStatusEmail(ctx context.Context, toEmail, reference, title, status, detailURL string) error
	SendQuoteReceivedEmail(ctx context.Context, toEmail, reference, quoteNumber string, totalCents int64, detailURL string) error
	SendQuoteDecisionEmail(ctx context.Context, toEmail, quoteNumber string, accepted bool, reason, detailURL string) error
	SendSlotProposedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error
	SendSlotConfirmedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error
	SendSlotReminderEmail(ctx context.Context, toEmail, reference, title, slotDate string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender satisfies Sender without delivering anything. Used when
// email is disabled in configuration.
type NoopSender struct{}

func (NoopSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	return nil
}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendTeamInviteEmail(ctx context.Context, toEmail, teamName, role, inviteURL string) error {
	return nil
}

func (NoopSender) SendInterventionStatusEmail(ctx context.Context, toEmail, reference, title, status, detailURL string) error {
	return nil
}

func (NoopSender) SendQuoteReceivedEmail(ctx context.Context, toEmail, reference, quoteNumber string, totalCents int64, detailURL string) error {
	return nil
}

func (NoopSender) SendQuoteDecisionEmail(ctx context.Context, toEmail, quoteNumber string, accepted bool, reason, detailURL string) error {
	return nil
}

func (NoopSender) SendSlotProposedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error {
	return nil
}

func (NoopSender) SendSlotConfirmedEmail(ctx context.Context, toEmail, reference, slotDate, detailURL string) error {
	return nil
}

func (NoopSender) SendSlotReminderEmail(ctx context.Context, toEmail, reference, title, slotDate string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

var _ Sender = NoopSender{}
