// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package mail defines the outbound email boundary.

The platform only ever sends two kinds of mail: email-verification links and
password-reset links. The transport (SES, SMTP relay) lives outside this
codebase; services depend on the [Mailer] interface and the process is wired
with whichever implementation the deployment provides.
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to a user's inbox.
//
// Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// # Development Mailer

// LogMailer writes outbound mail to the structured log instead of delivering
// it. It is the default in development so the verification flow can be
// exercised without a mail provider.
type LogMailer struct {
	logger *slog.Logger
	from   string
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(logger *slog.Logger, fromAddress string) *LogMailer {
	return &LogMailer{logger: logger, from: fromAddress}
}

// Send implements [Mailer] by logging the message.
func (mailer *LogMailer) Send(ctx context.Context, msg Message) error {
	mailer.logger.InfoContext(ctx, "outbound_mail",
		slog.String("from", mailer.from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// VerificationMessage builds the account-verification email for a user.
func VerificationMessage(to, publicBaseURL, token string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your Chorostat account",
		Body:    fmt.Sprintf("Open %s/verify-email?token=%s to activate your account.", publicBaseURL, token),
	}
}

// PasswordResetMessage builds the password-reset email for a user.
func PasswordResetMessage(to, publicBaseURL, token string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Chorostat password",
		Body:    fmt.Sprintf("Open %s/reset-password?token=%s to choose a new password.", publicBaseURL, token),
	}
}
