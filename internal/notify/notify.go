// internal/notify/notify.go

// Package notify alerts the operations team when a client completes a
// stage: an SES email always, an SNS text for the milestones the team
// acts on within hours.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"marvetti-onboarding/internal/common/config"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

const (
	StatusSent     = "SENT"
	StatusDisabled = "DISABLED"
	StatusFailed   = "FAILED"
)

// Result reports what one notification attempt did.
type Result struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}

// Notifier fans a stage completion out to the operations channels.
type Notifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// smsMilestones are the completions promised a fast operations turnaround.
var smsMilestones = map[models.StageID]bool{
	models.StageRegistration: true,
	models.StageCompliance:   true,
}

// StageCompleted notifies the operations team about one completion.
// Channel failures are reported in the result, never as a hard error,
// onboarding progression does not depend on back-office alerting.
func (n *Notifier) StageCompleted(ctx context.Context, state *models.ApplicationState, stage models.StageInfo) Result {
	result := Result{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	clientName := "Guest User"
	company := ""
	if state.Client != nil {
		clientName = state.Client.FirstName + " " + state.Client.LastName
		company = state.Client.CompanyName
	}

	subject := fmt.Sprintf("[MARVETTI] %s completed by %s", stage.Name, clientName)
	body := fmt.Sprintf("Session %s completed %s.\nClient: %s\nCompany: %s\nProgress: %d/12 stages.",
		state.SessionID, stage.Name, clientName, company, state.CompletedCount())

	emailSent := false
	smsSent := false

	if n.cfg.Email.Enabled && n.cfg.Email.OpsEmail != "" {
		if err := n.sendEmail(ctx, n.cfg.Email.OpsEmail, subject, body); err != nil {
			n.logger.Error("Ops email failed", map[string]interface{}{
				"session_id": state.SessionID,
				"error":      err.Error(),
			})
			result.Status = StatusFailed
			return result
		}
		emailSent = true
	}

	if n.cfg.SMS.Enabled && n.cfg.SMS.OpsCell != "" && smsMilestones[stage.ID] {
		if err := n.sendSMS(ctx, n.cfg.SMS.OpsCell, subject); err != nil {
			n.logger.Error("Ops SMS failed", map[string]interface{}{
				"session_id": state.SessionID,
				"error":      err.Error(),
			})
			result.Status = StatusFailed
			return result
		}
		smsSent = true
	}

	if emailSent || smsSent {
		result.Status = StatusSent
	}
	return result
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	if err != nil {
		return commonerrors.NewNotifySendFailedError("email", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	if err != nil {
		return commonerrors.NewNotifySendFailedError("sms", err)
	}
	return nil
}
