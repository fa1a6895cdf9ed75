// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marvetti-onboarding/internal/common/config"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
)

// ==========================
// Mock Services
// ==========================

type mockSES struct {
	calls  int
	lastIn *ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	m.lastIn = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	calls  int
	lastIn *sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	m.lastIn = params
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@marvetti.example"
	cfg.Email.OpsEmail = "ops@marvetti.example"
	cfg.SMS.Enabled = true
	cfg.SMS.OpsCell = "+27820000000"
	return cfg
}

func completedState(stage models.StageID) (*models.ApplicationState, models.StageInfo) {
	state := &models.ApplicationState{
		SessionID: "s-1",
		Client: &models.ClientData{
			FirstName:   "Thabo",
			LastName:    "Mokoena",
			CompanyName: "MOKOENA HOLDINGS PTY LTD",
		},
		Stages: map[models.StageID]models.StageInfo{
			stage: {ID: stage, Name: "1. Register Company", Status: models.StageCompleted},
		},
	}
	return state, state.Stages[stage]
}

// ==========================
// Notification Tests
// ==========================

func TestStageCompleted_EmailAndSMSForMilestone(t *testing.T) {
	sesMock, snsMock := &mockSES{}, &mockSNS{}
	n := NewNotifier(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	state, stage := completedState(models.StageRegistration)
	result := n.StageCompleted(context.Background(), state, stage)

	assert.Equal(t, StatusSent, result.Status)
	assert.NotEmpty(t, result.NotificationID)
	require.Equal(t, 1, sesMock.calls)
	require.Equal(t, 1, snsMock.calls)

	assert.Equal(t, "ops@marvetti.example", sesMock.lastIn.Destination.ToAddresses[0])
	assert.Contains(t, *sesMock.lastIn.Message.Subject.Data, "Thabo Mokoena")
	assert.Contains(t, *sesMock.lastIn.Message.Body.Text.Data, "MOKOENA HOLDINGS PTY LTD")
	assert.Equal(t, "+27820000000", *snsMock.lastIn.PhoneNumber)
}

func TestStageCompleted_EmailOnlyForRoutineStage(t *testing.T) {
	sesMock, snsMock := &mockSES{}, &mockSNS{}
	n := NewNotifier(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	state, stage := completedState(models.StageWebsite)
	result := n.StageCompleted(context.Background(), state, stage)

	assert.Equal(t, StatusSent, result.Status)
	assert.Equal(t, 1, sesMock.calls)
	assert.Zero(t, snsMock.calls)
}

func TestStageCompleted_AllChannelsDisabled(t *testing.T) {
	sesMock, snsMock := &mockSES{}, &mockSNS{}
	var cfg config.NotificationConfig
	n := NewNotifier(cfg, sesMock, snsMock, logger.NewTestLogger(t))

	state, stage := completedState(models.StageRegistration)
	result := n.StageCompleted(context.Background(), state, stage)

	assert.Equal(t, StatusDisabled, result.Status)
	assert.Zero(t, sesMock.calls)
	assert.Zero(t, snsMock.calls)
}

func TestStageCompleted_EmailFailure(t *testing.T) {
	sesMock := &mockSES{err: errors.New("throttled")}
	n := NewNotifier(testConfig(), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	state, stage := completedState(models.StageRegistration)
	result := n.StageCompleted(context.Background(), state, stage)

	assert.Equal(t, StatusFailed, result.Status)
}

func TestStageCompleted_NoClientUsesGuest(t *testing.T) {
	sesMock := &mockSES{}
	n := NewNotifier(testConfig(), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	state, stage := completedState(models.StageWebsite)
	state.Client = nil
	result := n.StageCompleted(context.Background(), state, stage)

	assert.Equal(t, StatusSent, result.Status)
	assert.Contains(t, *sesMock.lastIn.Message.Subject.Data, "Guest User")
}
