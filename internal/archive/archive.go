// internal/archive/archive.go

// Package archive indexes completed-stage reports into Elasticsearch so
// the operations team can search across sessions, niches, and stages.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
)

// StageReport is the indexed document for one completed stage.
type StageReport struct {
	SessionID   string          `json:"sessionId"`
	StageID     int             `json:"stageId"`
	StageName   string          `json:"stageName"`
	Niche       string          `json:"niche,omitempty"`
	CompanyName string          `json:"companyName,omitempty"`
	Summary     string          `json:"summary"`
	Payload     json.RawMessage `json:"payload"`
	Generation  uint64          `json:"generation"`
	CompletedAt time.Time       `json:"completedAt"`
}

// Indexer writes stage reports into one index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = "stage-reports"
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "archive"}),
	}
}

// IndexReport stores one report. The document id is deterministic per
// session and stage so re-indexing after a session reset overwrites
// instead of duplicating.
func (ix *Indexer) IndexReport(ctx context.Context, report StageReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return commonerrors.NewArchiveIndexFailedError(err)
	}

	docID := fmt.Sprintf("%s-%d-%d", report.SessionID, report.StageID, report.Generation)
	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(docID),
	)
	if err != nil {
		return commonerrors.NewArchiveIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		ix.logger.Error("Stage report rejected by index", map[string]interface{}{
			"session_id": report.SessionID,
			"stage_id":   report.StageID,
			"status":     res.StatusCode,
			"response":   string(msg),
		})
		return commonerrors.NewArchiveIndexFailedError(fmt.Errorf("index status %d", res.StatusCode))
	}

	return nil
}

// ReportFrom assembles the indexed document from completion artifacts.
func ReportFrom(state *models.ApplicationState, stage models.StageInfo, envelope models.PayloadEnvelope, summary string, completedAt time.Time) StageReport {
	report := StageReport{
		SessionID:   state.SessionID,
		StageID:     int(stage.ID),
		StageName:   stage.Name,
		Summary:     summary,
		Payload:     envelope.Payload,
		Generation:  state.Generation,
		CompletedAt: completedAt,
	}
	if state.Client != nil {
		report.Niche = state.Client.Niche
		report.CompanyName = state.Client.CompanyName
	}
	return report
}
