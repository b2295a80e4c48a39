package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RunSummary is what gets posted to the messaging channel after a batch run.
type RunSummary struct {
	BatchRunID string `json:"batch_run_id"`
	Checkset   string `json:"checkset"`
	RunType    string `json:"run_type"`
	OK         bool   `json:"ok"`
	Scanned    int    `json:"scanned"`
	Created    int    `json:"created"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

// Notifier posts run summaries somewhere out of band. Delivery failures must
// never fail the batch; callers log and move on.
type Notifier interface {
	NotifyRunSummary(ctx context.Context, summary RunSummary) error
}

// WebhookNotifier posts the summary as a chat message to an incoming-webhook
// URL (LINE WORKS / Slack compatible payload shape).
type WebhookNotifier struct {
	client *resty.Client
	logger *zap.Logger
}

func NewWebhookNotifier(webhookURL string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetBaseURL(webhookURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		client: client,
		logger: logger,
	}
}

// NotifyRunSummary posts a one-line status message.
func (n *WebhookNotifier) NotifyRunSummary(ctx context.Context, summary RunSummary) error {
	status := "完了"
	if !summary.OK {
		status = "失敗"
	}

	text := fmt.Sprintf("コンプライアンスチェック（%s）%s: 検出 %d件 / 新規アラート %d件 / エラー %d件",
		summary.Checkset, status, summary.Scanned, summary.Created, summary.Failed)
	if summary.Error != "" {
		text += "（" + summary.Error + "）"
	}

	body := map[string]any{
		"text":         text,
		"batch_run_id": summary.BatchRunID,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("")
	if err != nil {
		return fmt.Errorf("failed to post run summary: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected run summary: status=%d", resp.StatusCode())
	}

	n.logger.Info("run summary posted",
		zap.String("batch_run_id", summary.BatchRunID),
		zap.String("checkset", summary.Checkset),
	)
	return nil
}
