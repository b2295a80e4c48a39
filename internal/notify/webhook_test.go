package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifyRunSummary_PostsText(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, zap.NewNop())
	err := notifier.NotifyRunSummary(context.Background(), RunSummary{
		BatchRunID: "run-1",
		Checkset:   "daily",
		RunType:    "scheduled",
		OK:         true,
		Scanned:    5,
		Created:    2,
	})

	require.NoError(t, err)
	text, _ := got["text"].(string)
	assert.Contains(t, text, "daily")
	assert.Contains(t, text, "完了")
	assert.Contains(t, text, "5件")
	assert.Equal(t, "run-1", got["batch_run_id"])
}

func TestNotifyRunSummary_FailureCarriesError(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, zap.NewNop())
	err := notifier.NotifyRunSummary(context.Background(), RunSummary{
		BatchRunID: "run-2",
		Checkset:   "daily",
		OK:         false,
		Error:      "postal_code_check: query timeout",
	})

	require.NoError(t, err)
	text, _ := got["text"].(string)
	assert.Contains(t, text, "失敗")
	assert.Contains(t, text, "query timeout")
}

func TestNotifyRunSummary_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, zap.NewNop())
	err := notifier.NotifyRunSummary(context.Background(), RunSummary{
		BatchRunID: "run-3",
		Checkset:   "daily",
		OK:         true,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
