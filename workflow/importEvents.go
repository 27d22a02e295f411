package workflow

import (
	"context"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/models"
)

// ImportFinalizedEvent is published after the ledger row is finalized so
// downstream consumers (notifications, analytics) can react without polling.
type ImportFinalizedEvent struct {
	ImportId     string                 `json:"importId"`
	ShopId       string                 `json:"shopId"`
	Status       models.BmsImportStatus `json:"status"`
	FileName     string                 `json:"fileName"`
	Dialect      string                 `json:"dialect"`
	ErrorCount   int                    `json:"errorCount"`
	WarningCount int                    `json:"warningCount"`
	FinalizedAt  time.Time              `json:"finalizedAt"`
}

// publishImportFinalized is best effort: the import already succeeded or
// failed on its own terms, so a missing topic or broker outage only logs.
func publishImportFinalized(ctx context.Context, event *ImportFinalizedEvent) {
	topic := config.BmsEventsTopic()
	if topic == "" {
		return
	}
	if err := config.PublishJSON(ctx, topic, event); err != nil {
		config.LogWarn(config.GetLogger(), "Workflow", "publishImportFinalized", event.ImportId, "publish failed: "+err.Error())
	}
}
