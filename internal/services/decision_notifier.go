package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes to the bus; every instance's forwarder delivers to
// its own hub, this one included.
type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "event", string(msg.Event), "error", err)
	}
}

// DecisionNotifier pushes change events to the owning subject's stream.
// Payloads carry ids and stage only; clients re-fetch the record.
type DecisionNotifier interface {
	DecisionCreated(ctx context.Context, d *types.Decision)
	DecisionUpdated(ctx context.Context, d *types.Decision)
	DecisionAdvanced(ctx context.Context, d *types.Decision)
	DecisionAnalysisReady(ctx context.Context, d *types.Decision, stage types.Stage)
	DecisionLocked(ctx context.Context, d *types.Decision)
	DecisionScored(ctx context.Context, userID uuid.UUID, score *types.DecisionScore)
}

type decisionNotifier struct {
	emit SSEEmitter
}

func NewDecisionNotifier(emit SSEEmitter) DecisionNotifier {
	return &decisionNotifier{emit: emit}
}

func (n *decisionNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{Channel: userID.String(), Event: event, Data: data})
}

func decisionPayload(d *types.Decision) map[string]any {
	return map[string]any{
		"decision_id": d.ID,
		"stage":       d.Stage,
		"stage_name":  d.Stage.String(),
		"is_locked":   d.IsLocked,
		"view":        workflow.Render(d.Stage, d.IsLocked),
	}
}

func (n *decisionNotifier) DecisionCreated(ctx context.Context, d *types.Decision) {
	n.send(ctx, d.UserID, realtime.SSEEventDecisionCreated, decisionPayload(d))
}

func (n *decisionNotifier) DecisionUpdated(ctx context.Context, d *types.Decision) {
	n.send(ctx, d.UserID, realtime.SSEEventDecisionUpdated, decisionPayload(d))
}

func (n *decisionNotifier) DecisionAdvanced(ctx context.Context, d *types.Decision) {
	n.send(ctx, d.UserID, realtime.SSEEventDecisionAdvanced, decisionPayload(d))
}

func (n *decisionNotifier) DecisionAnalysisReady(ctx context.Context, d *types.Decision, stage types.Stage) {
	data := decisionPayload(d)
	data["analysis_stage"] = stage.String()
	n.send(ctx, d.UserID, realtime.SSEEventDecisionAnalysisReady, data)
}

func (n *decisionNotifier) DecisionLocked(ctx context.Context, d *types.Decision) {
	data := decisionPayload(d)
	data["locked_at"] = d.LockedAt
	n.send(ctx, d.UserID, realtime.SSEEventDecisionLocked, data)
}

func (n *decisionNotifier) DecisionScored(ctx context.Context, userID uuid.UUID, score *types.DecisionScore) {
	n.send(ctx, userID, realtime.SSEEventDecisionScored, map[string]any{
		"decision_id":   score.DecisionID,
		"overall_score": score.OverallScore,
	})
}
