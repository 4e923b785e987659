package realtime

type SSEEvent string

const (
	SSEEventDecisionCreated       SSEEvent = "DecisionCreated"
	SSEEventDecisionUpdated       SSEEvent = "DecisionUpdated"
	SSEEventDecisionAdvanced      SSEEvent = "DecisionAdvanced"
	SSEEventDecisionAnalysisReady SSEEvent = "DecisionAnalysisReady"
	SSEEventDecisionLocked        SSEEvent = "DecisionLocked"
	SSEEventDecisionScored        SSEEvent = "DecisionScored"
)

// SSEMessage is one event addressed to every client subscribed to Channel.
// Channels are subject ids.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
