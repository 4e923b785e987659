package app

import (
	"fmt"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/analysis"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/entitlement"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/services"
)

type Services struct {
	Orchestrator *analysis.Orchestrator
	Gate         *entitlement.Gate

	Workflow    services.DecisionWorkflowService
	Reflections services.DecisionReflectionService
	Preferences services.UserPreferencesService
	Entitlement services.EntitlementService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	prompts, err := analysis.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return Services{}, fmt.Errorf("load prompts: %w", err)
	}
	log.Info("Analysis prompts loaded", "version", prompts.Version(), "provider", clients.Completer.Provider())

	orch := analysis.NewOrchestrator(
		log,
		reposet.Decision,
		reposet.DecisionScore,
		clients.Completer,
		prompts,
		clients.Locker,
		observability.NewAnalysisMetrics(),
		analysis.Config{LockTTL: cfg.LockTTL, WaitForPeer: cfg.WaitForPeer},
	)
	gate := entitlement.NewGate(services.NewAccessTierSource(reposet.UserAccess))

	// With redis every instance publishes to the bus and the forwarder
	// delivers locally; without it events go straight to this hub.
	var emit services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emit = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notify := services.NewDecisionNotifier(emit)

	return Services{
		Orchestrator: orch,
		Gate:         gate,
		Workflow:     services.NewDecisionWorkflowService(log, reposet.Decision, gate, orch, notify),
		Reflections:  services.NewDecisionReflectionService(log, reposet.Decision, reposet.DecisionReflection),
		Preferences:  services.NewUserPreferencesService(log, reposet.UserPreferences),
		Entitlement:  services.NewEntitlementService(log, gate),
	}, nil
}
