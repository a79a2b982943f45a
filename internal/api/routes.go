// Route registration and go-chi router setup.
// Public routes (/health) vs credential-protected routes (/v1/*).
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loomworks/loom/internal/api/handlers"
	apmiddleware "github.com/loomworks/loom/internal/api/middleware"
	agentdomain "github.com/loomworks/loom/internal/domain/agent"
	plannerdomain "github.com/loomworks/loom/internal/domain/planner"
	rundomain "github.com/loomworks/loom/internal/domain/run"
	tooldomain "github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
	"github.com/loomworks/loom/internal/infra/config"
	"github.com/loomworks/loom/internal/infra/eventbus"
	"github.com/loomworks/loom/internal/infra/llm"
	"github.com/loomworks/loom/internal/infra/mcptool"
)

// NewRouter creates and configures a chi router with all routes, wiring the
// registry, planners, executor, and delegation pipeline together.
func NewRouter(cfg *config.Config, db *sql.DB) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// ===== DOMAIN WIRING =====

	registry := tooldomain.NewRegistry()
	if err := tooldomain.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("register builtins: %w", err)
	}

	// Optional: import tools from configured MCP servers. Failing servers
	// fail startup — a tool missing at plan time is a silent degradation.
	if cfg.MCPServersPath != "" {
		servers, err := mcptool.LoadServers(cfg.MCPServersPath)
		if err != nil {
			return nil, err
		}
		importer := mcptool.NewImporter()
		count, err := importer.ImportAll(context.Background(), servers, registry)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Imported %d MCP tools from %d servers\n", count, len(servers))
	}

	llmRouter := llm.NewRouter(cfg.DefaultProvider)
	llmRouter.Register(llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel))
	if cfg.OpenAIAPIKey != "" {
		llmRouter.Register(llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}

	planners := plannerdomain.NewRouter(cfg.DefaultProvider)
	planners.Register("mock", plannerdomain.NewMockPlanner(registry))
	for _, name := range llmRouter.Names() {
		provider, err := llmRouter.Route(name)
		if err != nil {
			return nil, err
		}
		planners.Register(name, plannerdomain.NewLLMPlanner(provider, registry))
	}

	bus := eventbus.New()
	exec := workflow.NewExecutor(registry, bus, int64(cfg.BlockingSlots))

	catalog := agentdomain.DefaultCatalog()
	if cfg.AgentCatalogPath != "" {
		loaded, err := agentdomain.LoadCatalog(cfg.AgentCatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	pipeline := agentdomain.NewPipeline(planners, exec, catalog, cfg.MaxDelegationDepth)
	if err := agentdomain.RegisterHelperTools(registry, pipeline); err != nil {
		return nil, fmt.Errorf("register helper tools: %w", err)
	}

	runStore := rundomain.NewStore(db)

	// ===== PROTECTED ROUTES (credential required via AuthMiddleware) =====

	agentHandler := handlers.NewAgentRunHandler(planners, exec, runStore, bus, cfg.MaxDelegationDepth)
	toolHandler := handlers.NewToolHandler(registry, cfg.MaxDelegationDepth)
	runHandler := handlers.NewRunHandler(runStore)

	r.Route("/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware(cfg.APIKeyHash))

		r.Post("/agents/run", agentHandler.RunAgent) // POST /v1/agents/run

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", toolHandler.ListTools)           // GET /v1/tools
			r.Post("/{name}", toolHandler.ExecuteTool)  // POST /v1/tools/{name}
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runHandler.ListRuns)    // GET /v1/runs
			r.Get("/{id}", runHandler.GetRun)  // GET /v1/runs/{id}
		})
	})

	return r, nil
}
