package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
	"github.com/talentsift/talentsift/pkg/version"
)

// serverName identifies this implementation to MCP clients.
const serverName = "TalentSift"

// Store is the persistence surface the MCP tools read.
// *store.SQLiteStore satisfies it.
type Store interface {
	GetResume(ctx context.Context, resumeID string) (*store.Resume, error)
	SkillsForResume(ctx context.Context, resumeID string) ([]store.SkillEntry, error)
	DistinctSkills(ctx context.Context, limit int) ([]store.SkillCount, error)
}

// Server bridges AI clients with the candidate search engine.
type Server struct {
	mcp    *mcp.Server
	engine *search.Engine
	store  Store
	logger *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine *search.Engine, st Store, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		store:  st,
		logger: logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "search_candidates",
			Description: "Search the resume corpus for candidates by required skills. Returns ranked candidates with match scores and evidence snippets explaining each match. Supports years-of-experience and location filters.",
		},
		{
			Name:        "get_resume",
			Description: "Fetch one candidate's full redacted profile by resume ID, including the skill ledger with confidence tiers. Use after search_candidates to inspect a specific candidate.",
		},
		{
			Name:        "list_skills",
			Description: "List the canonical skills known to the corpus with how many resumes carry each. Use to discover searchable skill names before calling search_candidates.",
		},
	}
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("mcp server stopped", "error", err.Error())
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

func (s *Server) registerTools() {
	tools := s.ListTools()
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.searchCandidatesHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[1].Name,
		Description: tools[1].Description,
	}, s.getResumeHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[2].Name,
		Description: tools[2].Description,
	}, s.listSkillsHandler)
	s.logger.Debug("mcp tools registered", "count", len(tools))
}

func (s *Server) searchCandidatesHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchCandidatesInput) (
	*mcp.CallToolResult,
	SearchCandidatesOutput,
	error,
) {
	if len(input.Skills) == 0 {
		return nil, SearchCandidatesOutput{}, NewInvalidParamsError("skills parameter is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	resp, err := s.engine.Search(ctx, search.Request{
		Skills:          input.Skills,
		Mode:            input.Mode,
		MinMatch:        input.MinMatch,
		MinYOE:          input.MinYOE,
		LocationCountry: input.Location,
		Limit:           limit,
		EnableRerank:    input.EnableRerank,
	})
	if err != nil {
		return nil, SearchCandidatesOutput{}, MapError(err)
	}

	return nil, SearchCandidatesOutput{
		Results:         resp.Results,
		TotalCandidates: resp.Meta.TotalCandidates,
		LatencyMs:       resp.Meta.LatencyMs,
	}, nil
}

func (s *Server) getResumeHandler(ctx context.Context, req *mcp.CallToolRequest, input GetResumeInput) (
	*mcp.CallToolResult,
	GetResumeOutput,
	error,
) {
	if input.ResumeID == "" {
		return nil, GetResumeOutput{}, NewInvalidParamsError("resume_id parameter is required")
	}

	core, err := s.store.GetResume(ctx, input.ResumeID)
	if err != nil {
		return nil, GetResumeOutput{}, MapError(err)
	}
	skills, err := s.store.SkillsForResume(ctx, input.ResumeID)
	if err != nil {
		return nil, GetResumeOutput{}, MapError(err)
	}

	return nil, GetResumeOutput{
		Resume:   core,
		Headline: core.Headline(),
		Skills:   skills,
	}, nil
}

func (s *Server) listSkillsHandler(ctx context.Context, req *mcp.CallToolRequest, input ListSkillsInput) (
	*mcp.CallToolResult,
	ListSkillsOutput,
	error,
) {
	limit := input.Limit
	if limit <= 0 {
		limit = 100
	}
	skills, err := s.store.DistinctSkills(ctx, limit)
	if err != nil {
		return nil, ListSkillsOutput{}, MapError(err)
	}
	return nil, ListSkillsOutput{Skills: skills}, nil
}
