package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/talentsift/internal/agent"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/embed"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

type seedResume struct {
	resumeID string
	yoe      int
	skills   []string
	chunks   []string
}

func newTestServer(t *testing.T, seeds []seedResume, opts ...Option) *Server {
	t.Helper()
	s, err := store.NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	embedder := embed.NewStaticEmbedder(64)
	ctx := context.Background()
	for _, seed := range seeds {
		core := &store.Resume{
			ResumeID: seed.resumeID,
			TotalYOE: seed.yoe,
			Experience: []store.Experience{
				{Title: "Engineer", Company: "Acme"},
			},
		}
		entries := make([]store.SkillEntry, len(seed.skills))
		for i, sk := range seed.skills {
			entries[i] = store.SkillEntry{
				ResumeID: seed.resumeID, SkillCanonical: sk,
				Confidence: 1.0, EvidenceCount: 1,
			}
		}
		chunks := make([]store.Chunk, len(seed.chunks))
		for i, text := range seed.chunks {
			vec, err := embedder.Embed(ctx, text)
			require.NoError(t, err)
			chunks[i] = store.Chunk{
				ChunkID:        fmt.Sprintf("%s-%d", seed.resumeID, i),
				ResumeID:       seed.resumeID,
				SectionType:    store.SectionExperience,
				SectionOrdinal: i,
				ChunkText:      text,
				Embedding:      vec,
			}
		}
		require.NoError(t, s.UpsertResume(ctx, core, &store.PersonalInfo{}, entries, chunks))
	}

	engine := search.NewEngine(s, search.WithDense(search.NewDenseRetriever(embedder, s)))
	pipeline := agent.NewPipeline(s, engine, agent.HeuristicExtractor{}, config.AgentConfig{MinStrongCandidates: 1}, nil)
	return New(config.ServerConfig{}, s, engine, pipeline, Components{Embedder: "static"}, nil, opts...)
}

func defaultSeeds() []seedResume {
	return []seedResume{
		{resumeID: "alice", yoe: 6, skills: []string{"go", "kafka"},
			chunks: []string{"built kafka pipelines in go at scale"}},
		{resumeID: "bob", yoe: 3, skills: []string{"python"},
			chunks: []string{"wrote python etl jobs"}},
	}
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/search", search.Request{Skills: []string{"go", "kafka"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "alice", resp.Results[0].ResumeID)
	assert.Equal(t, "Engineer at Acme", resp.Results[0].Headline)
}

func TestSearchEndpoint_InvalidBody(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_401_INVALID_QUERY")
}

func TestSearchEndpoint_EmptySkills(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/search", search.Request{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShortlistSync(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/shortlist/sync", shortlistRequest{Query: "go, kafka"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res agent.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.RequestID)
	assert.NotEmpty(t, res.Results)
	assert.Equal(t, agent.MatchStrong, res.MatchQuality)
}

func TestShortlistSync_QueryTextFieldName(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	// The wire name is query_text, matching the service contract.
	req := httptest.NewRequest(http.MethodPost, "/shortlist/sync", strings.NewReader(`{"query_text": "go, kafka"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res agent.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Results)

	// A body using the wrong key carries no query and is rejected.
	req = httptest.NewRequest(http.MethodPost, "/shortlist/sync", strings.NewReader(`{"query": "go, kafka"}`))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShortlistSync_EmptyQuery(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/shortlist/sync", shortlistRequest{Query: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShortlistStream(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/shortlist", shortlistRequest{Query: "go, kafka"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	// Collect the SSE event names in stream order.
	var names []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, name)
		}
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "agent_start", names[0])
	assert.Equal(t, "done", names[len(names)-1])
	assert.Contains(t, names, "mission_spec")
	assert.Contains(t, names, "result")
	assert.Contains(t, names, "stage_complete")
}

func TestShortlistStream_EmptyQuery(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodPost, "/shortlist", shortlistRequest{Query: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeGet(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodGet, "/resume/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail resumeDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "alice", detail.ResumeID)
	assert.Equal(t, "Engineer at Acme", detail.Headline)
	require.Len(t, detail.Skills, 2)
}

func TestResumeGet_NotFound(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodGet, "/resume/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_403_RESUME_NOT_FOUND")
}

func TestResumeDelete(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodDelete, "/resume/bob", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/resume/bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type recordingIndexer struct {
	deleted []string
}

func (r *recordingIndexer) DeleteResume(ctx context.Context, resumeID string) error {
	r.deleted = append(r.deleted, resumeID)
	return nil
}

func TestResumeDelete_ClearsChunkIndex(t *testing.T) {
	idx := &recordingIndexer{}
	srv := newTestServer(t, defaultSeeds(), WithIndexer(idx))

	rec := doRequest(t, srv, http.MethodDelete, "/resume/bob", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"bob"}, idx.deleted)
}

func TestResumeDelete_NotFound(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodDelete, "/resume/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSkills(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodGet, "/skills", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Skills []store.SkillCount `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Skills, 3)
}

func TestSkills_BadLimit(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodGet, "/skills?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, defaultSeeds())

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Resumes)
	assert.Equal(t, "ok", resp.Services["store"])
	assert.Equal(t, "static", resp.Services["embedder"])
	assert.Equal(t, "disabled", resp.Services["reranker"])
}
