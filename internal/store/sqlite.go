package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// SQLiteStore persists resume cores, PII, the skill ledger, and chunks in
// a single SQLite database. WAL mode allows concurrent readers; writes are
// serialized through a single connection.
type SQLiteStore struct {
	mu     sync.Mutex // serializes write transactions
	db     *sql.DB
	path   string
	closed bool
}

const schema = `
CREATE TABLE IF NOT EXISTS resumes_core (
	resume_id        TEXT PRIMARY KEY,
	summary          TEXT NOT NULL DEFAULT '',
	location_country TEXT NOT NULL DEFAULT '',
	location_city    TEXT NOT NULL DEFAULT '',
	total_yoe        INTEGER NOT NULL DEFAULT 0,
	doc              BLOB NOT NULL,
	ingested_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS resumes_pii (
	resume_id TEXT PRIMARY KEY,
	doc       BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS resume_skills (
	resume_id        TEXT NOT NULL,
	skill_canonical  TEXT NOT NULL,
	confidence       REAL NOT NULL,
	evidence_count   INTEGER NOT NULL,
	evidence_sources TEXT NOT NULL DEFAULT '[]',
	last_seen        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resume_id, skill_canonical)
);
CREATE INDEX IF NOT EXISTS idx_skills_canonical ON resume_skills(skill_canonical);

CREATE TABLE IF NOT EXISTS resume_chunks (
	chunk_id        TEXT PRIMARY KEY,
	resume_id       TEXT NOT NULL,
	section_type    TEXT NOT NULL,
	section_ordinal INTEGER NOT NULL,
	chunk_text      TEXT NOT NULL,
	skills_in_chunk TEXT NOT NULL DEFAULT '[]',
	start_date      TEXT NOT NULL DEFAULT '',
	end_date        TEXT NOT NULL DEFAULT '',
	embedding       BLOB
);
CREATE INDEX IF NOT EXISTS idx_chunks_resume ON resume_chunks(resume_id);
`

// validateIntegrity checks an existing database before opening it for use.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // will be created
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// NewSQLiteStore opens (or creates) the store at path.
// An empty path opens an in-memory database for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to create data directory", err)
		}
		if err := validateIntegrity(path); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreCorrupt, fmt.Sprintf("store at %s failed validation", path), err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to open database", err)
	}

	// Single connection: serializes writers and keeps in-memory databases
	// visible across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA cache_size=-65536",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			slog.Warn("sqlite_pragma_failed", slog.String("pragma", p), slog.String("error", err.Error()))
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to create schema", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// UpsertResume atomically replaces all data for a resume: core profile,
// PII, skill ledger rows, and chunks. Readers see the old version or the
// new one, never a mix.
func (s *SQLiteStore) UpsertResume(ctx context.Context, core *Resume, pii *PersonalInfo, skills []SkillEntry, chunks []Chunk) error {
	coreDoc, err := json.Marshal(core)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeInternal, "failed to encode resume core", err)
	}
	piiDoc, err := json.Marshal(pii)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeInternal, "failed to encode PII", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_skills WHERE resume_id = ?`, core.ResumeID); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to clear skill ledger", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_chunks WHERE resume_id = ?`, core.ResumeID); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to clear chunks", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resumes_core (resume_id, summary, location_country, location_city, total_yoe, doc, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(resume_id) DO UPDATE SET
			summary = excluded.summary,
			location_country = excluded.location_country,
			location_city = excluded.location_city,
			total_yoe = excluded.total_yoe,
			doc = excluded.doc,
			ingested_at = excluded.ingested_at`,
		core.ResumeID, core.Summary, core.LocationCountry, core.LocationCity,
		core.TotalYOE, coreDoc, core.IngestedAt.UTC().Format("2006-01-02T15:04:05Z"),
	); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to upsert resume core", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resumes_pii (resume_id, doc) VALUES (?, ?)
		ON CONFLICT(resume_id) DO UPDATE SET doc = excluded.doc`,
		core.ResumeID, piiDoc,
	); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to upsert PII", err)
	}

	for _, sk := range skills {
		sources, err := json.Marshal(sk.EvidenceSources)
		if err != nil {
			return sifterr.New(sifterr.ErrCodeInternal, "failed to encode evidence sources", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resume_skills (resume_id, skill_canonical, confidence, evidence_count, evidence_sources, last_seen)
			VALUES (?, ?, ?, ?, ?, ?)`,
			core.ResumeID, sk.SkillCanonical, sk.Confidence, sk.EvidenceCount, sources, sk.LastSeen,
		); err != nil {
			return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to insert skill entry", err)
		}
	}

	for _, c := range chunks {
		inChunk, err := json.Marshal(c.SkillsInChunk)
		if err != nil {
			return sifterr.New(sifterr.ErrCodeInternal, "failed to encode chunk skills", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resume_chunks (chunk_id, resume_id, section_type, section_ordinal, chunk_text, skills_in_chunk, start_date, end_date, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ChunkID, c.ResumeID, c.SectionType, c.SectionOrdinal, c.ChunkText,
			inChunk, c.StartDate, c.EndDate, encodeEmbedding(c.Embedding),
		); err != nil {
			return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to insert chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to commit resume upsert", err)
	}
	return nil
}

// DeleteResume removes all data for a resume in one transaction.
// Returns ERR_403_RESUME_NOT_FOUND if the resume does not exist.
func (s *SQLiteStore) DeleteResume(ctx context.Context, resumeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM resumes_core WHERE resume_id = ?`, resumeID)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to delete resume core", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sifterr.NotFound(resumeID)
	}

	for _, stmt := range []string{
		`DELETE FROM resumes_pii WHERE resume_id = ?`,
		`DELETE FROM resume_skills WHERE resume_id = ?`,
		`DELETE FROM resume_chunks WHERE resume_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, resumeID); err != nil {
			return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to delete resume data", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to commit resume delete", err)
	}
	return nil
}

// GetResume returns the core profile for a resume.
func (s *SQLiteStore) GetResume(ctx context.Context, resumeID string) (*Resume, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM resumes_core WHERE resume_id = ?`, resumeID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, sifterr.NotFound(resumeID)
	}
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to read resume core", err)
	}

	var r Resume
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreCorrupt, "failed to decode resume core", err)
	}
	return &r, nil
}

// GetResumes returns core profiles for the given IDs, keyed by resumeId.
// Missing IDs are silently absent from the result.
func (s *SQLiteStore) GetResumes(ctx context.Context, resumeIDs []string) (map[string]*Resume, error) {
	result := make(map[string]*Resume, len(resumeIDs))
	for _, batch := range batches(resumeIDs, 500) {
		ids := batch
		query := `SELECT doc FROM resumes_core WHERE resume_id IN (` + placeholders(len(ids)) + `)`
		rows, err := s.db.QueryContext(ctx, query, args(ids)...)
		if err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to read resume cores", err)
		}
		for rows.Next() {
			var doc []byte
			if err := rows.Scan(&doc); err != nil {
				rows.Close()
				return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to scan resume core", err)
			}
			var r Resume
			if err := json.Unmarshal(doc, &r); err != nil {
				rows.Close()
				return nil, sifterr.New(sifterr.ErrCodeStoreCorrupt, "failed to decode resume core", err)
			}
			result[r.ResumeID] = &r
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to iterate resume cores", err)
		}
		rows.Close()
	}
	return result, nil
}

// GateBySkills returns resumes whose ledger intersects the given canonical
// skills in at least threshold entries. Results are sorted by matchedCount
// desc, avgConfidence desc, resumeId asc, and capped at limit.
func (s *SQLiteStore) GateBySkills(ctx context.Context, skills []string, threshold, limit int) ([]GatedCandidate, error) {
	if len(skills) == 0 || threshold <= 0 {
		return nil, nil
	}

	query := `SELECT resume_id, skill_canonical, confidence FROM resume_skills
		WHERE skill_canonical IN (` + placeholders(len(skills)) + `)
		ORDER BY resume_id, skill_canonical`
	rows, err := s.db.QueryContext(ctx, query, args(skills)...)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "skill gate query failed", err)
	}
	defer rows.Close()

	type agg struct {
		matched []string
		sumConf float64
	}
	byResume := make(map[string]*agg)
	var order []string

	for rows.Next() {
		var id, skill string
		var conf float64
		if err := rows.Scan(&id, &skill, &conf); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to scan skill row", err)
		}
		a, ok := byResume[id]
		if !ok {
			a = &agg{}
			byResume[id] = a
			order = append(order, id)
		}
		a.matched = append(a.matched, skill)
		a.sumConf += conf
	}
	if err := rows.Err(); err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to iterate skill rows", err)
	}

	candidates := make([]GatedCandidate, 0, len(order))
	for _, id := range order {
		a := byResume[id]
		if len(a.matched) < threshold {
			continue
		}
		candidates = append(candidates, GatedCandidate{
			ResumeID:      id,
			MatchedSkills: a.matched,
			MatchedCount:  len(a.matched),
			AvgConfidence: a.sumConf / float64(len(a.matched)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].MatchedCount != candidates[j].MatchedCount {
			return candidates[i].MatchedCount > candidates[j].MatchedCount
		}
		if candidates[i].AvgConfidence != candidates[j].AvgConfidence {
			return candidates[i].AvgConfidence > candidates[j].AvgConfidence
		}
		return candidates[i].ResumeID < candidates[j].ResumeID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// ChunksFor returns all chunks (with embeddings) for the given resumes,
// ordered by resumeId, sectionType, sectionOrdinal.
func (s *SQLiteStore) ChunksFor(ctx context.Context, resumeIDs []string) ([]Chunk, error) {
	var all []Chunk
	for _, batch := range batches(resumeIDs, 500) {
		ids := batch
		query := `SELECT chunk_id, resume_id, section_type, section_ordinal, chunk_text, skills_in_chunk, start_date, end_date, embedding
			FROM resume_chunks WHERE resume_id IN (` + placeholders(len(ids)) + `)`
		rows, err := s.db.QueryContext(ctx, query, args(ids)...)
		if err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "chunk query failed", err)
		}
		chunks, err := scanChunks(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	sortChunks(all)
	return all, nil
}

// ChunksMatchingTerms returns chunks (within the given resumes, or all
// resumes when resumeIDs is empty) whose text contains any of the given
// terms case-insensitively, annotated with per-term hit counts. Order is
// deterministic: resumeId, sectionType, sectionOrdinal.
func (s *SQLiteStore) ChunksMatchingTerms(ctx context.Context, resumeIDs, terms []string) ([]TermHit, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			lowered = append(lowered, strings.ToLower(t))
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	scan := func(rows *sql.Rows) ([]TermHit, error) {
		chunks, err := scanChunks(rows)
		if err != nil {
			return nil, err
		}
		var hits []TermHit
		for _, c := range chunks {
			text := strings.ToLower(c.ChunkText)
			counts := make(map[string]int, len(lowered))
			total := 0
			for _, term := range lowered {
				n := strings.Count(text, term)
				if n > 0 {
					counts[term] = n
					total += n
				}
			}
			if total > 0 {
				hits = append(hits, TermHit{Chunk: c, HitCounts: counts, TotalHits: total})
			}
		}
		return hits, nil
	}

	var all []TermHit
	if len(resumeIDs) == 0 {
		rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, resume_id, section_type, section_ordinal, chunk_text, skills_in_chunk, start_date, end_date, embedding FROM resume_chunks`)
		if err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "chunk term query failed", err)
		}
		hits, err := scan(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		all = hits
	} else {
		for _, batch := range batches(resumeIDs, 500) {
			ids := batch
			query := `SELECT chunk_id, resume_id, section_type, section_ordinal, chunk_text, skills_in_chunk, start_date, end_date, embedding
				FROM resume_chunks WHERE resume_id IN (` + placeholders(len(ids)) + `)`
			rows, err := s.db.QueryContext(ctx, query, args(ids)...)
			if err != nil {
				return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "chunk term query failed", err)
			}
			hits, err := scan(rows)
			rows.Close()
			if err != nil {
				return nil, err
			}
			all = append(all, hits...)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].ResumeID != all[j].ResumeID {
			return all[i].ResumeID < all[j].ResumeID
		}
		if all[i].SectionType != all[j].SectionType {
			return all[i].SectionType < all[j].SectionType
		}
		return all[i].SectionOrdinal < all[j].SectionOrdinal
	})
	return all, nil
}

// ChunksForResume returns the chunks of one resume without embeddings,
// ordered by sectionType then sectionOrdinal.
func (s *SQLiteStore) ChunksForResume(ctx context.Context, resumeID string) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, resume_id, section_type, section_ordinal, chunk_text, skills_in_chunk, start_date, end_date, NULL
		FROM resume_chunks WHERE resume_id = ?
		ORDER BY section_type, section_ordinal`, resumeID)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "chunk query failed", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// SkillsForResume returns the ledger entries of one resume.
func (s *SQLiteStore) SkillsForResume(ctx context.Context, resumeID string) ([]SkillEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resume_id, skill_canonical, confidence, evidence_count, evidence_sources, last_seen
		FROM resume_skills WHERE resume_id = ?
		ORDER BY skill_canonical`, resumeID)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "skill query failed", err)
	}
	defer rows.Close()

	var entries []SkillEntry
	for rows.Next() {
		var e SkillEntry
		var sources []byte
		if err := rows.Scan(&e.ResumeID, &e.SkillCanonical, &e.Confidence, &e.EvidenceCount, &sources, &e.LastSeen); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to scan skill entry", err)
		}
		if err := json.Unmarshal(sources, &e.EvidenceSources); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreCorrupt, "failed to decode evidence sources", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DistinctSkills returns canonical skills with resume counts, most common
// first. A limit of 0 returns all.
func (s *SQLiteStore) DistinctSkills(ctx context.Context, limit int) ([]SkillCount, error) {
	query := `SELECT skill_canonical, COUNT(*) FROM resume_skills
		GROUP BY skill_canonical
		ORDER BY COUNT(*) DESC, skill_canonical ASC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "distinct skills query failed", err)
	}
	defer rows.Close()

	var out []SkillCount
	for rows.Next() {
		var sc SkillCount
		if err := rows.Scan(&sc.Skill, &sc.ResumeCount); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to scan skill count", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListResumeIDs returns up to limit resume IDs in ascending order.
func (s *SQLiteStore) ListResumeIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resume_id FROM resumes_core ORDER BY resume_id LIMIT ?`, limit)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "list query failed", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "list scan failed", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountResumes returns the number of stored resume cores.
func (s *SQLiteStore) CountResumes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes_core`).Scan(&n); err != nil {
		return 0, sifterr.New(sifterr.ErrCodeStoreUnavailable, "count query failed", err)
	}
	return n, nil
}

// Ping verifies the store is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "store unreachable", err)
	}
	return nil
}

func scanChunks(rows *sql.Rows) ([]Chunk, error) {
	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var inChunk []byte
		var emb []byte
		if err := rows.Scan(&c.ChunkID, &c.ResumeID, &c.SectionType, &c.SectionOrdinal,
			&c.ChunkText, &inChunk, &c.StartDate, &c.EndDate, &emb); err != nil {
			return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to scan chunk", err)
		}
		if len(inChunk) > 0 {
			if err := json.Unmarshal(inChunk, &c.SkillsInChunk); err != nil {
				return nil, sifterr.New(sifterr.ErrCodeStoreCorrupt, "failed to decode chunk skills", err)
			}
		}
		c.Embedding = decodeEmbedding(emb)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to iterate chunks", err)
	}
	return chunks, nil
}

func sortChunks(chunks []Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].ResumeID != chunks[j].ResumeID {
			return chunks[i].ResumeID < chunks[j].ResumeID
		}
		if chunks[i].SectionType != chunks[j].SectionType {
			return chunks[i].SectionType < chunks[j].SectionType
		}
		return chunks[i].SectionOrdinal < chunks[j].SectionOrdinal
	})
}

// encodeEmbedding packs a float32 vector as little-endian bytes.
func encodeEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian float32 vector.
func decodeEmbedding(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// placeholders returns "?, ?, ..." with n slots.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// args converts a string slice to []any for QueryContext.
func args(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// batches splits the input into slices of at most size elements.
func batches(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
