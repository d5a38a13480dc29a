package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chemtalent/jobchain/internal/lock"
	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
)

func seedRows() []models.JobPosition {
	return []models.JobPosition{
		{ID: "pharma-1-0", Industry: "pharma", Layer: "discovery", NodeID: "compound-synthesis", Title: "有机合成工程师", Company: "A", Location: "西安", Salary: "8-12k", Urgency: "low"},
		{ID: "pharma-1-1", Industry: "pharma", Layer: "discovery", NodeID: "molecular-design", Title: "CADD研究员", Company: "B", Location: "上海", Salary: "20k", Urgency: "medium"},
		{ID: "pharma-1-2", Industry: "pharma", Layer: "development", NodeID: "cmc-development", Title: "分析工程师", Company: "C", Location: "苏州", Salary: "面议", Urgency: "low"},
		{ID: "battery-1-3", Industry: "battery", Layer: "engineering", NodeID: "tonnage-scaling", Title: "工艺工程师", Company: "D", Location: "宁德", Salary: "30-40k", Urgency: "high"},
	}
}

func TestMergeGatewayIsIdempotent(t *testing.T) {
	repo := &memJobRepo{}
	g := NewMergeGateway(repo, lock.NewKeyedMutex(), quietLogger())
	ctx := context.Background()

	batch := seedRows()
	first, err := g.Persist(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Inserted) != 4 {
		t.Fatalf("first merge inserted %d", len(first.Inserted))
	}

	second, err := g.Persist(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Inserted) != 0 || second.Duplicates != 4 {
		t.Errorf("second merge = %+v", second)
	}
	if len(repo.rows) != 4 || len(repo.history) != 2 || repo.history[1].RecordsCount != 0 {
		t.Errorf("rows=%d history=%+v", len(repo.rows), repo.history)
	}
}

func TestMergeGatewayLockTimeout(t *testing.T) {
	locker := lock.NewKeyedMutex()
	unlock, err := locker.Lock(context.Background(), mergeLockKey)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	g := NewMergeGateway(&memJobRepo{}, locker, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := g.Persist(ctx, seedRows()); !utils.IsCode(err, utils.CodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
}

type brokenLocker struct{ err error }

func (b brokenLocker) Lock(context.Context, string) (func(), error) { return nil, b.err }

func TestMergeGatewayLockBackendDown(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	repo := &memJobRepo{}
	g := NewMergeGateway(repo, brokenLocker{err: cause}, quietLogger())

	_, err := g.Persist(context.Background(), seedRows())
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause lost: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Errorf("rows written without the lock: %d", len(repo.rows))
	}
}

func TestJobServiceListUsesCache(t *testing.T) {
	repo := &memJobRepo{rows: seedRows()}
	c := newMemCache()
	svc := NewJobService(repo, taxonomy.Default(), c, time.Minute, quietLogger())
	ctx := context.Background()

	rows, err := svc.List(ctx, JobQuery{Industry: "pharmaceuticals"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if _, err := svc.List(ctx, JobQuery{Industry: "pharma"}); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 1 {
		t.Errorf("repo list calls = %d, want 1 (second served from cache)", repo.listCalls)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(ctx, JobQuery{Industry: "pharma"}); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 2 {
		t.Errorf("repo list calls = %d after invalidate, want 2", repo.listCalls)
	}
}

func TestJobServiceFiltersAndSearch(t *testing.T) {
	repo := &memJobRepo{rows: seedRows()}
	svc := NewJobService(repo, taxonomy.Default(), nil, 0, quietLogger())
	ctx := context.Background()

	rows, err := svc.List(ctx, JobQuery{Industry: "pharma", Layer: "discovery", NodeID: "molecular-design"})
	if err != nil || len(rows) != 1 || rows[0].ID != "pharma-1-1" {
		t.Errorf("filtered list = %+v, err = %v", rows, err)
	}

	rows, err = svc.List(ctx, JobQuery{Keyword: "工艺"})
	if err != nil || len(rows) != 1 || rows[0].Industry != "battery" {
		t.Errorf("search = %+v, err = %v", rows, err)
	}

	if _, err := svc.List(ctx, JobQuery{Industry: "textiles"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("unknown industry err = %v", err)
	}
	if _, err := svc.List(ctx, JobQuery{Industry: "battery", Layer: "discovery"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("layer of another industry err = %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("repo list calls = %d, invalid layer must not reach storage", repo.listCalls)
	}
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(taxonomy.Default(), "pharma", seedRows()[:3])

	if st.TotalJobs != 3 || st.ByUrgency["low"] != 2 || st.ByUrgency["medium"] != 1 || st.ByUrgency["high"] != 0 {
		t.Errorf("totals = %+v", st)
	}
	if len(st.Layers) != 3 {
		t.Fatalf("layers = %d", len(st.Layers))
	}

	disc := st.Layers[0]
	if disc.ID != "discovery" || disc.Name != "药物发现层" || disc.TotalJobs != 2 {
		t.Errorf("discovery = %+v", disc)
	}
	// midpoints 10 and 20
	if disc.AvgSalary != "15k左右" {
		t.Errorf("avg salary = %q", disc.AvgSalary)
	}
	if disc.Nodes["compound-synthesis"] != 1 || len(disc.HotSkills) == 0 {
		t.Errorf("nodes = %v skills = %v", disc.Nodes, disc.HotSkills)
	}
	if dev := st.Layers[1]; dev.AvgSalary != salaryUnknown || dev.TotalJobs != 1 {
		t.Errorf("development = %+v", dev)
	}
	if com := st.Layers[2]; com.TotalJobs != 0 || com.Nodes == nil {
		t.Errorf("commercialization = %+v", com)
	}
}

func TestJobServiceLastUpdate(t *testing.T) {
	repo := &memJobRepo{}
	svc := NewJobService(repo, taxonomy.Default(), nil, 0, quietLogger())

	got, err := svc.LastUpdate(context.Background())
	if err != nil || got != nil {
		t.Fatalf("empty history: %v, %v", got, err)
	}

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	repo.history = append(repo.history, models.UpdateHistory{ID: "h1", UpdatedAt: at})
	got, err = svc.LastUpdate(context.Background())
	if err != nil || got == nil || !got.Equal(at) {
		t.Fatalf("LastUpdate = %v, %v", got, err)
	}
}

func TestAuthLogin(t *testing.T) {
	hash, err := utils.HashPassword("pa55")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewAuthService(AuthConfig{Username: "admin", PasswordHash: hash, Secret: "k", TTL: time.Hour})
	ctx := context.Background()

	tok, exp, err := svc.Login(ctx, "admin", "pa55")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry in the past: %v", exp)
	}

	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte("k"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Role != "admin" || claims.Subject != "admin" {
		t.Errorf("claims = %+v", claims)
	}

	if _, _, err := svc.Login(ctx, "admin", "nope"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "root", "pa55"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("wrong user err = %v", err)
	}

	unconfigured := NewAuthService(AuthConfig{Username: "admin"})
	if _, _, err := unconfigured.Login(ctx, "admin", "pa55"); !utils.IsCode(err, utils.CodeUnavailable) {
		t.Errorf("unconfigured err = %v", err)
	}
}
