package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

// memStore backs the in-memory repositories used by the service tests
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	projects    map[uuid.UUID]*models.Project
	deployments map[uuid.UUID]*models.Deployment
	commits     map[uuid.UUID][]*models.Commit
	transitions map[uuid.UUID][]models.ProjectStatus
	clock       time.Time

	// completeFailures makes the next n Complete calls fail with a database error
	completeFailures int
	completeCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uuid.UUID]*models.User{},
		projects:    map[uuid.UUID]*models.Project{},
		deployments: map[uuid.UUID]*models.Deployment{},
		commits:     map[uuid.UUID][]*models.Commit{},
		transitions: map[uuid.UUID][]models.ProjectStatus{},
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so orderings are deterministic
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u
}

func (m *memStore) project(id uuid.UUID) *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *m.projects[id]
	return &p
}

func (m *memStore) statusHistory(projectID uuid.UUID) []models.ProjectStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProjectStatus(nil), m.transitions[projectID]...)
}

func (m *memStore) deploymentCount(projectID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sortedDeployments(projectID))
}

func (m *memStore) deployment(id uuid.UUID) *models.Deployment {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := *m.deployments[id]
	return &d
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.Conflict("user already exists", apperrors.ErrUserExists)
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", apperrors.ErrNotFound)
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r memUserRepo) FindByGitHubID(_ context.Context, githubID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.GitHubID != nil && *u.GitHubID == githubID })
}

func (r memUserRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	user.UpdatedAt = r.s.tick()
	cp := *user
	cp.Projects = nil
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

type memProjectRepo struct{ s *memStore }

func (r memProjectRepo) Create(_ context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	project.ID = uuid.New()
	project.CreatedAt = r.s.tick()
	project.UpdatedAt = project.CreatedAt
	cp := *project
	r.s.projects[project.ID] = &cp
	return nil
}

func (r memProjectRepo) owned(id, ownerID uuid.UUID) (*models.Project, error) {
	p, ok := r.s.projects[id]
	if !ok || p.UserID != ownerID {
		return nil, apperrors.NotFound("project", apperrors.ErrNotFound)
	}
	return p, nil
}

func (r memProjectRepo) FindByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r memProjectRepo) FindDetailedByIDAndOwner(_ context.Context, id, ownerID uuid.UUID, commitLimit int) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	cp := *p
	if u, ok := r.s.users[ownerID]; ok {
		owner := *u
		cp.User = &owner
	}
	for _, d := range r.s.sortedDeployments(id) {
		cp.Deployments = append(cp.Deployments, *d)
	}
	for i, c := range r.s.commits[id] {
		if i == commitLimit {
			break
		}
		cp.Commits = append(cp.Commits, *c)
	}
	return &cp, nil
}

func (m *memStore) sortedDeployments(projectID uuid.UUID) []*models.Deployment {
	var out []*models.Deployment
	for _, d := range m.deployments {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ownedProjects(ownerID uuid.UUID) []*models.Project {
	var out []*models.Project
	for _, p := range m.projects {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (r memProjectRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.ProjectListing, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.s.ownedProjects(ownerID)
	items := []*models.ProjectListing{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		deployments := r.s.sortedDeployments(all[i].ID)
		listing := &models.ProjectListing{
			Project:         *all[i],
			DeploymentCount: int64(len(deployments)),
			CommitCount:     int64(len(r.s.commits[all[i].ID])),
		}
		if len(deployments) > 0 {
			listing.Project.Deployments = []models.Deployment{*deployments[0]}
		}
		items = append(items, listing)
	}
	return items, int64(len(all)), nil
}

func (r memProjectRepo) ListRecentByOwner(_ context.Context, ownerID uuid.UUID, limit int) ([]*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Project
	for i, p := range r.s.ownedProjects(ownerID) {
		if i == limit {
			break
		}
		cp := *p
		if d := r.s.sortedDeployments(p.ID); len(d) > 0 {
			cp.Deployments = []models.Deployment{*d[0]}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r memProjectRepo) ListAllByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Project
	for _, p := range r.s.ownedProjects(ownerID) {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memProjectRepo) CountByStatus(_ context.Context, ownerID uuid.UUID) (*models.ProjectStatusCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := &models.ProjectStatusCounts{}
	for _, p := range r.s.ownedProjects(ownerID) {
		counts.Total++
		switch p.Status {
		case models.ProjectStatusPending:
			counts.Pending++
		case models.ProjectStatusBuilding:
			counts.Building++
		case models.ProjectStatusDeployed:
			counts.Deployed++
		case models.ProjectStatusFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

func (r memProjectRepo) Update(_ context.Context, id, ownerID uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = update.Description
	}
	if !update.IsEmpty() {
		p.UpdatedAt = r.s.tick()
	}
	cp := *p
	return &cp, nil
}

func (r memProjectRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.owned(id, ownerID); err != nil {
		return err
	}
	delete(r.s.projects, id)
	delete(r.s.commits, id)
	for did, d := range r.s.deployments {
		if d.ProjectID == id {
			delete(r.s.deployments, did)
		}
	}
	return nil
}

type memDeploymentRepo struct{ s *memStore }

func (m *memStore) hasNewerDeployment(d *models.Deployment) bool {
	for _, other := range m.deployments {
		if other.ProjectID == d.ProjectID && other.CreatedAt.After(d.CreatedAt) {
			return true
		}
	}
	return false
}

func (r memDeploymentRepo) Start(_ context.Context, projectID, ownerID uuid.UUID) (*models.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok || p.UserID != ownerID {
		return nil, apperrors.NotFound("project", apperrors.ErrNotFound)
	}
	p.Status = models.ProjectStatusBuilding
	p.UpdatedAt = r.s.tick()
	r.s.transitions[projectID] = append(r.s.transitions[projectID], p.Status)

	d := &models.Deployment{
		ID:        uuid.New(),
		Status:    models.DeploymentStatusBuilding,
		ProjectID: projectID,
		CreatedAt: r.s.tick(),
	}
	d.UpdatedAt = d.CreatedAt
	r.s.deployments[d.ID] = d
	cp := *d
	return &cp, nil
}

func (r memDeploymentRepo) Complete(_ context.Context, deploymentID uuid.UUID, result models.DeploymentResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.completeCalls++
	if r.s.completeFailures > 0 {
		r.s.completeFailures--
		return apperrors.DatabaseError("complete deployment", errors.New("connection reset"))
	}

	d, ok := r.s.deployments[deploymentID]
	if !ok {
		return apperrors.NotFound("deployment", apperrors.ErrNotFound)
	}
	if d.Status.IsTerminal() {
		return apperrors.Conflict("deployment already completed", nil)
	}
	d.Status = result.Status
	d.URL = result.URL
	d.Logs = result.Logs
	d.Error = result.Error
	d.AISuggestion = result.AISuggestion
	d.UpdatedAt = r.s.tick()

	if p, ok := r.s.projects[d.ProjectID]; ok && !r.s.hasNewerDeployment(d) {
		p.Status = result.ProjectStatus()
		p.UpdatedAt = d.UpdatedAt
		r.s.transitions[p.ID] = append(r.s.transitions[p.ID], p.Status)
	}
	return nil
}

func (r memDeploymentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deployments[id]
	if !ok {
		return nil, apperrors.NotFound("deployment", apperrors.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r memDeploymentRepo) FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*models.Deployment, error) {
	d, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.ProjectID != projectID {
		return nil, apperrors.NotFound("deployment", apperrors.ErrNotFound)
	}
	return d, nil
}

func (r memDeploymentRepo) ListRecentByOwner(_ context.Context, ownerID uuid.UUID, limit int) ([]*models.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Deployment
	for _, p := range r.s.ownedProjects(ownerID) {
		for _, d := range r.s.sortedDeployments(p.ID) {
			cp := *d
			cp.Project = &models.Project{ID: p.ID, Name: p.Name}
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memDeploymentRepo) ListStale(_ context.Context, createdBefore time.Time, limit int) ([]*models.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stale []*models.Deployment
	for _, d := range r.s.deployments {
		if !d.Status.IsTerminal() && d.CreatedAt.Before(createdBefore) {
			cp := *d
			stale = append(stale, &cp)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].CreatedAt.Before(stale[j].CreatedAt) })
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

type memCommitRepo struct{ s *memStore }

func (r memCommitRepo) ReplaceForProject(_ context.Context, projectID uuid.UUID, commits []*models.Commit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := make([]*models.Commit, 0, len(commits))
	for _, c := range commits {
		cp := *c
		cp.ID = uuid.New()
		cp.ProjectID = projectID
		stored = append(stored, &cp)
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Date.After(stored[j].Date) })
	r.s.commits[projectID] = stored
	return nil
}

func (r memCommitRepo) ListByProject(_ context.Context, projectID uuid.UUID, limit int) ([]*models.Commit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Commit{}
	for i, c := range r.s.commits[projectID] {
		if i == limit {
			break
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// stubGateway answers RepositoryGateway calls from fixed data
type stubGateway struct {
	mu          sync.Mutex
	access      bool
	accessErr   error
	info        *service.RepositoryInfo
	infoErr     error
	commits     []service.CommitInfo
	commitsErr  error
	status      *service.DeploymentStatusInfo
	statusErr   error
	commitCalls int
	tokens      []string
}

func (g *stubGateway) record(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = append(g.tokens, token)
}

func (g *stubGateway) GetRepositoryInfo(_ context.Context, _ string, token string) (*service.RepositoryInfo, error) {
	g.record(token)
	if g.infoErr != nil {
		return nil, g.infoErr
	}
	if g.info == nil {
		return &service.RepositoryInfo{Name: "app"}, nil
	}
	return g.info, nil
}

func (g *stubGateway) GetCommits(_ context.Context, _ string, token string, limit int) ([]service.CommitInfo, error) {
	g.record(token)
	g.mu.Lock()
	g.commitCalls++
	g.mu.Unlock()
	if g.commitsErr != nil {
		return nil, g.commitsErr
	}
	if len(g.commits) > limit {
		return g.commits[:limit], nil
	}
	return g.commits, nil
}

func (g *stubGateway) HasAccess(_ context.Context, _ string, token string) (bool, error) {
	g.record(token)
	return g.access, g.accessErr
}

func (g *stubGateway) GetDeploymentStatus(_ context.Context, _ string, token string) (*service.DeploymentStatusInfo, error) {
	g.record(token)
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	if g.status == nil {
		return &service.DeploymentStatusInfo{Status: service.DeploymentStatusNone}, nil
	}
	return g.status, nil
}

// stubAdvisor returns canned text and remembers what it was asked
type stubAdvisor struct {
	mu              sync.Mutex
	suggestion      string
	analysis        string
	suggestionCalls int
	lastError       string
	lastProject     *service.ProjectContext
	lastCommits     []service.CommitSummary
}

func (a *stubAdvisor) GenerateDeploymentSuggestion(_ context.Context, errorText, _ string, project *service.ProjectContext) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suggestionCalls++
	a.lastError = errorText
	a.lastProject = project
	return a.suggestion
}

func (a *stubAdvisor) AnalyzeCommits(_ context.Context, _ string, commits []service.CommitSummary) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastCommits = commits
	return a.analysis
}

// executorFunc adapts a function to service.DeploymentExecutor
type executorFunc func(ctx context.Context, repoURL, projectName string) (*service.DeploymentOutcome, error)

func (f executorFunc) Execute(ctx context.Context, repoURL, projectName string) (*service.DeploymentOutcome, error) {
	return f(ctx, repoURL, projectName)
}

// memLogStore is an in-memory LogStore
type memLogStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemLogStore() *memLogStore {
	return &memLogStore{objects: map[string][]byte{}}
}

func (m *memLogStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memLogStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, apperrors.NotFound("log", apperrors.ErrNotFound)
	}
	return data, nil
}

func (m *memLogStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memLogStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
