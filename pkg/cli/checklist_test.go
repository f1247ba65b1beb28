package cli

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/dshills/flowcanvas/pkg/checklist"
	"github.com/dshills/flowcanvas/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// checklistService is an in-memory stand-in for the checklist REST API
type checklistService struct {
	mu        sync.Mutex
	published map[string]*checklist.Checklist
	platform  map[string]*checklist.Checklist
	nextID    int
	auth      []string
}

func (s *checklistService) write(w http.ResponseWriter, status int, c *checklist.Checklist) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(c)
}

func (s *checklistService) lookup(records map[string]*checklist.Checklist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		c, ok := records[chi.URLParam(r, "id")]
		s.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		s.write(w, http.StatusOK, c)
	}
}

// startChecklistService serves the fake API and points config.yaml at it
func startChecklistService(t *testing.T) *checklistService {
	t.Helper()

	code, err := checklist.EncodeFlowchart(sampleDiagram())
	require.NoError(t, err)

	svc := &checklistService{
		nextID: 100,
		published: map[string]*checklist.Checklist{
			"7": {
				ID:   7,
				Name: "Buy a house",
				Questions: []checklist.Question{
					{ID: 1, Question: "Budget fixed?", Options: []string{"Yes", "No"}, FollowUpQuestions: map[string][]int{"0": {2}, "1": {3, 4}}},
					{ID: 2, Question: "Area chosen?"},
					{ID: 3, Question: "Savings?"},
					{ID: 4, Question: "Mortgage?"},
				},
				FlowchartJSON: code,
			},
		},
		platform: map[string]*checklist.Checklist{
			"1": {
				ID:          1,
				Name:        "Hiring Decision Flow",
				Description: "Screening steps",
				Questions: []checklist.Question{
					{ID: 11, Question: "Role open?", Options: []string{"Yes"}},
				},
				FlowchartJSON: code,
			},
			"9": {ID: 9, Name: "../../escape", FlowchartJSON: code},
		},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc.mu.Lock()
			svc.auth = append(svc.auth, r.Header.Get("Authorization"))
			svc.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/checklists/{id}", svc.lookup(svc.published))
	r.Get("/platform_checklists/{id}", svc.lookup(svc.platform))
	r.Put("/platform_checklists/{id}", func(w http.ResponseWriter, r *http.Request) {
		var c checklist.Checklist
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		c.ID, _ = strconv.Atoi(id)
		svc.mu.Lock()
		svc.platform[id] = &c
		svc.mu.Unlock()
		svc.write(w, http.StatusOK, &c)
	})
	r.Post("/platform_checklists", func(w http.ResponseWriter, r *http.Request) {
		var c checklist.Checklist
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		svc.mu.Lock()
		svc.nextID++
		c.ID = svc.nextID
		svc.platform[strconv.Itoa(c.ID)] = &c
		svc.mu.Unlock()
		svc.write(w, http.StatusCreated, &c)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	keyring.MockInit()
	dir := useConfigDir(t)
	config := DefaultFileConfig()
	config.APIBaseURL = server.URL
	require.NoError(t, SaveFileConfig(filepath.Join(dir, "config.yaml"), config))

	return svc
}

func (s *checklistService) get(id string) *checklist.Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform[id]
}

func TestChecklistGetPrintsQuestionTree(t *testing.T) {
	startChecklistService(t)

	out, err := runCLI(t, "", "checklist", "get", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Buy a house\n")
	assert.Contains(t, out, "  ? Budget fixed?\n"+
		"    - Yes\n"+
		"      ? Area chosen?\n"+
		"    - No\n"+
		"      ? Savings?\n"+
		"      ? Mortgage?\n")
	assert.Contains(t, out, "Flowchart: 2 node(s), 1 connection(s)")
	assert.Contains(t, out, "View: offset (150,270) scale 1")
}

func TestChecklistGetPlatformSendsToken(t *testing.T) {
	svc := startChecklistService(t)
	require.NoError(t, storage.NewKeyringStore().Set(checklist.TokenKey, []byte("s3cret")))

	out, err := runCLI(t, "", "checklist", "get", "1", "--platform")
	require.NoError(t, err)
	assert.Contains(t, out, "Hiring Decision Flow\nScreening steps\n")
	assert.Equal(t, []string{"Bearer s3cret"}, svc.auth)
}

func TestChecklistGetMissing(t *testing.T) {
	startChecklistService(t)

	_, err := runCLI(t, "", "checklist", "get", "404")
	require.Error(t, err)
	assert.True(t, checklist.IsNetworkError(err))
	assert.Contains(t, err.Error(), "failed to load checklist 404")
}

func TestChecklistFlowchartDownload(t *testing.T) {
	startChecklistService(t)

	work := t.TempDir()
	t.Chdir(work)

	out, err := runCLI(t, "", "checklist", "flowchart", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Flowchart downloaded to: ")
	assert.Contains(t, out, "Hiring_Decision_Flow_flowchart.png")

	f, err := os.Open(filepath.Join(work, "Hiring_Decision_Flow_flowchart.png"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1080, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	target := filepath.Join(work, "custom.png")
	_, err = runCLI(t, "", "checklist", "flowchart", "1", "-o", target)
	require.NoError(t, err)
	_, err = os.Stat(target)
	require.NoError(t, err)
}

func TestChecklistFlowchartKeepsServerNamesLocal(t *testing.T) {
	startChecklistService(t)
	work := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.Mkdir(work, 0755))
	t.Chdir(work)

	_, err := runCLI(t, "", "checklist", "flowchart", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to write download")

	entries, err := os.ReadDir(filepath.Dir(work))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestChecklistSetFlowchart(t *testing.T) {
	svc := startChecklistService(t)

	d := sampleDiagram()
	d.Nodes = d.Nodes[:1]
	d.Connections = d.Connections[:0]
	path := writeDiagram(t, t.TempDir(), "single.json", d)

	out, err := runCLI(t, "", "checklist", "set-flowchart", "1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Checklist 1 updated with 1 node(s), 0 connection(s)")

	saved := svc.get("1")
	require.NotNil(t, saved)
	assert.Equal(t, "Hiring Decision Flow", saved.Name)
	assert.Equal(t, "Role open?", saved.Questions[0].Question)

	flow := checklist.ParseFlowchart(saved.FlowchartJSON, nil)
	assert.Len(t, flow.Nodes, 1)
	assert.Empty(t, flow.Connections)
}

func TestChecklistCreate(t *testing.T) {
	svc := startChecklistService(t)
	path := writeDiagram(t, t.TempDir(), "flow.json", sampleDiagram())

	_, err := runCLI(t, "", "checklist", "create", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checklist name is required")

	out, err := runCLI(t, "", "checklist", "create", path,
		"--name", "Vendor Review", "-q", "Security audit done?", "-q", "Budget owner?")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Checklist 101 created: Vendor Review")

	saved := svc.get("101")
	require.NotNil(t, saved)
	require.Len(t, saved.Questions, 2)
	assert.Equal(t, "Budget owner?", saved.Questions[1].Question)
	assert.Len(t, checklist.ParseFlowchart(saved.FlowchartJSON, nil).Nodes, 2)
}

func TestRootQuestions(t *testing.T) {
	questions := []checklist.Question{
		{ID: 1, FollowUpQuestions: map[string][]int{"0": {2}}},
		{ID: 2, FollowUpQuestions: map[string][]int{"0": {1}}},
	}
	// Every question is a follow-up, so nothing is hidden
	assert.Len(t, rootQuestions(questions), 2)

	questions = append(questions, checklist.Question{ID: 3})
	roots := rootQuestions(questions)
	require.Len(t, roots, 1)
	assert.Equal(t, 3, roots[0].ID)
}
