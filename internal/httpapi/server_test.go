package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/design/store"
	"github.com/qweave/metalize/pkg/geometry"
	"github.com/qweave/metalize/pkg/pipeline"
	"github.com/qweave/metalize/pkg/session"
)

func apiDesign() *design.Design {
	return &design.Design{
		Name:      "transmon",
		Precision: 9,
		Chips: map[string]design.Chip{
			"main": {
				Material:           "silicon",
				Size:               geometry.Vec3{X: 9, Y: 6, Z: -0.75},
				SampleHolderTop:    0.88,
				SampleHolderBottom: 1.9,
			},
		},
		Elements: []design.Element{
			{
				Component: 1,
				Name:      "pad",
				Kind:      design.KindPoly,
				Chip:      "main",
				Exterior: []geometry.Point{
					{X: 0, Y: 0}, {X: 0.4, Y: 0}, {X: 0.4, Y: 0.1}, {X: 0, Y: 0.1},
				},
			},
		},
	}
}

func testServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	designs, err := store.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	if err := designs.Put(context.Background(), apiDesign()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := NewServer(Config{
		Runner:   pipeline.NewRunner(nil, nil, logger),
		Designs:  designs,
		Sessions: session.NewMemoryStore(),
		Logger:   logger,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, designs
}

func TestHealth(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestRenderSync(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Post(ts.URL+"/render", "application/json",
		strings.NewReader(`{"design_name": "transmon"}`))
	if err != nil {
		t.Fatalf("POST /render: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var body renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.PassID == "" || body.DesignHash == "" {
		t.Errorf("response missing identifiers: %+v", body)
	}
	if body.Backend != pipeline.BackendScript {
		t.Errorf("backend = %q", body.Backend)
	}
	if !strings.Contains(body.Artifact, "import pyEPR as epr") {
		t.Error("artifact should be a pyEPR script")
	}
	if !strings.Contains(body.Artifact, "Q1_pad") {
		t.Error("artifact should draw the pad")
	}
}

func TestRenderUnknownDesign(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Post(ts.URL+"/render", "application/json",
		strings.NewReader(`{"design_name": "nope"}`))
	if err != nil {
		t.Fatalf("POST /render: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRenderInvalidBody(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Post(ts.URL+"/render", "application/json",
		strings.NewReader(`{"design_name": 42}`))
	if err != nil {
		t.Fatalf("POST /render: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderAsync(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Post(ts.URL+"/render/async", "application/json",
		strings.NewReader(`{"design_name": "transmon", "backend": "ops"}`))
	if err != nil {
		t.Fatalf("POST /render/async: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var accepted map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := accepted["session_id"]
	if id == "" {
		t.Fatal("response missing session_id")
	}

	// Poll until the background pass finishes
	deadline := time.Now().Add(5 * time.Second)
	for {
		sess := pollSession(t, ts, id)
		switch sess.Status {
		case session.StatusDone:
			if len(sess.Artifact) == 0 {
				t.Error("finished session should carry the artifact")
			}
			return
		case session.StatusFailed:
			t.Fatalf("render pass failed: %s", sess.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("render pass did not finish, status %q", sess.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func pollSession(t *testing.T, ts *httptest.Server, id string) *session.Session {
	t.Helper()
	resp, err := http.Get(ts.URL + "/render/" + id)
	if err != nil {
		t.Fatalf("GET /render/%s: %v", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("poll status = %d", resp.StatusCode)
	}
	var sess session.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return &sess
}

func TestRenderStatusUnknown(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/render/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDesignEndpoints(t *testing.T) {
	ts, _ := testServer(t)
	client := ts.Client()

	// List
	resp, err := client.Get(ts.URL + "/designs/")
	if err != nil {
		t.Fatalf("GET /designs/: %v", err)
	}
	var list map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(list["designs"]) != 1 || list["designs"][0] != "transmon" {
		t.Errorf("designs = %v", list["designs"])
	}

	// Get returns TOML
	resp, err = client.Get(ts.URL + "/designs/transmon")
	if err != nil {
		t.Fatalf("GET /designs/transmon: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `name = "transmon"`) {
		t.Errorf("body should be the design TOML:\n%s", body)
	}

	// Put a second design by re-uploading under a new name must fail
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/designs/other", strings.NewReader(string(body)))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT with mismatched name: status = %d, want 400", resp.StatusCode)
	}

	// Put under the matching name succeeds
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/designs/transmon", strings.NewReader(string(body)))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("PUT status = %d, want 201", resp.StatusCode)
	}

	// Delete
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/designs/transmon", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}

	resp, err = client.Get(ts.URL + "/designs/transmon")
	if err != nil {
		t.Fatalf("GET after delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete: status = %d, want 404", resp.StatusCode)
	}
}
