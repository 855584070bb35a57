package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/catchall"
	"github.com/sells-group/outreach-cli/internal/store"
)

type fakeStore struct {
	store.Store
	pingErr error
	counts  store.Counts
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Counts(context.Context) (*store.Counts, error) {
	return &f.counts, nil
}

type fakeProcessor struct {
	mu  sync.Mutex
	ids []int64
}

func (f *fakeProcessor) ProcessContact(_ context.Context, id int64, _ bool) (*catchall.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return &catchall.Outcome{ContactID: id, Action: catchall.ActionValidated}, nil
}

func (f *fakeProcessor) processed() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

func newTestServer(st *fakeStore, p Processor) *httptest.Server {
	return httptest.NewServer(New(st, p).Router())
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(&fakeStore{}, &fakeProcessor{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Health_Unreachable(t *testing.T) {
	ts := newTestServer(&fakeStore{pingErr: assert.AnError}, &fakeProcessor{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Stats(t *testing.T) {
	st := &fakeStore{counts: store.Counts{
		Organizations: 10, Contacts: 25, Validated: 7, Catchall: 3,
	}}
	ts := newTestServer(st, &fakeProcessor{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var counts store.Counts
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, int64(25), counts.Contacts)
	assert.Equal(t, int64(3), counts.Catchall)
}

func TestServer_WebhookValidate(t *testing.T) {
	p := &fakeProcessor{}
	ts := newTestServer(&fakeStore{}, p)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/webhook/validate", "application/json",
		strings.NewReader(`{"contact_id": 42}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["job_id"])
	assert.EqualValues(t, 42, body["contact_id"])

	// The job runs in the background after the response.
	assert.Eventually(t, func() bool {
		ids := p.processed()
		return len(ids) == 1 && ids[0] == 42
	}, time.Second, 10*time.Millisecond)
}

func TestServer_WebhookValidate_BadRequests(t *testing.T) {
	ts := newTestServer(&fakeStore{}, &fakeProcessor{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/webhook/validate", "application/json",
		strings.NewReader(`not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/webhook/validate", "application/json",
		strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
