package zerobounce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus model.ValidationStatus
		wantScore  int
	}{
		{
			name:       "valid",
			status:     http.StatusOK,
			body:       `{"address":"jane@example.com","status":"valid","sub_status":"","score":10}`,
			wantStatus: model.StatusValid,
			wantScore:  10,
		},
		{
			name:       "catch_all_normalized",
			status:     http.StatusOK,
			body:       `{"address":"info@example.com","status":"catch-all","sub_status":""}`,
			wantStatus: model.StatusCatchAll,
		},
		{
			name:       "do_not_mail",
			status:     http.StatusOK,
			body:       `{"address":"abuse@example.com","status":"do_not_mail","sub_status":"role_based"}`,
			wantStatus: model.StatusDontSend,
		},
		{
			name:       "string_score",
			status:     http.StatusOK,
			body:       `{"address":"jane@example.com","status":"valid","score":"9.8"}`,
			wantStatus: model.StatusValid,
			wantScore:  9,
		},
		{
			name:       "unrecognized_status",
			status:     http.StatusOK,
			body:       `{"address":"x@example.com","status":"weird_new_status"}`,
			wantStatus: model.StatusUnknown,
		},
		{
			name:       "api_error_is_error_status",
			status:     http.StatusUnauthorized,
			body:       `{"error":"Invalid API key"}`,
			wantStatus: model.StatusError,
		},
		{
			name:       "malformed_body_is_error_status",
			status:     http.StatusOK,
			body:       `{not json`,
			wantStatus: model.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/validate", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
				assert.NotEmpty(t, r.URL.Query().Get("email"))
				// ip_address must be present even when blank.
				_, hasIP := r.URL.Query()["ip_address"]
				assert.True(t, hasIP)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))

			res, err := client.Validate(context.Background(), "jane@example.com")
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, "jane@example.com", res.Email)
		})
	}
}

func TestValidate_TransportErrorIsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))

	res, err := client.Validate(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.StatusError, res.Status)
	assert.Equal(t, 100, res.RiskScore)
	assert.NotEmpty(t, res.Raw["error"])
}

func TestValidate_CancelledContext(t *testing.T) {
	client := NewClient("test-key", WithRateLimit(1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Validate(ctx, "jane@example.com")
	require.Error(t, err)
}
