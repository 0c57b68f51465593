package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/predict"
)

type stubPredictor struct {
	calls  atomic.Int32
	result *form.Result
	err    error
}

func (p *stubPredictor) Predict(ctx context.Context, payload form.Payload) (*form.Result, error) {
	p.calls.Add(1)
	return p.result, p.err
}

func validFields() form.Fields {
	return form.Fields{
		Age:          "30",
		IncomeSource: "Salary",
		Dependents:   "2",
		AnnualIncome: "50000",
		CreditScore:  "720",
		DTI:          "35.5",
		Purpose:      "Home Renovation",
	}
}

func approved() *form.Result {
	return &form.Result{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"prediction":"Approved"}`),
	}
}

func newTestServer(t *testing.T, p predict.Predictor, cfg *Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Host: "127.0.0.1"}
	}
	s, err := New(cfg, p)
	require.NoError(t, err)
	return s
}

func postPredict(t *testing.T, s *Server, body []byte) (*httptest.ResponseRecorder, form.Snapshot) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var snap form.Snapshot
	if rec.Code != http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap), rec.Body.String())
	}
	return rec, snap
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubPredictor{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "loanform", body["service"])
}

func TestIndex_RendersEveryField(t *testing.T) {
	s := newTestServer(t, &stubPredictor{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	for _, f := range form.AllFields {
		assert.Contains(t, page, `name="`+string(f)+`"`)
	}
	assert.Contains(t, page, "Enter Age")
	assert.Contains(t, page, "DTI (Debt-to-Income)")
}

func TestPredict_Success(t *testing.T) {
	p := &stubPredictor{result: approved()}
	s := newTestServer(t, p, nil)

	body, err := json.Marshal(validFields())
	require.NoError(t, err)
	rec, snap := postPredict(t, s, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, "succeeded", snap.Phase)
	assert.False(t, snap.Loading)
	assert.JSONEq(t, `{"prediction":"Approved"}`, string(snap.Result))
	assert.Contains(t, snap.Display, `"prediction": "Approved"`)
}

func TestPredict_InvalidFieldsNeverCallService(t *testing.T) {
	p := &stubPredictor{result: approved()}
	s := newTestServer(t, p, nil)

	fields := validFields()
	fields.Age = "70"
	fields.Purpose = ""
	body, err := json.Marshal(fields)
	require.NoError(t, err)
	rec, snap := postPredict(t, s, body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, int32(0), p.calls.Load())
	assert.Equal(t, "Age must be between 20 and 65.", snap.Errors["age"])
	assert.Equal(t, "Purpose of loan is required", snap.Errors["purpose"])
	assert.Empty(t, snap.Result)
}

func TestPredict_ServiceFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantMsg    string
	}{
		{
			name:       "field errors from service",
			err:        predict.NewServerError(http.StatusBadRequest, []byte(`{"error":{"age":"Too young"}}`)),
			wantStatus: http.StatusUnprocessableEntity,
			wantKey:    "age",
			wantMsg:    "Too young",
		},
		{
			name:       "error string from service",
			err:        predict.NewServerError(http.StatusInternalServerError, []byte(`{"error":"model offline"}`)),
			wantStatus: http.StatusBadGateway,
			wantKey:    form.GeneralKey,
			wantMsg:    "model offline",
		},
		{
			name:       "network failure",
			err:        predict.NewNetworkError(errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantKey:    form.GeneralKey,
			wantMsg:    predict.NetworkErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubPredictor{err: tt.err}
			s := newTestServer(t, p, nil)

			body, err := json.Marshal(validFields())
			require.NoError(t, err)
			rec, snap := postPredict(t, s, body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "failed", snap.Phase)
			assert.Equal(t, tt.wantMsg, snap.Errors[tt.wantKey])
			assert.Empty(t, snap.Result)
		})
	}
}

func TestPredict_BadJSON(t *testing.T) {
	p := &stubPredictor{}
	s := newTestServer(t, p, nil)

	rec, _ := postPredict(t, s, []byte(`[1,2,3]`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "general")
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, &stubPredictor{result: approved()}, nil)

	body, err := json.Marshal(validFields())
	require.NoError(t, err)
	postPredict(t, s, body)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loanform_predictions_total")
	assert.Contains(t, rec.Body.String(), "loanform_submissions_total")
}

func TestStatusFor(t *testing.T) {
	fieldErrs := form.State{Errors: form.Errors{"age": "Too young"}}
	general := form.State{Errors: form.Errors{form.GeneralKey: "boom"}}

	assert.Equal(t, http.StatusOK, statusFor(form.State{Result: approved()}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(fieldErrs, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(fieldErrs, predict.NewServerError(400, nil)))
	assert.Equal(t, http.StatusBadGateway, statusFor(general, predict.NewServerError(500, nil)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(general, predict.NewNetworkError(errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(general, predict.NewClientError("bad", nil)))
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, &stubPredictor{}, &Config{AllowedOrigins: []string{"https://apply.example.com/"}})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://form.local:8080", true},
		{"https://apply.example.com", true},
		{"https://evil.example.com", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://form.local:8080/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, s.checkOrigin(r), "origin %q", tt.origin)
	}
}

func TestCorsMiddleware(t *testing.T) {
	_, ok := corsMiddleware(nil)
	assert.False(t, ok)

	_, ok = corsMiddleware([]string{"*"})
	assert.True(t, ok)
}

func TestClientMessage_Event(t *testing.T) {
	ev, ok := clientMessage{Type: MessageChange, Field: "age", Value: "30"}.event()
	require.True(t, ok)
	assert.Equal(t, form.Change{Field: form.FieldAge, Value: "30"}, ev)

	ev, ok = clientMessage{Type: MessageBlur, Field: "dti"}.event()
	require.True(t, ok)
	assert.Equal(t, form.Blur{Field: form.FieldDTI}, ev)

	ev, ok = clientMessage{Type: MessageSubmit}.event()
	require.True(t, ok)
	assert.Equal(t, form.Submit{}, ev)

	_, ok = clientMessage{Type: MessageChange, Field: "salary"}.event()
	assert.False(t, ok)

	_, ok = clientMessage{Type: "reset"}.event()
	assert.False(t, ok)
}

func readState(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg serverMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "state", msg.Type)
	return msg
}

func TestWebSocket_SubmitFlow(t *testing.T) {
	p := &stubPredictor{result: approved()}
	s := newTestServer(t, p, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readState(t, conn)
	assert.NotEmpty(t, initial.SessionID)
	assert.Equal(t, "idle", initial.State.Phase)

	// Blur of an empty required field reports the error
	require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageBlur, Field: "age"}))
	msg := readState(t, conn)
	assert.Equal(t, "Age is required", msg.State.Errors["age"])

	values := validFields()
	for _, f := range form.AllFields {
		require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageChange, Field: string(f), Value: values.Get(f)}))
		msg = readState(t, conn)
		assert.Equal(t, values.Get(f), msg.State.Values.Get(f))
	}
	assert.Equal(t, "Age is required", msg.State.Errors["age"], "errors only refresh on blur before the first submit")

	require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageBlur, Field: "age"}))
	msg = readState(t, conn)
	assert.Empty(t, msg.State.Errors["age"])

	require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageSubmit}))
	msg = readState(t, conn)
	assert.True(t, msg.State.Loading)
	assert.Equal(t, "submitting", msg.State.Phase)

	msg = readState(t, conn)
	assert.False(t, msg.State.Loading)
	assert.Equal(t, "succeeded", msg.State.Phase)
	assert.JSONEq(t, `{"prediction":"Approved"}`, string(msg.State.Result))
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestWebSocket_IgnoresUnknownMessages(t *testing.T) {
	s := newTestServer(t, &stubPredictor{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readState(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageChange, Field: "salary", Value: "1"}))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: MessageChange, Field: "age", Value: "4"}))

	// Only the valid change produces a state message
	msg := readState(t, conn)
	assert.Equal(t, "4", msg.State.Values.Age)
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t, &stubPredictor{}, &Config{Host: "127.0.0.1", Port: 0})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
