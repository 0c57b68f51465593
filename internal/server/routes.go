package server

import (
	"context"
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/predict"
	"github.com/solutyics/loanform/internal/session"
	"github.com/solutyics/loanform/internal/version"
)

//go:embed templates/*.html
var templateFS embed.FS

// fieldView is what the page template needs to render one input
type fieldView struct {
	Name        string
	Label       string
	Placeholder string
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.POST("/api/predict", s.handlePredict)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) handleIndex(c *gin.Context) {
	fields := make([]fieldView, len(form.AllFields))
	for i, f := range form.AllFields {
		fields[i] = fieldView{
			Name:        string(f),
			Label:       f.Label(),
			Placeholder: f.Placeholder(),
		}
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Fields":  fields,
		"Version": version.Version,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "loanform",
		"version": version.Version,
	})
}

// handlePredict runs one submission for a JSON body of raw field values.
// The response is the final form snapshot.
func (s *Server) handlePredict(c *gin.Context) {
	var values form.Fields
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": form.Errors{form.GeneralKey: "request body must be a JSON object of form fields"},
		})
		return
	}

	ctx := c.Request.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	sess := session.New("api", s.predictor, nil)
	defer sess.Close()

	sess.Fill(ctx, values)
	submitted := sess.Dispatch(ctx, form.Submit{})
	recordSubmission("api", submitted.Loading)
	st := sess.Wait()

	c.JSON(statusFor(st, sess.LastError()), st.Snapshot())
}

// statusFor maps a settled form to an HTTP status: 200 with a result, 422 when
// the applicant must fix their input, and a 5xx when the prediction service
// could not produce an answer.
func statusFor(st form.State, lastErr error) int {
	switch {
	case st.Result != nil:
		return http.StatusOK
	case lastErr == nil:
		return http.StatusUnprocessableEntity
	case predict.IsServerError(lastErr):
		if st.Errors.General() == "" {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case predict.IsNetworkError(lastErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
