package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"timetabler/internal/config"
	"timetabler/internal/domain"
	"timetabler/internal/handler"
	"timetabler/internal/metrics"
	"timetabler/internal/router"
	"timetabler/mocks"
)

func newEngine(svc *mocks.MockTimetableService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Upload: config.UploadConfig{MaxFileSizeMB: 1},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	return router.Setup(cfg, zerolog.Nop(), metrics.New(prometheus.NewRegistry()),
		handler.NewTimetableHandler(svc), handler.NewHealthHandler(nil))
}

func TestSetup_Routes(t *testing.T) {
	svc := new(mocks.MockTimetableService)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.Timetable{}, 0, nil)
	r := newEngine(svc)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/timetables", http.StatusOK},
		{http.MethodGet, "/api/v1/timetables/" + id.String(), http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
