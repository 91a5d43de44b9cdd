package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/service"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

type Handler struct {
	submissions *service.SubmissionService
	projects    *service.ProjectService
	bookings    *service.BookingService
	dashboard   *service.DashboardService
	logger      *zap.Logger
}

type Deps struct {
	Submissions *service.SubmissionService
	Projects    *service.ProjectService
	Bookings    *service.BookingService
	Dashboard   *service.DashboardService
	Logger      *zap.Logger
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		submissions: d.Submissions,
		projects:    d.Projects,
		bookings:    d.Bookings,
		dashboard:   d.Dashboard,
		logger:      logger.Named("http"),
	}
}

// bindJSON decodes a bounded request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	return c.ShouldBindJSON(dst)
}
