package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// submit accepts a flat JSON object for the given form.
func (h *Handler) submit(kind domain.FormKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil || payload == nil {
			badBody(c)
			return
		}

		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		res, err := h.submissions.Submit(c.Request.Context(), kind, payload, key)
		if err != nil {
			h.writeError(c, err, "Error saving data")
			return
		}

		status := http.StatusCreated
		if res.Duplicate {
			status = http.StatusOK
		}
		c.JSON(status, res)
	}
}

func (h *Handler) listSubmissions(c *gin.Context) {
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	items, err := h.submissions.List(c.Request.Context(), domain.FormKind(strings.TrimSpace(c.Query("form"))), limit)
	if err != nil {
		h.writeError(c, err, "Failed to fetch submissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": items})
}
