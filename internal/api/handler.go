package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"superPayroll/internal/model"
	"superPayroll/internal/payroll"
	"superPayroll/internal/storage"
)

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the payroll records.
type Handler struct {
	reader storage.Reader
	logger *zap.Logger
}

func NewHandler(reader storage.Reader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reader: reader, logger: logger}
}

// streamResponse adds presentation fields to a Stream.
type streamResponse struct {
	model.Stream
	MonthlyFlowRate string `json:"monthlyFlowRate"`
}

func (h *Handler) toStreamResponse(stream model.Stream) streamResponse {
	monthly, err := payroll.FlowRatePerMonth(stream.FlowRate)
	if err != nil {
		h.logger.Warn("monthly flow rate", zap.String("stream", stream.ID), zap.Error(err))
	}
	return streamResponse{Stream: stream, MonthlyFlowRate: monthly}
}

func (h *Handler) Health(c *gin.Context) {
	if pinger, ok := h.reader.(Pinger); ok {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			respondInternalError(c, h.logger, err, "store unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListEmployees(c *gin.Context) {
	q, err := parseListQuery(c, storage.EmployeeEntity)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	employees, err := h.reader.ListEmployees(c.Request.Context(), q)
	if err != nil {
		respondInternalError(c, h.logger, err, "failed to list employees")
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h *Handler) GetEmployee(c *gin.Context) {
	employee, err := h.reader.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(c, "employee not found")
			return
		}
		respondInternalError(c, h.logger, err, "failed to get employee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (h *Handler) ListStreams(c *gin.Context) {
	q, err := parseListQuery(c, storage.StreamEntity)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	streams, err := h.reader.ListStreams(c.Request.Context(), q)
	if err != nil {
		respondInternalError(c, h.logger, err, "failed to list streams")
		return
	}

	out := make([]streamResponse, 0, len(streams))
	for _, stream := range streams {
		out = append(out, h.toStreamResponse(stream))
	}
	c.JSON(http.StatusOK, gin.H{"streams": out})
}

func (h *Handler) GetStream(c *gin.Context) {
	stream, err := h.reader.GetStream(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(c, "stream not found")
			return
		}
		respondInternalError(c, h.logger, err, "failed to get stream")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stream": h.toStreamResponse(stream)})
}
