package handler

import (
	"net/http"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

func (h *AuditoriaHandler) Listar(c *gin.Context) {
	var filter dto.AuditoriaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
