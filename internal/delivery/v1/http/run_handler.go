package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RunHandler struct {
	converterUsecase usecase.ConverterUC
	logger           logger.Logger
}

func NewRunHandler(converterUsecase usecase.ConverterUC, logger logger.Logger) *RunHandler {
	return &RunHandler{converterUsecase: converterUsecase, logger: logger}
}

// listRuns
//
//	@Summary	Журнал конвертаций
//	@Tags		runs
//	@Produce	json
//	@Param		limit	query	int	false	"Сколько записей (по умолчанию 20)"
//	@Success	200		{array}		RunResponse
//	@Failure	503		{object}	ErrorResponse
//	@Router		/runs [get]
func (h *RunHandler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			WriteError(w, e.Wrap("limit", e.ErrStatusBadRequest))
			return
		}
		limit = v
	}

	runs, err := h.converterUsecase.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Warnf("list runs: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRunResponses(runs))
}

// getExport
//
//	@Summary	CSV из архива
//	@Tags		runs
//	@Produce	text/csv
//	@Param		id	path		string	true	"ID запуска"
//	@Success	200	{file}		file
//	@Failure	404	{object}	ErrorResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/runs/{id}/export [get]
func (h *RunHandler) getExport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, e.Wrap("id", e.ErrStatusBadRequest))
		return
	}

	file, err := h.converterUsecase.GetExport(r.Context(), id)
	if err != nil {
		h.logger.Warnf("get export %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteCSV(w, file.FileName, file.Data)
}
