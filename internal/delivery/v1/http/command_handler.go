package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

type CommandHandler struct {
	commandUsecase usecase.CommandUC
	logger         logger.Logger
}

func NewCommandHandler(commandUsecase usecase.CommandUC, logger logger.Logger) *CommandHandler {
	return &CommandHandler{commandUsecase: commandUsecase, logger: logger}
}

// execute
//
//	@Summary		Выполнить команду BaseLinker
//	@Description	Текстовая команда переводится в вызов API, например "get categories"
//	@Tags			baselinker
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CommandRequest	true	"Команда"
//	@Success		200		{object}	CommandResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/baselinker/commands [post]
func (c *CommandHandler) execute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		WriteError(w, e.Wrap("command", e.ErrMissingFields))
		return
	}

	res, err := c.commandUsecase.Execute(r.Context(), req.Command)
	if err != nil {
		c.logger.Warnf("command %q failed: %v", req.Command, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCommandResponse(res))
}

// quickActions
//
//	@Summary	Готовые команды
//	@Tags		baselinker
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/baselinker/quick-actions [get]
func (c *CommandHandler) quickActions(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, c.commandUsecase.QuickActions())
}
