// Package http provides the guidance search endpoint
package http

import (
	stdhttp "net/http"

	"stylefix/internal/modkit/httpkit"
	"stylefix/internal/services/guidance/domain"
)

// SearchInput queries the guidance index directly
type SearchInput struct {
	Query    string `json:"query"              validate:"required,min=1,max=4000" example:"The file is saved by the system."`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=passive_voice long_sentence modal_verb verb_form other" example:"passive_voice"` //nolint:lll
	K        int    `json:"k,omitempty"        validate:"omitempty,min=1,max=20" example:"5"`
}

// Register mounts the guidance routes
func Register(r httpkit.Router, s domain.RetrieverPort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[SearchInput](r, "/search", h.search)
}

type handlers struct{ svc domain.RetrieverPort }

// swagger:route POST /guidance/search Guidance guidanceSearch
// @Summary Nearest guidance exemplars for a query
// @Tags Guidance
// @Accept json
// @Produce json
// @Param payload body SearchInput true "Search"
// @Success 200 {object} domain.Retrieval "ok"
// @Failure 503 {object} httpkit.Envelope "index unavailable"
// @Router /guidance/search [post]
func (h *handlers) search(r *stdhttp.Request, in SearchInput) (any, error) {
	return h.svc.Retrieve(r.Context(), in.Query, in.Category, in.K)
}
