// Package http exposes the resolver over the JSON API
package http

import (
	stdhttp "net/http"
	"time"

	"stylefix/internal/modkit/httpkit"
	"stylefix/internal/services/suggest/domain"
)

// ResolveInput is one resolver call
type ResolveInput struct {
	Sentence           string `json:"sentence"                      validate:"required,min=1,max=4000" example:"The file is saved by the system."`
	IssueMessage       string `json:"issue_message"                 validate:"max=2000" example:"Avoid passive voice."`
	IssueCategory      string `json:"issue_category,omitempty"      validate:"max=64" example:"passive_voice"`
	RuleID             string `json:"rule_id,omitempty"             validate:"max=128" example:"Vale.Passive"`
	MaxSuggestions     int    `json:"max_suggestions,omitempty"     validate:"omitempty,min=1,max=5" example:"3"`
	DeadlineMs         int    `json:"deadline_ms,omitempty"         validate:"omitempty,min=1,max=120000" example:"25000"`
	DeterministicFirst *bool  `json:"deterministic_first,omitempty" example:"false"`
}

// DocumentIssue is one detected issue located by byte span
type DocumentIssue struct {
	RuleID   string `json:"rule_id,omitempty"  validate:"max=128"`
	Message  string `json:"message"            validate:"max=2000"`
	Category string `json:"category,omitempty" validate:"max=64"`
	Sentence string `json:"sentence,omitempty" validate:"max=4000"`
	Start    int    `json:"start"              validate:"min=0"`
	End      int    `json:"end"                validate:"gtefield=Start"`
}

// DocumentInput resolves many issues against one text
type DocumentInput struct {
	Text               string          `json:"text"                          validate:"required,max=200000"`
	Issues             []DocumentIssue `json:"issues"                        validate:"required,min=1,max=200,dive"`
	MaxSuggestions     int             `json:"max_suggestions,omitempty"     validate:"omitempty,min=1,max=5"`
	DeadlineMs         int             `json:"deadline_ms,omitempty"         validate:"omitempty,min=1,max=120000"`
	DeterministicFirst *bool           `json:"deterministic_first,omitempty"`
}

// DocumentOutput holds results in input order
type DocumentOutput struct {
	Results []domain.PipelineResult `json:"results"`
}

// Resolver is what the handlers need
type Resolver interface {
	domain.ResolverPort
	domain.DocumentPort
}

// Register mounts the suggestion routes
func Register(r httpkit.Router, s Resolver) {
	h := &handlers{svc: s}
	httpkit.PostJSON[ResolveInput](r, "/resolve", h.resolve)
	httpkit.PostJSON[DocumentInput](r, "/document", h.document)
}

type handlers struct{ svc Resolver }

// swagger:route POST /suggestions/resolve Suggestions suggestionsResolve
// @Summary Resolve one issue into rewrite suggestions
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body ResolveInput true "Issue"
// @Success 200 {object} domain.PipelineResult "ok"
// @Failure 422 {object} httpkit.Envelope "invalid input"
// @Router /suggestions/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), domain.Request{
		Issue: domain.IssueReport{
			RuleID:       in.RuleID,
			Message:      in.IssueMessage,
			Category:     domain.Category(in.IssueCategory),
			SentenceText: in.Sentence,
		},
		MaxSuggestions:     in.MaxSuggestions,
		Deadline:           time.Duration(in.DeadlineMs) * time.Millisecond,
		DeterministicFirst: in.DeterministicFirst,
	})
}

// swagger:route POST /suggestions/document Suggestions suggestionsDocument
// @Summary Resolve every issue in a document
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body DocumentInput true "Document"
// @Success 200 {object} DocumentOutput "ok"
// @Failure 422 {object} httpkit.Envelope "invalid input or span"
// @Router /suggestions/document [post]
func (h *handlers) document(r *stdhttp.Request, in DocumentInput) (any, error) {
	issues := make([]domain.IssueReport, 0, len(in.Issues))
	for _, is := range in.Issues {
		issues = append(issues, domain.IssueReport{
			RuleID:       is.RuleID,
			Message:      is.Message,
			Category:     domain.Category(is.Category),
			SentenceText: is.Sentence,
			Span:         domain.Span{Start: is.Start, End: is.End},
		})
	}
	res, err := h.svc.ResolveDocument(r.Context(), in.Text, issues, domain.Request{
		MaxSuggestions:     in.MaxSuggestions,
		Deadline:           time.Duration(in.DeadlineMs) * time.Millisecond,
		DeterministicFirst: in.DeterministicFirst,
	})
	if err != nil {
		return nil, err
	}
	return DocumentOutput{Results: res}, nil
}
