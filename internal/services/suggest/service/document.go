package service

import (
	"context"
	"strconv"

	"stylefix/internal/core/sentence"
	perr "stylefix/internal/platform/errors"
	dom "stylefix/internal/services/suggest/domain"

	"golang.org/x/sync/errgroup"
)

// MaxDocumentIssues caps one ResolveDocument call
const MaxDocumentIssues = 200

// ResolveDocument resolves every issue against text
// Issues without SentenceText are located by span; all spans are checked before any
// tier runs so a bad span fails the whole call. Results keep the input order
func (s *Service) ResolveDocument(ctx context.Context, text string, issues []dom.IssueReport, opts dom.Request) ([]dom.PipelineResult, error) {
	if len(issues) == 0 {
		return nil, perr.WithField(perr.InvalidArgf("no issues to resolve"), "issues")
	}
	if len(issues) > MaxDocumentIssues {
		return nil, perr.WithField(perr.InvalidArgf("at most %d issues per document", MaxDocumentIssues), "issues")
	}

	ix := sentence.New(text)
	reqs := make([]dom.Request, len(issues))
	for i, is := range issues {
		if is.SentenceText == "" {
			sp, ok := ix.Locate(is.Span.Start, is.Span.End)
			if !ok {
				return nil, perr.WithField(
					perr.InvalidArgf("issue %d span [%d,%d) is outside the text", i, is.Span.Start, is.Span.End),
					"issues",
				)
			}
			is.SentenceText = sp.Text
		}
		if _, err := s.prepare(is); err != nil {
			return nil, perr.WithOp(err, "issue "+strconv.Itoa(i))
		}
		r := opts
		r.Issue = is
		reqs[i] = r
	}

	out := make([]dom.PipelineResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range reqs {
		g.Go(func() error {
			res, err := s.Resolve(gctx, reqs[i])
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
