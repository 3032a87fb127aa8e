package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"stylefix/internal/services/api"
	"stylefix/internal/services/suggest/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [sentence]",
	Short: "Suggest rewrites for one flagged sentence or a whole document",
	Long: `Resolve one issue given on the command line (or stdin), or every issue of a
document with --file and --issues. Backends come from the CORE_* environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringP("message", "m", "", "checker message for the issue")
	f.StringP("category", "c", "", "issue category (passive_voice, long_sentence, modal_verb, verb_form, other)")
	f.String("rule", "", "checker rule id")
	f.IntP("max", "n", 0, "maximum suggestions (1-5)")
	f.Duration("deadline", 0, "overall time budget per issue")
	f.Bool("deterministic-first", false, "try pattern rewrites before the backends")
	f.Bool("json", false, "print the full result as JSON")
	f.Bool("trace", false, "print the tier trace")
	f.String("file", "", "document text file")
	f.String("issues", "", "JSON file with [{rule_id,message,category,start,end}] for --file")
}

// docIssue mirrors the document issue wire shape
type docIssue struct {
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Sentence string `json:"sentence"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	maxN, _ := f.GetInt("max")
	deadline, _ := f.GetDuration("deadline")
	asJSON, _ := f.GetBool("json")
	showTrace, _ := f.GetBool("trace")
	file, _ := f.GetString("file")
	issuesPath, _ := f.GetString("issues")

	req := domain.Request{MaxSuggestions: maxN, Deadline: deadline}
	if f.Changed("deterministic-first") {
		v, _ := f.GetBool("deterministic-first")
		req.DeterministicFirst = &v
	}

	ctx := cmd.Context()
	deps, closeFn, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	p := api.Build(deps)
	svc := p.Suggest.Service()

	var results []domain.PipelineResult
	if file != "" {
		text, issues, err := readDocument(file, issuesPath)
		if err != nil {
			return err
		}
		results, err = svc.ResolveDocument(ctx, text, issues, req)
		if err != nil {
			return err
		}
	} else {
		sentence, err := sentenceArg(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		req.Issue = domain.IssueReport{
			RuleID:       flagString(cmd, "rule"),
			Message:      flagString(cmd, "message"),
			Category:     domain.Category(flagString(cmd, "category")),
			SentenceText: sentence,
		}
		res, err := svc.Resolve(ctx, req)
		if err != nil {
			return err
		}
		results = []domain.PipelineResult{res}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(results) == 1 && file == "" {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printResult(out, r, showTrace)
	}
	return nil
}

func sentenceArg(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(io.LimitReader(in, 64<<10))
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("no sentence given; pass it as an argument or on stdin")
	}
	return s, nil
}

func readDocument(file, issuesPath string) (string, []domain.IssueReport, error) {
	if issuesPath == "" {
		return "", nil, fmt.Errorf("--file needs --issues")
	}
	text, err := os.ReadFile(file)
	if err != nil {
		return "", nil, err
	}
	raw, err := os.ReadFile(issuesPath)
	if err != nil {
		return "", nil, err
	}
	var in []docIssue
	if err := json.Unmarshal(raw, &in); err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", issuesPath, err)
	}
	issues := make([]domain.IssueReport, 0, len(in))
	for _, is := range in {
		issues = append(issues, domain.IssueReport{
			RuleID:       is.RuleID,
			Message:      is.Message,
			Category:     domain.Category(is.Category),
			SentenceText: is.Sentence,
			Span:         domain.Span{Start: is.Start, End: is.End},
		})
	}
	return string(text), issues, nil
}

var (
	headerColor = color.New(color.Bold)
	methodColor = color.New(color.FgCyan)
	dimColor    = color.New(color.Faint)
)

func confidenceColor(c domain.Confidence) *color.Color {
	switch c {
	case domain.ConfidenceHigh:
		return color.New(color.FgGreen, color.Bold)
	case domain.ConfidenceMedium:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

func printResult(w io.Writer, r domain.PipelineResult, showTrace bool) {
	headerColor.Fprintln(w, r.Issue.SentenceText)
	methodColor.Fprintf(w, "  %s", r.Method)
	if r.FallbackUsed {
		dimColor.Fprint(w, " (category fallback)")
	}
	dimColor.Fprintf(w, " %s\n", time.Duration(r.ElapsedMs)*time.Millisecond)
	for i, s := range r.Suggestions {
		fmt.Fprintf(w, "  %d. %s ", i+1, s.Text)
		confidenceColor(s.Confidence).Fprintf(w, "[%s/%s]\n", s.Source, s.Confidence)
		if s.Rationale != "" {
			dimColor.Fprintf(w, "     %s\n", s.Rationale)
		}
	}
	if showTrace {
		for _, t := range r.Trace {
			dimColor.Fprintf(w, "  - %s: %s %dms %s\n", t.Tier, t.Outcome, t.ElapsedMs, t.Detail)
		}
	}
}
