package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/domain/ranking/request"
	"github.com/kailas-cloud/talentrank/internal/domain/ranking/result"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run one rank request and print the ranked results as JSON",
	Long: "Run the relevance pipeline once, outside the HTTP server. Exemplars come from --urls " +
		"(candidates) or --company-urls (companies); otherwise --skills/--job-title build a structured filter.",
	RunE: runRank,
}

var (
	rankURLs        []string
	rankCompanyURLs []string
	rankSkills      []string
	rankJobTitle    string
	rankCompanyIDs  []string
	rankNearRegion  bool
	rankWeightSet   string
	rankOutput      string
)

func init() {
	f := rankCmd.Flags()
	f.StringSliceVar(&rankURLs, "urls", nil, "Exemplar candidate profile URLs")
	f.StringSliceVar(&rankCompanyURLs, "company-urls", nil, "Exemplar company profile URLs")
	f.StringSliceVar(&rankSkills, "skills", nil, "Structured filter: required skills")
	f.StringVar(&rankJobTitle, "job-title", "", "Structured filter: job title")
	f.StringSliceVar(&rankCompanyIDs, "company-ids", nil, "Structured filter: relevant company IDs")
	f.BoolVar(&rankNearRegion, "near-region", false, "Structured filter: boost candidates near the target region")
	f.StringVar(&rankWeightSet, "weight-set", "", "Structured filter: weight set (search, company)")
	f.StringVarP(&rankOutput, "out", "o", "", "Write results to this file instead of stdout")
	rankCmd.MarkFlagsMutuallyExclusive("urls", "company-urls", "skills")
	rankCmd.MarkFlagsMutuallyExclusive("urls", "company-urls", "job-title")

	rootCmd.AddCommand(rankCmd)
}

// rankOutputDoc is the JSON written by the rank command.
type rankOutputDoc struct {
	RunID              string          `json:"runId"`
	InputNotFound      bool            `json:"inputNotFound"`
	InputSize          int             `json:"inputSize"`
	PoolSize           int             `json:"poolSize"`
	DegradedNamespaces []string        `json:"degradedNamespaces,omitempty"`
	Results            []result.Ranked `json:"results"`
}

func rankRequestFromFlags() (request.Request, error) {
	switch {
	case len(rankURLs) > 0:
		return request.NewProfileURLs(rankURLs)
	case len(rankCompanyURLs) > 0:
		return request.NewCompanyURLs(rankCompanyURLs)
	case len(rankSkills) > 0 || rankJobTitle != "":
		return request.NewStructuredFilter(request.Filter{
			Skills:           rankSkills,
			JobTitle:         rankJobTitle,
			CompanyIDs:       rankCompanyIDs,
			NearTargetRegion: rankNearRegion,
			WeightSet:        rankWeightSet,
		})
	default:
		return request.Request{}, errors.New("one of --urls, --company-urls, --skills or --job-title is required")
	}
}

func runRank(cmd *cobra.Command, _ []string) error {
	req, err := rankRequestFromFlags()
	if err != nil {
		return err
	}

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(env, &cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.bootstrap(ctx, logger); err != nil {
		return err
	}

	out, err := a.ranker.Rank(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed (run %s): %w", out.RunID, err)
	}
	if out.InputNotFound {
		logger.Warn("none of the exemplar urls matched a stored profile", zap.String("run_id", out.RunID))
	}

	var w io.Writer = cmd.OutOrStdout()
	if rankOutput != "" {
		f, err := os.Create(rankOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return writeRankOutput(w, &out)
}

func writeRankOutput(w io.Writer, out *result.Outcome) error {
	results := out.Results
	if results == nil {
		results = []result.Ranked{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rankOutputDoc{
		RunID:              out.RunID,
		InputNotFound:      out.InputNotFound,
		InputSize:          out.InputSize,
		PoolSize:           out.PoolSize,
		DegradedNamespaces: out.DegradedIndex,
		Results:            results,
	}); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
