package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/generator"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/metrics"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/tracing"
	"github.com/KasumiMercury/primind-floor-operations/internal/seatplan"
)

const DefaultGenerateTimeout = 25 * time.Second

const (
	passDraft  = "draft"
	passRepair = "repair"

	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type Config struct {
	GenerateTimeout time.Duration
	Provider        string
	Model           string
	MaxTokens       int
	Location        *time.Location
	CapacitySource  CapacitySource
}

type Service struct {
	generator generator.Generator
	store     domain.FloorRepository
	recorder  domain.RunRecorder
	metrics   *metrics.OptimizerMetrics
	cfg       Config
	now       func() time.Time
}

// NewService wires the pipeline. store, recorder and optimizerMetrics may be nil.
func NewService(
	gen generator.Generator,
	store domain.FloorRepository,
	recorder domain.RunRecorder,
	optimizerMetrics *metrics.OptimizerMetrics,
	cfg Config,
) *Service {
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = DefaultGenerateTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CapacitySource == "" {
		cfg.CapacitySource = CapacityFromGroup
	}
	return &Service{
		generator: gen,
		store:     store,
		recorder:  recorder,
		metrics:   optimizerMetrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Preview asks the generator for a plan, optionally runs one repair call,
// then parses leniently and applies the post-pass.
func (s *Service) Preview(ctx context.Context, req Request) (resp *Response, err error) {
	started := time.Now()
	ctx, span := tracing.StartOptimizerRunSpan(ctx, ModePreview, req.StoreID)
	defer func() {
		s.finishRun(ctx, ModePreview, resp, err)
		tracing.RecordOptimizerRunResult(span, countAssignments(resp), countErrors(resp), countWarnings(resp), err)
		span.End()
	}()

	if strings.TrimSpace(req.Payload) == "" {
		return nil, domain.ErrPayloadMissing
	}
	fc, err := s.resolveContext(ctx, req)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, passDraft, generator.Request{
		System: draftSystemPrompt(fc),
		User:   req.Payload,
	})
	if err != nil {
		return nil, err
	}

	usedRepair := false
	if req.Repair {
		repaired, repairErr := s.generate(ctx, passRepair, generator.Request{
			System: repairInstructions,
			User:   repairUserPrompt(req.Payload, text),
		})
		switch {
		case repairErr != nil && ctx.Err() != nil:
			return nil, repairErr
		case repairErr != nil:
			slog.WarnContext(ctx, "repair call failed, keeping draft",
				slog.String("store_id", req.StoreID),
				slog.String("error", repairErr.Error()),
			)
		case !looksLikePlan(repaired):
			slog.WarnContext(ctx, "repair output has no assignments section, keeping draft",
				slog.String("store_id", req.StoreID),
				slog.Int("response_bytes", len(repaired)),
			)
		default:
			text = repaired
			usedRepair = true
		}
	}

	parsed := seatplan.ParseLenient(text)
	if parsed.Fatal {
		s.recordParseErrors(ctx, ModePreview, len(parsed.Errors))
		return nil, fmt.Errorf("%w: %s", domain.ErrUnparseableResponse, fatalMessage(parsed))
	}

	return s.finalize(ctx, ModePreview, req, fc, parsed, usedRepair, started)
}

// Convert parses a caller-supplied assignments document and applies the
// post-pass. Strict requests use the strict grammar.
func (s *Service) Convert(ctx context.Context, req Request) (resp *Response, err error) {
	started := time.Now()
	ctx, span := tracing.StartOptimizerRunSpan(ctx, ModeConvert, req.StoreID)
	defer func() {
		s.finishRun(ctx, ModeConvert, resp, err)
		tracing.RecordOptimizerRunResult(span, countAssignments(resp), countErrors(resp), countWarnings(resp), err)
		span.End()
	}()

	if strings.TrimSpace(req.Payload) == "" {
		return nil, domain.ErrPayloadMissing
	}
	fc, err := s.resolveContext(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed seatplan.Result
	if req.Strict {
		parsed = seatplan.Parse(req.Payload)
	} else {
		parsed = seatplan.ParseLenient(req.Payload)
	}
	if parsed.Fatal {
		s.recordParseErrors(ctx, ModeConvert, len(parsed.Errors))
		return nil, fmt.Errorf("%w: %s", domain.ErrUnparseablePayload, fatalMessage(parsed))
	}

	return s.finalize(ctx, ModeConvert, req, fc, parsed, false, started)
}

// BuildPayload renders the generator request for a snapshot. A nil snapshot
// is loaded from the store.
func (s *Service) BuildPayload(ctx context.Context, storeID string, day time.Time, fc *Context, overridePrompt string) (string, error) {
	if fc == nil {
		loaded, err := s.LoadContext(ctx, storeID, s.dayOf(day))
		if err != nil {
			return "", err
		}
		fc = loaded
	} else if err := fc.Validate(); err != nil {
		return "", err
	}

	in := PayloadInput{
		Reservations:   fc.Reservations,
		Tables:         fc.Tables,
		OverridePrompt: overridePrompt,
		Location:       s.cfg.Location,
	}
	if fc.Policy != nil {
		in.BasePrompt = fc.Policy.BasePrompt
	}
	return BuildPayload(in), nil
}

func (s *Service) finalize(
	ctx context.Context,
	mode string,
	req Request,
	fc *Context,
	parsed seatplan.Result,
	usedRepair bool,
	started time.Time,
) (*Response, error) {
	s.recordParseErrors(ctx, mode, len(parsed.Errors))

	opts := OptionsFromContext(fc, req.AutoRepair, req.OptimizeByPolicy, s.cfg.CapacitySource)
	repairStarted := time.Now()
	_, repairSpan := tracing.StartRepairSpan(ctx, len(parsed.Plan.Assignments))
	repaired := Repair(parsed.Plan, opts)
	tracing.RecordRepairResult(repairSpan, len(repaired.Warnings), repaired.AutoRepaired)
	repairSpan.End()
	if s.metrics != nil {
		s.metrics.RecordRepairDuration(ctx, time.Since(repairStarted))
		for _, w := range repaired.Warnings {
			s.metrics.RecordWarning(ctx, w.Code)
		}
	}

	resp := &Response{
		RunID:        uuid.NewString(),
		Plan:         repaired.Plan,
		Errors:       parsed.Errors,
		Warnings:     repaired.Warnings,
		AutoRepaired: repaired.AutoRepaired,
	}
	resp.Missing, resp.Duplicates = CheckCoverage(repaired.Plan, fc)

	rejected := req.Strict && (len(resp.Errors) > 0 || len(resp.Warnings) > 0 || len(resp.Duplicates) > 0)

	s.recordRun(ctx, domain.OptimizerRunRecord{
		RunID:            resp.RunID,
		StoreID:          req.StoreID,
		Mode:             mode,
		RecordedAt:       s.now(),
		AssignmentCount:  len(resp.Plan.Assignments),
		ErrorCount:       len(resp.Errors),
		WarningsByCode:   warningsByCode(resp.Warnings),
		MissingCount:     len(resp.Missing),
		AutoRepaired:     resp.AutoRepaired,
		Rejected:         rejected,
		UsedRepairOutput: usedRepair,
		Duration:         time.Since(started),
	})

	slog.InfoContext(ctx, "optimizer run finished",
		slog.String("run_id", resp.RunID),
		slog.String("mode", mode),
		slog.String("store_id", req.StoreID),
		slog.Int("assignment_count", len(resp.Plan.Assignments)),
		slog.Int("error_count", len(resp.Errors)),
		slog.Int("warning_count", len(resp.Warnings)),
		slog.Int("missing_count", len(resp.Missing)),
		slog.Bool("auto_repaired", resp.AutoRepaired),
		slog.Bool("rejected", rejected),
	)

	if rejected {
		return resp, domain.ErrStrictRejected
	}
	return resp, nil
}

// generate bounds one generator call by the configured timeout.
func (s *Service) generate(ctx context.Context, pass string, req generator.Request) (string, error) {
	req.Model = s.cfg.Model
	req.MaxTokens = s.cfg.MaxTokens

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	started := time.Now()
	text, err := s.generator.Generate(callCtx, req)
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
		if ge, ok := generator.AsError(err); ok {
			outcome = string(ge.Kind)
		}
		slog.WarnContext(ctx, "generator call failed",
			slog.String("pass", pass),
			slog.String("provider", s.cfg.Provider),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordGeneratorDuration(ctx, pass, outcome, time.Since(started))
	}
	return text, err
}

func (s *Service) recordRun(ctx context.Context, rec domain.OptimizerRunRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record optimizer run",
			slog.String("run_id", rec.RunID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) recordParseErrors(ctx context.Context, mode string, n int) {
	if s.metrics != nil {
		s.metrics.RecordParseErrors(ctx, mode, n)
	}
}

func (s *Service) finishRun(ctx context.Context, mode string, resp *Response, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrStrictRejected):
		s.metrics.RecordRun(ctx, mode, outcomeRejected)
	case err != nil:
		s.metrics.RecordRun(ctx, mode, outcomeFailed)
	case resp != nil:
		s.metrics.RecordRun(ctx, mode, outcomeOK)
	}
}

func fatalMessage(r seatplan.Result) string {
	if len(r.Errors) == 0 {
		return "no assignments found"
	}
	return r.Errors[0].Error()
}

func warningsByCode(warnings []Warning) map[string]int {
	out := make(map[string]int)
	for _, w := range warnings {
		out[w.Code]++
	}
	return out
}

func countAssignments(resp *Response) int {
	if resp == nil {
		return 0
	}
	return len(resp.Plan.Assignments)
}

func countErrors(resp *Response) int {
	if resp == nil {
		return 0
	}
	return len(resp.Errors)
}

func countWarnings(resp *Response) int {
	if resp == nil {
		return 0
	}
	return len(resp.Warnings)
}
