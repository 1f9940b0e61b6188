// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate sends a built request to the generation service and turns
// the reply into a validated Essay. Every call is a single attempt: failures
// are classified and returned, never retried.
package generate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/essay-engine/internal/journal"
	"github.com/pdiddy/essay-engine/internal/logging"
	"github.com/pdiddy/essay-engine/internal/metrics"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/apperrors"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// Recorder stores attempt records. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, a journal.Attempt) error
}

// Invoker runs generation attempts against one backend. Logger, Metrics and
// Journal are optional.
type Invoker struct {
	Backend Backend
	Logger  *slog.Logger
	Metrics *metrics.Collectors
	Journal Recorder
}

// now is replaced in tests.
var now = time.Now

// Invoke makes exactly one call to the backend and returns the essay. Errors
// are *apperrors.Error values of kind ServiceUnavailable, EmptyResponse or
// SchemaViolation.
func (inv *Invoker) Invoke(ctx context.Context, req *request.Request) (*types.Essay, error) {
	if req == nil {
		return nil, apperrors.New(apperrors.KindInvalidRequest, "nil request")
	}

	id := uuid.NewString()
	if inv.Logger != nil {
		ctx = logging.WithLogger(ctx, inv.Logger)
	}
	ctx = logging.WithAttempt(ctx, id)
	logger := logging.FromContext(ctx).With("provider", inv.Backend.Name(), "model", inv.Backend.Model())
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("generation started",
		"style", req.Config.Style, "category", req.Config.Category, "shape", req.Config.Shape,
		"pages", req.Config.PageCount, "attachment", req.AttachmentKind)

	start := now()
	reply, err := inv.Backend.Generate(ctx, req)
	var essay *types.Essay
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = apperrors.Wrap(err, apperrors.KindServiceUnavailable, "generation service call failed")
		}
	} else {
		essay, err = parseReply(reply, req.Contract)
	}
	elapsed := now().Sub(start)

	inv.finish(ctx, logger, id, start, elapsed, req, essay, err)
	if err != nil {
		return nil, err
	}
	return essay, nil
}

func (inv *Invoker) finish(ctx context.Context, logger *slog.Logger, id string, start time.Time, elapsed time.Duration,
	req *request.Request, essay *types.Essay, err error) {
	kind := ""
	if err != nil {
		kind = string(apperrors.KindOf(err))
		logger.Error("generation failed", "kind", kind, "duration", elapsed, "error", err)
	} else {
		logger.Info("generation succeeded", "duration", elapsed,
			"sections", len(essay.Body), "references", len(essay.References))
	}

	if inv.Metrics != nil {
		inv.Metrics.ObserveAttempt(inv.Backend.Name(), kind, elapsed)
		if essay != nil {
			inv.Metrics.ObserveEssay(len(essay.Body), len(essay.References))
		}
	}

	if inv.Journal == nil {
		return
	}
	a := journal.Attempt{
		ID:                id,
		StartedAt:         start,
		Duration:          elapsed,
		Provider:          inv.Backend.Name(),
		Model:             inv.Backend.Model(),
		Style:             string(req.Config.Style),
		Category:          string(req.Config.Category),
		Shape:             string(req.Config.Shape),
		Pages:             req.Config.PageCount,
		InternationalRefs: req.Config.InternationalRefs,
		NationalRefs:      req.Config.NationalRefs,
		AttachmentKind:    req.AttachmentKind,
		Outcome:           journal.OutcomeSuccess,
	}
	if err != nil {
		a.Outcome = journal.OutcomeFailure
		a.ErrorKind = kind
		a.ErrorMessage = err.Error()
	} else {
		a.Sections = len(essay.Body)
		a.References = len(essay.References)
	}
	if jerr := inv.Journal.Record(ctx, a); jerr != nil {
		logger.Warn("journal write failed", "error", jerr)
	}
}

// parseReply decodes and validates the service output. Nothing is defaulted:
// a reply that does not satisfy the contract is a SchemaViolation.
func parseReply(reply Reply, contract *request.Contract) (*types.Essay, error) {
	if reply.empty() {
		return nil, apperrors.New(apperrors.KindEmptyResponse, "generation service returned no content")
	}

	raw := []byte(reply.Structured)
	if len(raw) == 0 {
		raw = []byte(stripFence(reply.Text))
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindSchemaViolation, "reply is not valid JSON")
	}
	if v == nil {
		return nil, apperrors.New(apperrors.KindEmptyResponse, "generation service returned null")
	}
	if contract == nil {
		contract = request.EssayContract()
	}
	var essay types.Essay
	if err := contract.Decode(v, &essay); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindSchemaViolation, "reply violates the output contract")
	}
	if essay.Body == nil {
		essay.Body = []types.BodySection{}
	}
	if essay.References == nil {
		essay.References = []types.Reference{}
	}
	return &essay, nil
}

// stripFence removes a surrounding ``` or ```json code fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
