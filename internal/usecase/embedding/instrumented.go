package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/logger"
)

// InstrumentedEmbedder bounds each provider call with a timeout and logs it with the run's logger.
// Transport metrics live in transport/openai.
type InstrumentedEmbedder struct {
	inner   domain.Embedder
	model   string
	timeout time.Duration
}

// NewInstrumentedEmbedder wraps inner. timeout <= 0 leaves the caller's deadline alone.
func NewInstrumentedEmbedder(inner domain.Embedder, model string, timeout time.Duration) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{inner: inner, model: model, timeout: timeout}
}

// Embed delegates to the inner embedder.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log := logger.FromContext(ctx)
	start := time.Now()
	res, err := p.inner.Embed(ctx, text)
	elapsed := time.Since(start)

	if err != nil {
		log.Error("embedding request failed",
			zap.String("model", p.model),
			zap.String("text", text),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	log.Debug("embedding request completed",
		zap.String("model", p.model),
		zap.Duration("duration", elapsed),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}
