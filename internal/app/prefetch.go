package app

import (
	"context"
	"log/slog"
	"time"

	"botornot/internal/llm"
)

const (
	// How long one decoy generation may run before the placeholder kicks in
	defaultGenerateTimeout = 30 * time.Second

	// Used when generation fails or produces nothing
	placeholderResponse = "I'd rather keep that one to myself."

	// The decoy answers in the same register as the players
	promptPrefix = "Answer the party game question in one short casual sentence.\nQ: "
	promptSuffix = "\nA:"
)

// Pair is a prompt and the decoy response prepared for one round
type Pair struct {
	Prompt        string
	DecoyResponse string
}

// Prefetcher keeps exactly one prompt/decoy pair prepared ahead of the
// round that will consume it, hiding generation latency behind the human
// writing time. Only one generation is ever outstanding: the next refill
// starts when the current pair is consumed.
type Prefetcher struct {
	prompts PromptSource
	gen     llm.Generator
	timeout time.Duration
	logger  *slog.Logger
	ready   chan Pair
}

// NewPrefetcher creates a prefetcher and kicks off the first generation
func NewPrefetcher(prompts PromptSource, gen llm.Generator, logger *slog.Logger) *Prefetcher {
	p := &Prefetcher{
		prompts: prompts,
		gen:     gen,
		timeout: defaultGenerateTimeout,
		logger:  logger,
		ready:   make(chan Pair, 1),
	}
	go p.prepareNext()
	return p
}

// Consume takes the prepared pair and triggers preparation of the next
// one. If invoked before a prefetch has completed it blocks on that
// pending result rather than issuing a duplicate request.
func (p *Prefetcher) Consume(ctx context.Context) (Pair, error) {
	select {
	case pair := <-p.ready:
		go p.prepareNext()
		return pair, nil
	case <-ctx.Done():
		return Pair{}, ctx.Err()
	}
}

// prepareNext draws a prompt, generates the decoy answer, and parks the
// pair for the next round. Generation failure degrades to a placeholder
// response rather than aborting the round.
func (p *Prefetcher) prepareNext() {
	prompt := p.prompts.Next()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	response, err := p.gen.Generate(ctx, promptPrefix+prompt+promptSuffix)
	if err != nil {
		p.logger.Warn("decoy generation failed, using placeholder", "error", err)
		response = placeholderResponse
	}

	p.ready <- Pair{Prompt: prompt, DecoyResponse: response}
}
