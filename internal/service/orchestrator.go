package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
	"github.com/searchforge/searchforge/internal/llm"
	"github.com/searchforge/searchforge/internal/repository"
	"github.com/searchforge/searchforge/internal/search"
)

// Sink receives encoded stream chunks. The HTTP handler implements it over
// the response writer; a send error means the client is gone.
type Sink interface {
	Send(chunk string) error
}

// Options toggles orchestrator behavior.
type Options struct {
	RelatedQuestions bool
	ChatHistory      bool
	StreamTimeout    time.Duration
}

// Orchestrator drives the lifecycle of one query: cache lookup, search,
// concurrent answer and related-question generation, ordered emission of the
// three stream segments, and background persistence of the transcript.
type Orchestrator struct {
	store    *repository.SessionStore
	provider search.Provider
	llm      llm.Client
	related  *RelatedQuestionsGenerator
	tasks    *TaskRegistry
	logger   *zap.Logger
	opts     Options
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(
	store *repository.SessionStore,
	provider search.Provider,
	llmClient llm.Client,
	related *RelatedQuestionsGenerator,
	tasks *TaskRegistry,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		provider: provider,
		llm:      llmClient,
		related:  related,
		tasks:    tasks,
		logger:   logger,
		opts:     opts,
	}
}

// Answer handles one query request. It returns a non-nil error only while
// nothing has been written to the sink; once streaming has begun, failures
// degrade to a partial stream and best-effort persistence.
func (o *Orchestrator) Answer(ctx context.Context, req domain.QueryRequest, sink Sink) error {
	log := o.logger.With(zap.String("session_id", req.SearchUUID))

	var (
		contexts []domain.SearchHit
		history  []domain.ChatMessage
	)

	// AwaitCache: a stored answer for the same query replays verbatim with
	// no search or generation. Store read errors degrade to a cache miss.
	if o.opts.ChatHistory {
		turns, err := o.store.GetHistory(req.SearchUUID)
		if err != nil {
			log.Error("history read failed, will generate again", zap.Error(err))
		}
		if len(turns) > 0 {
			last := turns[len(turns)-1]
			switch {
			case last.Query == req.Query:
				if rec, err := o.store.GetRecord(req.SearchUUID); err == nil {
					log.Info("query unchanged, replaying cached answer")
					if err := sink.Send(rec.Txt); err != nil {
						log.Warn("client send failed during replay", zap.Error(err))
					}
					return nil
				}
				log.Info("cached transcript missing, will generate again")
			case last.Query != "" && len(last.SearchResults) > 0:
				// Continuation: reuse the last turn's results as context
				// instead of searching again.
				contexts = last.SearchResults
				history = BuildChatHistory(turns)
			}
		}
	} else {
		rec, err := o.store.GetRecord(req.SearchUUID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info("session not cached, will generate")
		case err != nil:
			log.Error("session store read failed, will generate again", zap.Error(err))
		case rec.Query == req.Query:
			log.Info("replaying cached answer")
			if err := sink.Send(rec.Txt); err != nil {
				log.Warn("client send failed during replay", zap.Error(err))
			}
			return nil
		}
	}

	query := SanitizeQuery(req.Query)

	// SearchPending: only reached without reusable context. A failure here
	// aborts the request before any bytes are written.
	if contexts == nil {
		hits, err := o.provider.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		contexts = hits
	}

	// Start related-question generation before the answer begins streaming
	// so its latency overlaps with generation.
	var relatedCh chan []domain.RelatedQuestion
	if o.opts.RelatedQuestions && req.WantsRelatedQuestions() {
		relatedCh = make(chan []domain.RelatedQuestion, 1)
		go func() {
			relatedCh <- o.related.Generate(ctx, query, contexts)
		}()
	}

	claudeFamily := llm.IsClaudeModel(o.llm.Model())
	if claudeFamily {
		log.Info("using claude-family message assembly")
	}
	messages := BuildAnswerMessages(claudeFamily, BuildSystemPrompt(contexts), history, query)

	streamCtx := ctx
	if o.opts.StreamTimeout > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, o.opts.StreamTimeout)
		defer cancel()
	}
	stream, err := o.llm.StreamChat(streamCtx, messages)
	if err != nil {
		return fmt.Errorf("answer stream setup failed: %w", err)
	}
	defer stream.Close()

	// AnswerStreaming: contexts, marker, answer tokens, then the optional
	// related-questions segment, strictly in that order. The transcript
	// accumulates everything produced, sent or not.
	var transcript strings.Builder
	sendFailed := false
	emit := func(ev domain.StreamEvent) {
		chunk := ev.Encode()
		transcript.WriteString(chunk)
		if err := sink.Send(chunk); err != nil {
			log.Warn("client send failed, abandoning stream", zap.Error(err))
			sendFailed = true
		}
	}

	emit(domain.StreamEvent{Kind: domain.EventContexts, Contexts: contexts})
	if len(contexts) == 0 && !sendFailed {
		emit(domain.StreamEvent{Kind: domain.EventWarning})
	}

	for !sendFailed {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Bytes are already flushed: the stream just ends early and the
			// partial transcript is still persisted.
			log.Error("answer stream terminated early", zap.Error(err))
			break
		}
		if chunk == "" {
			continue
		}
		emit(domain.StreamEvent{Kind: domain.EventAnswerChunk, Chunk: chunk})
	}

	if relatedCh != nil && !sendFailed {
		select {
		case questions := <-relatedCh:
			emit(domain.StreamEvent{Kind: domain.EventRelatedQuestions, Questions: questions})
		case <-ctx.Done():
			log.Warn("related questions await canceled, omitting segment", zap.Error(ctx.Err()))
		}
	}

	// Finalizing: persistence runs off the critical path, supervised by the
	// task registry so shutdown can drain it.
	sessionID := req.SearchUUID
	txt := transcript.String()
	o.tasks.Go("persist-session", func() {
		o.persist(sessionID, query, txt)
	})

	return nil
}

// persist writes the flat record and, in history mode, the parsed turn.
// Failures are logged and swallowed: persistence never affects the
// user-visible response.
func (o *Orchestrator) persist(sessionID, query, txt string) {
	log := o.logger.With(zap.String("session_id", sessionID))

	if err := o.store.PutRecord(sessionID, &domain.SessionRecord{Query: query, Txt: txt}); err != nil {
		log.Error("failed to persist session record", zap.Error(err))
	}

	if !o.opts.ChatHistory {
		return
	}
	sections := ParseTranscript(txt)
	turn := sections.Turn(query, log)
	if err := o.store.AppendTurn(sessionID, turn); err != nil {
		log.Error("failed to append history turn", zap.Error(err))
	}
}
