// Package bot composes answers: it runs the canned-response stage, the
// domain gate, retrieval and the language model, and keeps per-user session
// state in step with the conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/apiarylab/apiary-agent/domain"
	"github.com/apiarylab/apiary-agent/llm"
	"github.com/apiarylab/apiary-agent/retrieval"
	"github.com/apiarylab/apiary-agent/session"
	"github.com/apiarylab/apiary-agent/smalltalk"
	"github.com/apiarylab/apiary-agent/vectorindex"
)

// Outcome labels which branch of the pipeline produced the answer.
type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeSmallTalk        Outcome = "smalltalk"
	OutcomeOutOfDomain      Outcome = "out_of_domain"
	OutcomeNoContext        Outcome = "no_context"
	OutcomeIndexUnavailable Outcome = "index_unavailable"
)

// Answer is the user-facing result of one question.
type Answer struct {
	Text    string
	Lang    smalltalk.Lang
	Topic   domain.Topic
	Outcome Outcome
	Sources []string
}

// Bot wires the full question pipeline.
type Bot struct {
	classifier *domain.Classifier
	responder  *smalltalk.Responder
	retriever  *retrieval.Retriever
	sessions   *session.Store
	llm        llm.Client
	logger     *log.Logger
}

func New(
	classifier *domain.Classifier,
	responder *smalltalk.Responder,
	retriever *retrieval.Retriever,
	sessions *session.Store,
	llmClient llm.Client,
	logger *log.Logger,
) *Bot {
	if logger == nil {
		logger = log.Default()
	}
	return &Bot{
		classifier: classifier,
		responder:  responder,
		retriever:  retriever,
		sessions:   sessions,
		llm:        llmClient,
		logger:     logger,
	}
}

// Ask answers a single question for a user. The order matters: smalltalk
// short-circuits before the gate, the gate short-circuits before any
// embedding or model call, and only in-domain questions enter the user's
// conversational memory.
func (b *Bot) Ask(ctx context.Context, userID, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("question cannot be empty")
	}

	lang := smalltalk.DetectLang(question)
	b.sessions.Track(userID, question)

	if text, ok := b.responder.Respond(question, lang); ok {
		return Answer{Text: text, Lang: lang, Outcome: OutcomeSmallTalk}, nil
	}

	if !b.classifier.IsInDomain(question) {
		return Answer{
			Text:    reply(outOfDomainReplies, lang),
			Lang:    lang,
			Outcome: OutcomeOutOfDomain,
		}, nil
	}

	topic, _ := b.classifier.ClassifyTopic(question)
	recent := b.sessions.Recent(userID)
	b.sessions.Remember(userID, question)

	hits, err := b.retriever.Retrieve(ctx, question, string(lang))
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrNoContext):
			return Answer{
				Text:    reply(noContextReplies, lang),
				Lang:    lang,
				Topic:   topic,
				Outcome: OutcomeNoContext,
			}, nil
		case errors.Is(err, vectorindex.ErrIndexUnavailable):
			b.logger.Printf("search with no usable index: %v", err)
			return Answer{
				Text:    reply(indexUnavailableReplies, lang),
				Lang:    lang,
				Topic:   topic,
				Outcome: OutcomeIndexUnavailable,
			}, nil
		default:
			return Answer{}, err
		}
	}

	answer, err := b.llm.Generate(ctx, buildMessages(question, recent, hits))
	if err != nil {
		return Answer{}, fmt.Errorf("llm generate: %w", err)
	}

	return Answer{
		Text:    strings.TrimSpace(answer),
		Lang:    lang,
		Topic:   topic,
		Outcome: OutcomeAnswered,
		Sources: sources(hits),
	}, nil
}

// Reset clears the user's conversational memory.
func (b *Bot) Reset(userID string) {
	b.sessions.Reset(userID)
}

func buildMessages(question string, recent []string, hits []vectorindex.Result) []llm.Message {
	var sb strings.Builder
	for _, hit := range hits {
		sb.WriteString(hit.Text)
		sb.WriteString("\n")
	}

	if len(recent) > 0 {
		sb.WriteString("\nEarlier questions from this user:\n")
		for _, q := range recent {
			sb.WriteString("- ")
			sb.WriteString(q)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer in the same language as the question.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert beekeeper. Answer using only the supplied context."},
		{Role: llm.RoleUser, Content: sb.String()},
	}
}

func sources(hits []vectorindex.Result) []string {
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, hit := range hits {
		if _, ok := seen[hit.Source]; ok {
			continue
		}
		seen[hit.Source] = struct{}{}
		out = append(out, hit.Source)
	}
	return out
}
