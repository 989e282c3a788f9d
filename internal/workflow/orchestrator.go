// Package workflow drives a planning session through its steps, pausing at
// the checkpoints where a person has to answer.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashureev/outing-planner/internal/discovery"
	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/history"
	"github.com/ashureev/outing-planner/internal/refine"
	"github.com/ashureev/outing-planner/internal/search"
	"github.com/ashureev/outing-planner/internal/store"
	"github.com/ashureev/outing-planner/internal/textgen"
)

// MaxSteps bounds the nodes one Start or Resume call may execute.
const MaxSteps = 64

var (
	ErrNoActiveSession = fmt.Errorf("no session awaiting input: %w", errdefs.ErrConflict)
	ErrSessionBusy     = fmt.Errorf("session is already running: %w", errdefs.ErrConflict)
	ErrSessionNotFound = fmt.Errorf("session not found: %w", errdefs.ErrNotFound)
	ErrStepLimit       = fmt.Errorf("step limit exceeded: %w", errdefs.ErrInternal)
	ErrEmptyRequest    = fmt.Errorf("request text is empty: %w", errdefs.ErrInvalidArgument)
)

// Options tune a new planning session.
type Options struct {
	TimeSettings *domain.TimeSettings
	Theme        *domain.DateTheme
}

// Deps are the collaborators of an Orchestrator. Store and Searcher are
// required; the rest fall back to no-op or local defaults.
type Deps struct {
	Store      store.CheckpointStore
	Searcher   search.Searcher
	Generator  textgen.Generator
	Profile    *search.Profile
	Classifier refine.Classifier
	Recorder   history.Recorder
	Logger     *slog.Logger
}

type nodeFunc func(ctx context.Context, st *domain.SessionState) (Route, error)

// Orchestrator runs planning sessions.
type Orchestrator struct {
	store      store.CheckpointStore
	searcher   search.Searcher
	gen        textgen.Generator
	discoverer *discovery.Discoverer
	refiner    *refine.Controller
	recorder   history.Recorder
	logger     *slog.Logger
	tracer     trace.Tracer
	nodes      map[Node]nodeFunc

	// locks holds one mutex per running session.
	locks sync.Map
}

// New creates an Orchestrator.
func New(d Deps) (*Orchestrator, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("checkpoint store is required: %w", errdefs.ErrInvalidArgument)
	}
	if d.Searcher == nil {
		return nil, fmt.Errorf("searcher is required: %w", errdefs.ErrInvalidArgument)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = history.Nop()
	}
	if d.Classifier == nil {
		d.Classifier = refine.KeywordClassifier{}
		if d.Generator != nil {
			d.Classifier = refine.NewGeneratorClassifier(d.Generator, refine.KeywordClassifier{}, d.Logger)
		}
	}

	o := &Orchestrator{
		store:      d.Store,
		searcher:   d.Searcher,
		gen:        d.Generator,
		discoverer: discovery.New(d.Searcher, d.Generator, d.Profile, d.Logger),
		refiner:    refine.NewController(d.Classifier, d.Logger),
		recorder:   d.Recorder,
		logger:     d.Logger,
		tracer:     otel.Tracer("github.com/ashureev/outing-planner/internal/workflow"),
	}
	o.nodes = map[Node]nodeFunc{
		NodeAnalyzeInput:          o.analyzeInput,
		NodeAskActivityPreference: o.askFor(NodeAskActivityPreference),
		NodeDiscoverActivity:      o.discoverStage(domain.StageActivity, routeAfterActivity),
		NodeAskFoodPreference:     o.askFor(NodeAskFoodPreference),
		NodeDiscoverDining:        o.discoverStage(domain.StageDining, nil),
		NodeDiscoverCafe:          o.discoverStage(domain.StageCafe, nil),
		NodeDiscoverDrinking:      o.discoverStage(domain.StageDrinking, nil),
		NodeGenerateItinerary:     o.generateItinerary,
		NodeAskRefinement:         o.askFor(NodeAskRefinement),
		NodeValidateQuality:       o.validateQuality,
	}
	return o, nil
}

// Start creates a fresh session and runs it until it completes or needs
// input. An empty sessionID gets a new random ID; an existing session with
// the same ID is replaced.
func (o *Orchestrator) Start(ctx context.Context, request, sessionID string, opts Options) (*Outcome, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, ErrEmptyRequest
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock, err := o.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st := domain.NewSessionState(sessionID, request)
	st.TimeSettings = opts.TimeSettings
	st.Theme = opts.Theme

	o.logger.Info("Planning session started", "session_id", sessionID)
	o.record(st, "session_started", "", "", 0)
	return o.run(ctx, st, NodeAnalyzeInput)
}

// Resume answers the pending checkpoint of a paused session and continues
// it. A session that is missing or not paused is left untouched.
func (o *Orchestrator) Resume(ctx context.Context, sessionID, feedback string) (*Outcome, error) {
	unlock, err := o.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if st == nil || !st.Paused() {
		return nil, fmt.Errorf("resume %s: %w", sessionID, ErrNoActiveSession)
	}
	next := Node(st.NextNode)
	if !Known(next) {
		return nil, fmt.Errorf("resume %s: unknown next node %q: %w", sessionID, st.NextNode, errdefs.ErrDataLoss)
	}

	feedback = strings.TrimSpace(feedback)
	checkpoint := Node(st.PendingCheckpoint)
	switch checkpoint {
	case NodeAskActivityPreference:
		st.ActivityPreference = feedback
	case NodeAskFoodPreference:
		st.FoodPreference = feedback
	case NodeAskRefinement:
		st.Feedback = feedback
	}
	if feedback != "" {
		st.Log(fmt.Sprintf("You: %s", feedback))
	}
	st.PendingCheckpoint = ""
	st.Status = domain.StatusRunning

	o.logger.Info("Planning session resumed", "session_id", sessionID, "checkpoint", checkpoint)
	o.record(st, "session_resumed", string(checkpoint), "", 0)
	return o.run(ctx, st, next)
}

// Snapshot returns the persisted view of a session without running it.
func (o *Orchestrator) Snapshot(ctx context.Context, sessionID string) (*Outcome, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if st == nil {
		return nil, fmt.Errorf("snapshot %s: %w", sessionID, ErrSessionNotFound)
	}
	return newOutcome(st), nil
}

// run interprets nodes from start until an interrupt, the end node or an
// error. The state is persisted at interrupts and on completion only, so a
// failed run leaves the previous checkpoint resumable.
func (o *Orchestrator) run(ctx context.Context, st *domain.SessionState, start Node) (*Outcome, error) {
	node := start
	for steps := 0; ; steps++ {
		if node == NodeEnd {
			st.Status = domain.StatusCompleted
			st.NextNode = string(NodeEnd)
			if err := o.save(ctx, st); err != nil {
				return nil, err
			}
			o.logger.Info("Planning session completed", "session_id", st.SessionID, "passes", st.Passes)
			o.record(st, "session_completed", "", "", 0)
			return newOutcome(st), nil
		}
		if steps >= MaxSteps {
			return o.fail(st, node, fmt.Errorf("run %s: %w", st.SessionID, ErrStepLimit))
		}
		if err := ctx.Err(); err != nil {
			return o.fail(st, node, err)
		}

		route, err := o.step(ctx, node, st)
		if err != nil {
			return o.fail(st, node, err)
		}

		next, ok := nextNode(node, route)
		if !ok {
			return o.fail(st, node, fmt.Errorf("no transition from %s on %s: %w", node, route, errdefs.ErrInternal))
		}

		if interruptAfter[node] {
			st.Status = domain.StatusPaused
			st.PendingCheckpoint = string(node)
			st.NextNode = string(next)
			if err := o.save(ctx, st); err != nil {
				return nil, err
			}
			o.logger.Info("Planning session awaiting input", "session_id", st.SessionID, "checkpoint", node)
			o.record(st, "session_paused", string(node), "", 0)
			return newOutcome(st), nil
		}
		node = next
	}
}

func (o *Orchestrator) step(ctx context.Context, node Node, st *domain.SessionState) (Route, error) {
	ctx, span := o.tracer.Start(ctx, "workflow.node", trace.WithAttributes(
		attribute.String("workflow.node", string(node)),
		attribute.String("session.id", st.SessionID),
	))
	defer span.End()

	fn, ok := o.nodes[node]
	if !ok {
		return "", fmt.Errorf("unknown node %s: %w", node, errdefs.ErrInternal)
	}

	started := time.Now()
	route, err := fn(ctx, st)
	elapsed := time.Since(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.record(st, "node", string(node), err.Error(), elapsed)
		return "", err
	}
	span.SetAttributes(attribute.String("workflow.route", string(route)))
	o.logger.Debug("Node finished", "session_id", st.SessionID, "node", node, "route", route, "duration", elapsed)
	o.record(st, "node", string(node), string(route), elapsed)
	return route, nil
}

func (o *Orchestrator) fail(st *domain.SessionState, node Node, err error) (*Outcome, error) {
	o.logger.Error("Planning session failed", "session_id", st.SessionID, "node", node, "error", err)
	o.record(st, "session_failed", string(node), err.Error(), 0)
	st.Status = domain.StatusFailed
	out := newOutcome(st)
	out.Message = err.Error()
	return out, err
}

func (o *Orchestrator) save(ctx context.Context, st *domain.SessionState) error {
	st.UpdatedAt = time.Now().UTC()
	if err := o.store.Save(ctx, st.SessionID, st); err != nil {
		return fmt.Errorf("save session %s: %w", st.SessionID, err)
	}
	return nil
}

func (o *Orchestrator) record(st *domain.SessionState, eventType, node, detail string, elapsed time.Duration) {
	o.recorder.Record(history.Event{
		Timestamp:  time.Now().UTC(),
		SessionID:  st.SessionID,
		EventType:  eventType,
		Node:       node,
		Status:     string(st.Status),
		Detail:     detail,
		DurationMS: elapsed.Milliseconds(),
	})
}

// acquire takes the single-flight lock of a session. The returned func
// releases it.
func (o *Orchestrator) acquire(sessionID string) (func(), error) {
	for range 3 {
		lock, _ := o.locks.LoadOrStore(sessionID, &sync.Mutex{})
		mu := lock.(*sync.Mutex)
		if !mu.TryLock() {
			o.logger.Warn("Session already running", "session_id", sessionID)
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionBusy)
		}
		// A previous holder may have dropped this mutex from the map
		// between our load and lock.
		if cur, ok := o.locks.Load(sessionID); !ok || cur != lock {
			mu.Unlock()
			continue
		}
		return func() {
			o.locks.Delete(sessionID)
			mu.Unlock()
		}, nil
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionBusy)
}

// IsNoActiveSession reports whether err means there was nothing to resume.
func IsNoActiveSession(err error) bool {
	return errors.Is(err, ErrNoActiveSession)
}
