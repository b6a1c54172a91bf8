package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jordan/content-optimizer/internal/oracle"
	"github.com/jordan/content-optimizer/internal/types"
)

// Phase identifies where the controller is in its state machine.
type Phase string

const (
	// PhaseIdle means no analysis session exists; only RunAnalysis is valid.
	PhaseIdle Phase = "idle"
	// PhaseAnalyzing means an analysis (or the initial score that follows
	// it) is in flight.
	PhaseAnalyzing Phase = "analyzing"
	// PhaseScored means a session and a breakdown both exist.
	PhaseScored Phase = "scored"
	// PhaseSuggesting means a suggestion request is in flight.
	PhaseSuggesting Phase = "suggesting"
	// PhaseApplying means a fix application is in flight.
	PhaseApplying Phase = "applying"
)

// State is the passive observable consumed by the display layer.
type State struct {
	Phase       Phase                   `json:"phase"`
	Session     *types.AnalysisSession  `json:"session,omitempty"`
	Breakdown   *types.ContentBreakdown `json:"breakdown,omitempty"`
	Suggestions *types.SuggestionBundle `json:"suggestions,omitempty"`
	Document    types.DocumentState     `json:"document"`
	CanUndo     bool                    `json:"canUndo"`
	Analyzing   bool                    `json:"analyzing"`
	Scoring     bool                    `json:"scoring"`
	Suggesting  bool                    `json:"suggesting"`
	Applying    bool                    `json:"applying"`
	LastError   string                  `json:"lastError,omitempty"`
}

// Options configures a controller for one editing session.
type Options struct {
	Oracle   oracle.Client
	Document types.DocumentState
	// Location and Language scope every analysis run. They come from the
	// surrounding editor context, never from ambient globals.
	Location string
	Language string
	// RescoreDelay is the debounce window for automatic rescoring.
	// Zero means DefaultRescoreDelay.
	RescoreDelay time.Duration
	Logger       *zap.Logger
}

// Controller is the single source of truth for one editing session. It owns
// the analysis session, breakdown, suggestion bundle, and undo slot, and is
// the only component that mutates them.
type Controller struct {
	oracle oracle.Client
	doc    *Document
	log    *zap.Logger

	location string
	language string

	ctx    context.Context
	cancel context.CancelFunc

	sched       *rescoreScheduler
	analysisSeq atomic.Uint64

	mu         sync.Mutex
	session    *types.AnalysisSession
	breakdown  *types.ContentBreakdown
	bundle     *types.SuggestionBundle
	undo       *types.UndoSnapshot
	lastErr    string
	analyzing  bool
	scoring    bool
	suggesting bool
	applying   bool

	subscribers map[int]func(State)
	nextSubID   int
}

// New creates a controller and wires the document's edit signal to the
// rescore scheduler.
func New(opts Options) (*Controller, error) {
	if opts.Oracle == nil {
		return nil, fmt.Errorf("an oracle client is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		oracle:   opts.Oracle,
		doc:      NewDocument(opts.Document),
		log:      log,
		location: opts.Location,
		language: opts.Language,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.sched = newRescoreScheduler(opts.RescoreDelay, func(seq uint64) {
		// Automatic rescore failures are reported through the error
		// surface but never stop future debounce cycles.
		_ = c.rescore(c.ctx, seq)
	})
	c.doc.Subscribe(c.sched.Signal)
	return c, nil
}

// Close discards the controller. In-flight responses are dropped on arrival.
func (c *Controller) Close() {
	c.cancel()
}

// Doc returns the editing session's document. All edits, whether from the
// editor or from this controller, go through its single setter.
func (c *Controller) Doc() *Document {
	return c.doc
}

// Subscribe registers a callback invoked with a fresh state snapshot after
// every state change. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	if c.subscribers == nil {
		c.subscribers = make(map[int]func(State))
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// State returns the current observable state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Phase:       c.phaseLocked(),
		Session:     c.session,
		Breakdown:   c.breakdown,
		Suggestions: c.bundle,
		Document:    c.doc.Snapshot(),
		CanUndo:     c.undo != nil,
		Analyzing:   c.analyzing,
		Scoring:     c.scoring,
		Suggesting:  c.suggesting,
		Applying:    c.applying,
		LastError:   c.lastErr,
	}
}

func (c *Controller) phaseLocked() Phase {
	switch {
	case c.applying:
		return PhaseApplying
	case c.suggesting:
		return PhaseSuggesting
	case c.analyzing:
		return PhaseAnalyzing
	case c.session != nil && c.breakdown != nil:
		return PhaseScored
	case c.session != nil:
		return PhaseAnalyzing
	default:
		return PhaseIdle
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	state := c.stateLocked()
	subscribers := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.Unlock()
	for _, fn := range subscribers {
		fn(state)
	}
}

// RunAnalysis performs a SERP lookup for the document's primary keyword and
// installs the resulting session. A fresh session invalidates any held
// breakdown and suggestion bundle, which are scoped to the old session, and
// immediately triggers an initial score. A failed run installs nothing.
//
// Concurrent runs are not serialized; the later call wins by issuance order,
// matching the scoring staleness policy.
func (c *Controller) RunAnalysis(ctx context.Context) error {
	snap := c.doc.Snapshot()
	if strings.TrimSpace(snap.PrimaryKeyword) == "" {
		err := &oracle.ValidationError{Field: "keyword", Message: "a target keyword is required"}
		c.recordError(err)
		return err
	}

	seq := c.analysisSeq.Add(1)
	c.mu.Lock()
	c.analyzing = true
	c.mu.Unlock()
	c.notify()

	session, err := c.oracle.RunAnalysis(ctx, oracle.AnalysisRequest{
		Keyword:           snap.PrimaryKeyword,
		Location:          c.location,
		Language:          c.language,
		SecondaryKeywords: snap.SecondaryKeywords,
	})

	if c.analysisSeq.Load() != seq {
		// A newer run was issued while this one was in flight.
		c.log.Debug("dropped superseded analysis response", zap.Uint64("seq", seq))
		return nil
	}

	c.mu.Lock()
	c.analyzing = false
	if err != nil {
		c.lastErr = userMessage(err)
		c.mu.Unlock()
		c.notify()
		return err
	}
	c.session = session
	c.breakdown = nil
	c.bundle = nil
	c.lastErr = ""
	c.mu.Unlock()
	c.notify()

	// Initial score for the fresh session. Its failure is reported through
	// the error surface; the analysis itself still succeeded.
	_ = c.rescore(ctx, c.sched.Next())
	return nil
}

// Rescore issues a manual scoring run outside the debounce window.
func (c *Controller) Rescore(ctx context.Context) error {
	c.mu.Lock()
	hasSession := c.session != nil
	c.mu.Unlock()
	if !hasSession {
		err := &oracle.PreconditionError{Message: "scoring requires an active analysis; run an analysis first"}
		c.recordError(err)
		return err
	}
	return c.rescore(ctx, c.sched.Next())
}

// rescore performs one scoring run for issuance number seq, using the
// document snapshot at call time. A response is discarded when a newer run
// has been issued since; the discard is internal and never surfaces as an
// error.
func (c *Controller) rescore(ctx context.Context, seq uint64) error {
	c.mu.Lock()
	session := c.session
	if session == nil {
		// The debounce timer elapsing without a session is a no-op.
		c.mu.Unlock()
		return nil
	}
	c.scoring = true
	c.mu.Unlock()
	c.notify()

	snap := c.doc.Snapshot()
	breakdown, err := c.oracle.ScoreContent(ctx, oracle.ScoreRequest{
		AnalysisID: session.ID,
		Document:   snap,
	})

	c.mu.Lock()
	if !c.sched.Current(seq) {
		c.mu.Unlock()
		c.log.Debug("dropped superseded scoring response", zap.Uint64("seq", seq))
		return nil
	}
	c.scoring = false
	if err != nil {
		// The previous breakdown, if any, stays in place; scores are
		// replaced only on success.
		c.lastErr = userMessage(err)
		c.mu.Unlock()
		c.notify()
		return err
	}
	c.breakdown = breakdown
	c.lastErr = ""
	c.mu.Unlock()
	c.notify()
	return nil
}

// RequestSuggestions asks the oracle for fixes scoped to the current session
// and the breakdown's missing terms, and installs the resulting bundle.
func (c *Controller) RequestSuggestions(ctx context.Context) (*types.SuggestionBundle, error) {
	c.mu.Lock()
	session := c.session
	var missing []string
	if c.breakdown != nil {
		missing = append([]string(nil), c.breakdown.MissingTerms...)
	}
	if session == nil {
		c.mu.Unlock()
		err := &oracle.PreconditionError{Message: "suggestions require an active analysis; run an analysis first"}
		c.recordError(err)
		return nil, err
	}
	c.suggesting = true
	c.mu.Unlock()
	c.notify()

	bundle, err := c.oracle.RequestSuggestions(ctx, oracle.SuggestionRequest{
		AnalysisID:   session.ID,
		Document:     c.doc.Snapshot(),
		MissingTerms: missing,
	})

	c.mu.Lock()
	c.suggesting = false
	if err != nil {
		c.lastErr = userMessage(err)
		c.mu.Unlock()
		c.notify()
		return nil, err
	}
	c.bundle = bundle
	c.lastErr = ""
	c.mu.Unlock()
	c.notify()
	return bundle, nil
}

// ApplyFixes merges the held suggestion bundle into the document, capturing
// an undo snapshot first. When no bundle is held, one is requested from the
// oracle. The resulting document write goes through the single setter, so
// the edit signal triggers the usual debounced rescore. Re-entrant calls
// while an application is in flight are rejected.
func (c *Controller) ApplyFixes(ctx context.Context) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		err := &oracle.PreconditionError{Message: "applying fixes requires an active analysis; run an analysis first"}
		c.recordError(err)
		return err
	}
	if c.applying {
		c.mu.Unlock()
		err := &oracle.PreconditionError{Message: "a fix application is already in progress"}
		c.recordError(err)
		return err
	}
	session := c.session
	bundle := c.bundle
	var missing []string
	if c.breakdown != nil {
		missing = append([]string(nil), c.breakdown.MissingTerms...)
	}
	c.applying = true
	c.mu.Unlock()
	c.notify()

	if bundle == nil {
		fetched, err := c.oracle.RequestSuggestions(ctx, oracle.SuggestionRequest{
			AnalysisID:   session.ID,
			Document:     c.doc.Snapshot(),
			MissingTerms: missing,
		})
		if err != nil {
			c.mu.Lock()
			c.applying = false
			c.lastErr = userMessage(err)
			c.mu.Unlock()
			c.notify()
			return err
		}
		bundle = fetched
	}

	snap := c.doc.Snapshot()
	next, undo, applied := ApplyBundle(snap, *bundle, termStrings(session.NLPTerms.TopTerms))

	c.mu.Lock()
	c.applying = false
	if applied {
		c.undo = &undo
		c.bundle = nil // consumed
	}
	c.lastErr = ""
	c.mu.Unlock()

	if applied {
		c.doc.Update(func(d *types.DocumentState) {
			d.ContentHTML = next.ContentHTML
			d.MetaTitle = next.MetaTitle
			d.MetaDescription = next.MetaDescription
		})
	}
	c.notify()
	return nil
}

// Undo restores the document from the single undo slot and clears it. With
// no snapshot held it is a silent no-op. The restore goes through the single
// setter, so the scheduler rescores the restored document.
func (c *Controller) Undo() {
	c.mu.Lock()
	snapshot := c.undo
	c.undo = nil
	c.mu.Unlock()
	if snapshot == nil {
		return
	}

	c.doc.Update(func(d *types.DocumentState) {
		d.ContentHTML = snapshot.ContentHTML
		d.MetaTitle = snapshot.MetaTitle
		d.MetaDescription = snapshot.MetaDescription
	})
	c.notify()
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	c.lastErr = userMessage(err)
	c.mu.Unlock()
	c.notify()
}

// userMessage converts an error into the single "last error message"
// observable, preferring the oracle's forwarded message when one exists.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	if oe, ok := err.(*oracle.OracleError); ok {
		return oe.UserMessage()
	}
	return err.Error()
}

func termStrings(terms []types.TermScore) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Term)
	}
	return out
}
