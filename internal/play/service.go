package play

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-session/internal/db/repository"
	"github.com/gokatarajesh/quiz-session/internal/metrics"
	"github.com/gokatarajesh/quiz-session/internal/quiz"
	"github.com/gokatarajesh/quiz-session/internal/session"
)

const (
	defaultCallDeadline = 2 * time.Minute
	persistTimeout      = 5 * time.Second
)

// ErrArchiveDisabled is returned by RecentResults when no archive is configured.
var ErrArchiveDisabled = errors.New("results archive not configured")

// Generator produces question sets and feedback text.
type Generator interface {
	RequestQuestions(ctx context.Context, topic string) (quiz.QuestionSet, error)
	RequestFeedback(ctx context.Context, score, total int, answers quiz.Answers) string
}

// ResultArchive stores finished attempts.
type ResultArchive interface {
	Archive(ctx context.Context, a repository.Attempt) error
	Recent(ctx context.Context, limit int) ([]repository.Attempt, error)
}

// Publisher pushes session views to live subscribers.
type Publisher interface {
	Publish(view View)
}

// View is what clients see: the public part of the session snapshot plus
// the score view once the quiz has been submitted. The generation ticket
// stays server side.
type View struct {
	ID        string           `json:"id"`
	State     session.State    `json:"state"`
	Topic     *quiz.Topic      `json:"topic"`
	Questions quiz.QuestionSet `json:"questions"`
	Answers   quiz.Answers     `json:"answers"`
	Cursor    int              `json:"cursor"`
	LastError *string          `json:"last_error"`
	Feedback  *string          `json:"feedback"`
	UpdatedAt time.Time        `json:"updated_at"`
	Result    *quiz.Result     `json:"result,omitempty"`

	ticket string
}

func newView(snap session.Snapshot) View {
	return View{
		ID:        snap.ID,
		State:     snap.State,
		Topic:     snap.Topic,
		Questions: snap.Questions,
		Answers:   snap.Answers,
		Cursor:    snap.Cursor,
		LastError: snap.LastError,
		Feedback:  snap.Feedback,
		UpdatedAt: snap.UpdatedAt,
		Result:    snap.Result(),
		ticket:    snap.Ticket,
	}
}

// ServiceOptions configures optional collaborators of the play service.
type ServiceOptions struct {
	Archive      ResultArchive
	Publisher    Publisher
	Metrics      *metrics.Metrics
	CallDeadline time.Duration
}

// Service drives sessions through their lifecycle. Every transition is
// persisted and published after it is applied; generation and feedback run
// in the background and are applied only if the session still waits on them.
type Service struct {
	sessions     *session.Manager
	generator    Generator
	archive      ResultArchive
	publisher    Publisher
	metrics      *metrics.Metrics
	callDeadline time.Duration
	logger       zerolog.Logger

	wg sync.WaitGroup
}

// NewService creates the play service.
func NewService(sessions *session.Manager, generator Generator, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.CallDeadline <= 0 {
		opts.CallDeadline = defaultCallDeadline
	}
	return &Service{
		sessions:     sessions,
		generator:    generator,
		archive:      opts.Archive,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		callDeadline: opts.CallDeadline,
		logger:       logger.With().Str("component", "play_service").Logger(),
	}
}

// Create starts a new session in TopicSelection.
func (s *Service) Create(ctx context.Context) (View, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return View{}, err
	}
	s.metrics.SessionCreated()
	return newView(sess.Snapshot()), nil
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return newView(sess.Snapshot()), nil
}

func (s *Service) SelectTopic(ctx context.Context, id string, topic quiz.Topic) (View, error) {
	return s.apply(ctx, id, "selectTopic", func(sess *session.Session) error {
		return sess.SelectTopic(topic)
	})
}

// StartGeneration moves the session to Generating and requests questions in
// the background. The returned view is in Generating; the outcome arrives
// through the publisher and later reads.
func (s *Service) StartGeneration(ctx context.Context, id string) (View, error) {
	var ticket string
	view, err := s.apply(ctx, id, "startGeneration", func(sess *session.Session) error {
		t, err := sess.StartGeneration()
		ticket = t
		return err
	})
	if err != nil {
		return View{}, err
	}

	topic := view.Topic.Name
	s.wg.Add(1)
	go s.generate(id, ticket, topic)
	return view, nil
}

func (s *Service) generate(id, ticket, topic string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.callDeadline)
	set, genErr := s.generator.RequestQuestions(ctx, topic)
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	log := s.logger.With().Str("session_id", id).Str("topic", topic).Logger()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("session gone before generation finished")
		return
	}

	name := "generationSucceeded"
	if genErr != nil {
		name = "generationFailed"
		err = sess.FailGeneration(ticket, genErr.Error())
	} else {
		err = sess.CompleteGeneration(ticket, set)
	}
	if errors.Is(err, session.ErrStaleGeneration) {
		log.Info().Msg("discarding generation result for abandoned request")
		return
	}
	s.metrics.Transition(name, err)
	if err != nil {
		log.Error().Err(err).Msg("generated set rejected by session")
		if ferr := sess.FailGeneration(ticket, err.Error()); ferr != nil {
			return
		}
		s.metrics.Transition("generationFailed", nil)
	}
	s.commit(ctx, sess)
}

func (s *Service) SelectAnswer(ctx context.Context, id, questionID string, optionIndex int) (View, error) {
	return s.apply(ctx, id, "selectAnswer", func(sess *session.Session) error {
		return sess.SelectAnswer(questionID, optionIndex)
	})
}

func (s *Service) NextQuestion(ctx context.Context, id string) (View, error) {
	return s.apply(ctx, id, "nextQuestion", func(sess *session.Session) error {
		return sess.NextQuestion()
	})
}

func (s *Service) PreviousQuestion(ctx context.Context, id string) (View, error) {
	return s.apply(ctx, id, "previousQuestion", func(sess *session.Session) error {
		return sess.PreviousQuestion()
	})
}

// Submit ends the quiz and requests feedback in the background.
func (s *Service) Submit(ctx context.Context, id string) (View, error) {
	view, err := s.apply(ctx, id, "submit", func(sess *session.Session) error {
		return sess.Submit()
	})
	if err != nil {
		return View{}, err
	}
	if view.Feedback == nil && view.Result != nil {
		s.wg.Add(1)
		go s.feedback(view)
	}
	return view, nil
}

func (s *Service) feedback(submitted View) {
	defer s.wg.Done()

	id := submitted.ID
	res := submitted.Result
	ctx, cancel := context.WithTimeout(context.Background(), s.callDeadline)
	text := s.generator.RequestFeedback(ctx, res.Score, res.Total, submitted.Answers)
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	log := s.logger.With().Str("session_id", id).Logger()

	if sess, err := s.sessions.Get(ctx, id); err != nil {
		log.Warn().Err(err).Msg("session gone before feedback arrived")
	} else if err := sess.AttachFeedback(submitted.ticket, text); err != nil {
		log.Info().Err(err).Msg("discarding feedback for abandoned attempt")
	} else {
		s.metrics.Transition("setFeedback", nil)
		s.commit(ctx, sess)
	}

	s.archiveAttempt(ctx, submitted, text)
}

func (s *Service) archiveAttempt(ctx context.Context, submitted View, feedback string) {
	if s.archive == nil {
		return
	}
	var topic quiz.Topic
	if submitted.Topic != nil {
		topic = *submitted.Topic
	}
	err := s.archive.Archive(ctx, repository.Attempt{
		SessionID:   submitted.ID,
		Topic:       topic,
		Score:       submitted.Result.Score,
		Total:       submitted.Result.Total,
		Feedback:    feedback,
		Answers:     submitted.Answers,
		CompletedAt: submitted.UpdatedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", submitted.ID).Msg("archive attempt failed")
	}
}

// Reset returns the session to TopicSelection from any state.
func (s *Service) Reset(ctx context.Context, id string) (View, error) {
	return s.apply(ctx, id, "reset", func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

// Delete drops a session from memory and the store. Background calls still
// in flight for it find the session gone and are discarded.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// RecentResults lists archived attempts, newest first.
func (s *Service) RecentResults(ctx context.Context, limit int) ([]repository.Attempt, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Recent(ctx, limit)
}

// Wait blocks until background generation and feedback calls have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) apply(ctx context.Context, id, name string, fn func(*session.Session) error) (View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := fn(sess); err != nil {
		s.metrics.Transition(name, err)
		s.logger.Warn().Err(err).Str("session_id", id).Str("transition", name).Msg("transition rejected")
		return View{}, err
	}
	s.metrics.Transition(name, nil)
	return s.commit(ctx, sess), nil
}

// commit mirrors the session into the store and notifies subscribers. The
// live session stays authoritative, so a failed save is logged, not returned.
func (s *Service) commit(ctx context.Context, sess *session.Session) View {
	snap, err := s.sessions.Persist(ctx, sess)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID()).Msg("persist session snapshot failed")
	}
	view := newView(snap)
	if s.publisher != nil {
		s.publisher.Publish(view)
	}
	return view
}
