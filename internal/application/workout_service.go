package application

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/traklab/workout-tracker/internal/domain/entity"
	repo "github.com/traklab/workout-tracker/internal/domain/repository"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrForbidden       = errors.New("not the workout owner")
	ErrInvalidInput    = errors.New("invalid workout input")
)

// WorkoutService owns the query/search path and all workout mutations.
// Every mutating call re-verifies ownership against Postgres; session
// identity is never trusted as the authority.
type WorkoutService struct {
	Repo    repo.WorkoutRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewWorkoutService(r repo.WorkoutRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *WorkoutService {
	return &WorkoutService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

type WorkoutInput struct {
	ExerciseName   string
	Duration       int
	CaloriesBurned int
	Category       string
}

func (in *WorkoutInput) normalize() error {
	in.ExerciseName = strings.TrimSpace(in.ExerciseName)
	in.Category = strings.TrimSpace(in.Category)
	if in.ExerciseName == "" || in.Duration <= 0 || in.CaloriesBurned <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// Create stores a new workout owned by userID.
func (s *WorkoutService) Create(ctx context.Context, userID string, in WorkoutInput) (*entity.Workout, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	w := &entity.Workout{
		UserID:         userID,
		ExerciseName:   in.ExerciseName,
		Duration:       in.Duration,
		CaloriesBurned: in.CaloriesBurned,
		Category:       in.Category,
	}
	if err := s.Repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.indexWorkout(ctx, w)
	return w, nil
}

// List returns the user's workouts, newest first.
func (s *WorkoutService) List(ctx context.Context, userID string) ([]*entity.Workout, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ListAll returns every workout, newest first (unauthenticated homepage).
func (s *WorkoutService) ListAll(ctx context.Context) ([]*entity.Workout, error) {
	return s.Repo.ListAll(ctx)
}

// GetOwned fetches a workout and enforces the ownership guard: absent
// rows yield ErrWorkoutNotFound, a foreign owner yields ErrForbidden.
func (s *WorkoutService) GetOwned(ctx context.Context, id, userID string) (*entity.Workout, error) {
	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrForbidden
	}
	return w, nil
}

// Update mutates an owned workout. The owner reference is never touched.
func (s *WorkoutService) Update(ctx context.Context, id, userID string, in WorkoutInput) (*entity.Workout, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	w, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	w.ExerciseName = in.ExerciseName
	w.Duration = in.Duration
	w.CaloriesBurned = in.CaloriesBurned
	w.Category = in.Category
	if err := s.Repo.Update(ctx, w); err != nil {
		return nil, err
	}
	s.indexWorkout(ctx, w)
	return w, nil
}

// Delete removes an owned workout.
func (s *WorkoutService) Delete(ctx context.Context, id, userID string) error {
	w, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, w.ID); err != nil {
		return err
	}
	s.deleteFromIndex(ctx, w.ID)
	return nil
}

// Search returns the user's workouts fuzzy-filtered by query, ranked
// best-match-first. An empty query is equivalent to List. Matching covers
// exercise name and category only, case-insensitive, typo-tolerant.
// When Elasticsearch is configured it serves the query; otherwise (or on
// ES error) the user's rows are ranked in memory.
func (s *WorkoutService) Search(ctx context.Context, userID, query string) ([]*entity.Workout, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, userID)
	}

	if s.ES != nil && s.ESIndex != "" {
		if out, err := s.searchES(ctx, userID, query); err == nil {
			return out, nil
		} else if s.Logger != nil {
			s.Logger.WithError(err).WithField("query", query).Warn("es search failed, falling back to in-memory match")
		}
	}

	ws, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rankFuzzy(ws, query), nil
}

// rankFuzzy orders workouts by fuzzy closeness of query to the exercise
// name or category. Rank is a fold-normalized Levenshtein distance; lower
// is better. Non-matching workouts are dropped.
func rankFuzzy(ws []*entity.Workout, query string) []*entity.Workout {
	type ranked struct {
		w    *entity.Workout
		rank int
	}
	matches := make([]ranked, 0, len(ws))
	for _, w := range ws {
		best := -1
		for _, field := range []string{w.ExerciseName, w.Category} {
			if field == "" {
				continue
			}
			if r := fuzzy.RankMatchNormalizedFold(query, field); r >= 0 && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			matches = append(matches, ranked{w: w, rank: best})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	out := make([]*entity.Workout, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.w)
	}
	return out
}

func (s *WorkoutService) indexWorkout(ctx context.Context, w *entity.Workout) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":              w.ID,
		"user_id":         w.UserID,
		"exercise_name":   w.ExerciseName,
		"category":        w.Category,
		"duration":        w.Duration,
		"calories_burned": w.CaloriesBurned,
		"date":            w.Date.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: w.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("workout_id", w.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("workout_id", w.ID).Warn("es index response error")
	}
}

func (s *WorkoutService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("workout_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// searchES runs a fuzzy multi_match over exercise_name and category,
// filtered to the user's documents. Hits are re-fetched from Postgres and
// ownership is re-checked; the index is a ranking aid, not the authority.
func (s *WorkoutService) searchES(ctx context.Context, userID, query string) ([]*entity.Workout, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"exercise_name^2", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": 100,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search status " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.Workout, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		w, gErr := s.Repo.GetByID(ctx, h.ID)
		if gErr != nil {
			continue // deleted since indexing
		}
		if w.UserID != userID {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}
