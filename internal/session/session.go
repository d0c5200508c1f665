// Package session owns all client-visible state and its transition rules:
// the active focus set, the committed plan, completion/purchase/favorite
// tracking, and the single-slot speech resources.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"qihuang-chef/internal/plan"
)

// ErrNoFocus is the user-input error for submitting a plan request with an
// empty focus set. It is caught at submission and never reaches the service.
var ErrNoFocus = errors.New("at least one focus tag must be selected")

// ErrBusy is returned when a single-slot resource (speech playback,
// microphone capture) is already occupied.
var ErrBusy = errors.New("resource already in use")

// StateStore persists favorites and purchased-item state across sessions.
// Both payloads are rewritten in full on every mutation.
type StateStore interface {
	LoadFavorites() ([]plan.Recipe, error)
	SaveFavorites([]plan.Recipe) error
	LoadPurchased() ([]string, error)
	SavePurchased([]string) error
}

// ImageState tracks a generated step illustration and its in-flight flag.
type ImageState struct {
	Illustration *plan.Illustration
	Generating   bool
}

// PendingRequest is the snapshot handed to the plan request service when a
// submission is accepted. Prefs already include any refine directive.
type PendingRequest struct {
	Token       uint64
	Focus       []plan.Focus
	Location    string
	Preferences string
	Refining    bool
}

// Session is the view state controller for one user. All methods are safe
// for concurrent use; the bot serves each update on its own goroutine.
type Session struct {
	mu sync.Mutex

	focus     []plan.Focus
	prefs     string
	location  string
	current   *plan.WeeklyPlan
	today     *plan.TodayRecommendation
	completed map[string]struct{}
	purchased map[string]struct{}
	favorites []plan.Recipe
	images    map[string]*ImageState

	chefAnswer string
	speaking   bool
	listening  bool

	// issued is bumped per accepted submission; committed tracks the token of
	// the last applied result so a stale response can never overwrite a newer
	// one (last-issued-wins).
	issued    uint64
	committed uint64

	store StateStore
	log   zerolog.Logger
}

// New creates a session, restoring favorites and purchased-item state from
// the store. Load failures are logged and start the session empty rather
// than blocking startup.
func New(store StateStore, defaultLocation string, logger zerolog.Logger) *Session {
	s := &Session{
		focus:     []plan.Focus{plan.FocusTasty},
		location:  defaultLocation,
		completed: make(map[string]struct{}),
		purchased: make(map[string]struct{}),
		images:    make(map[string]*ImageState),
		store:     store,
		log:       logger,
	}

	if favs, err := store.LoadFavorites(); err != nil {
		logger.Warn().Err(err).Msg("failed to load favorites")
	} else {
		s.favorites = favs
	}
	if bought, err := store.LoadPurchased(); err != nil {
		logger.Warn().Err(err).Msg("failed to load purchased items")
	} else {
		for _, id := range bought {
			s.purchased[id] = struct{}{}
		}
	}
	return s
}

// ToggleFocus flips membership of a tag in the active focus set. Selecting
// the automatic tag clears everything else; selecting a concrete tag while
// automatic is active clears automatic first.
func (s *Session) ToggleFocus(f plan.Focus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f == plan.FocusAuto {
		s.focus = []plan.Focus{plan.FocusAuto}
		return
	}

	next := s.focus
	if s.hasFocusLocked(plan.FocusAuto) {
		next = nil
	}

	kept := make([]plan.Focus, 0, len(next)+1)
	removed := false
	for _, existing := range next {
		if existing == f {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		kept = append(kept, f)
	}
	s.focus = kept
}

// Focus returns a copy of the active focus set in selection order.
func (s *Session) Focus() []plan.Focus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]plan.Focus, len(s.focus))
	copy(out, s.focus)
	return out
}

func (s *Session) hasFocusLocked(f plan.Focus) bool {
	for _, existing := range s.focus {
		if existing == f {
			return true
		}
	}
	return false
}

// HasFocus reports membership of a tag in the active set.
func (s *Session) HasFocus(f plan.Focus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasFocusLocked(f)
}

// BeginPlan accepts a plan submission and issues its request token. An empty
// refineDirective means a fresh plan; otherwise the directive is appended to
// the stored preferences for this request only — it becomes the new baseline
// only when the request commits.
func (s *Session) BeginPlan(refineDirective string) (PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.focus) == 0 {
		return PendingRequest{}, ErrNoFocus
	}

	s.issued++
	req := PendingRequest{
		Token:       s.issued,
		Focus:       make([]plan.Focus, len(s.focus)),
		Location:    s.location,
		Preferences: s.prefs,
		Refining:    refineDirective != "",
	}
	copy(req.Focus, s.focus)
	if req.Refining {
		req.Preferences = fmt.Sprintf("%s\n[口味微调]: %s", s.prefs, refineDirective)
	}
	return req, nil
}

// CommitPlan applies a successful joint result. Returns false when the token
// is stale (a newer request has been issued since), in which case nothing is
// applied. A fresh plan resets purchased-item state; a refine folds the
// combined preferences into the baseline.
func (s *Session) CommitPlan(req PendingRequest, p *plan.WeeklyPlan, rec plan.TodayRecommendation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Token != s.issued {
		s.log.Info().Uint64("token", req.Token).Uint64("latest", s.issued).Msg("discarding stale plan result")
		return false
	}
	s.committed = req.Token
	s.current = p
	s.today = &rec
	s.completed = make(map[string]struct{})
	s.images = make(map[string]*ImageState)

	if req.Refining {
		s.prefs = req.Preferences
	} else {
		s.purchased = make(map[string]struct{})
		s.persistPurchasedLocked()
	}
	return true
}

// Plan returns the committed plan, or nil before the first success.
func (s *Session) Plan() *plan.WeeklyPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Today returns the committed recommendation, or nil.
func (s *Session) Today() *plan.TodayRecommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.today
}

// SetPreferences replaces the stored free-text preferences.
func (s *Session) SetPreferences(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
}

// Preferences returns the stored baseline preferences.
func (s *Session) Preferences() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetCoordinates records a one-shot position fix, formatted to two decimals.
func (s *Session) SetCoordinates(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = fmt.Sprintf("%.2f, %.2f", lat, lng)
}

// Location returns the current location string.
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// ToggleStep flips completion of a single step key. Steps may be completed
// out of order.
func (s *Session) ToggleStep(stepKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.completed[stepKey]; done {
		delete(s.completed, stepKey)
	} else {
		s.completed[stepKey] = struct{}{}
	}
}

// StepDone reports completion of a step key.
func (s *Session) StepDone(stepKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, done := s.completed[stepKey]
	return done
}

// RecipeCompleted reports whether every step of the recipe is done.
func (s *Session) RecipeCompleted(r plan.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range r.StepKeys {
		if _, done := s.completed[key]; !done {
			return false
		}
	}
	return len(r.StepKeys) > 0
}

// TogglePurchased flips a grocery item's purchased state and persists the
// full set.
func (s *Session) TogglePurchased(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, bought := s.purchased[id]; bought {
		delete(s.purchased, id)
	} else {
		s.purchased[id] = struct{}{}
	}
	s.persistPurchasedLocked()
}

// Purchased reports an item's purchased state.
func (s *Session) Purchased(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, bought := s.purchased[id]
	return bought
}

// ToggleFavorite adds the recipe to favorites, or removes it when a recipe
// of the same name is already favorited. Returns true when the recipe is a
// favorite after the call.
func (s *Session) ToggleFavorite(r plan.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, fav := range s.favorites {
		if fav.Name == r.Name {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			s.persistFavoritesLocked()
			return false
		}
	}
	s.favorites = append([]plan.Recipe{r}, s.favorites...)
	s.persistFavoritesLocked()
	return true
}

// IsFavorite reports whether a recipe name is favorited.
func (s *Session) IsFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fav := range s.favorites {
		if fav.Name == name {
			return true
		}
	}
	return false
}

// Favorites returns a copy of the favorites list, newest first.
func (s *Session) Favorites() []plan.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]plan.Recipe, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// SetChefAnswer stores the last chef answer for playback.
func (s *Session) SetChefAnswer(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chefAnswer = answer
}

// ChefAnswer returns the last chef answer.
func (s *Session) ChefAnswer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chefAnswer
}

// BeginSpeaking claims the single playback slot. ErrBusy when playback is
// already in flight; overlapped playback is never allowed.
func (s *Session) BeginSpeaking() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speaking {
		return ErrBusy
	}
	s.speaking = true
	return nil
}

// EndSpeaking releases the playback slot. Idempotent.
func (s *Session) EndSpeaking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = false
}

// BeginListening claims the single capture slot.
func (s *Session) BeginListening() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening {
		return ErrBusy
	}
	s.listening = true
	return nil
}

// StopListening releases the capture slot. Idempotent.
func (s *Session) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
}

// BeginImage claims the in-flight flag for a step key. Returns false when a
// generation is already running for that key.
func (s *Session) BeginImage(stepKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.images[stepKey]
	if st != nil && st.Generating {
		return false
	}
	s.images[stepKey] = &ImageState{Generating: true}
	return true
}

// FinishImage records a generation result; a nil illustration clears the
// in-flight flag and leaves the feature inert for that step.
func (s *Session) FinishImage(stepKey string, il *plan.Illustration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[stepKey] = &ImageState{Illustration: il}
}

// Image returns the image state for a step key, or nil.
func (s *Session) Image(stepKey string) *ImageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[stepKey]
}

func (s *Session) persistFavoritesLocked() {
	favs := make([]plan.Recipe, len(s.favorites))
	copy(favs, s.favorites)
	if err := s.store.SaveFavorites(favs); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist favorites")
	}
}

func (s *Session) persistPurchasedLocked() {
	ids := make([]string, 0, len(s.purchased))
	for id := range s.purchased {
		ids = append(ids, id)
	}
	if err := s.store.SavePurchased(ids); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist purchased items")
	}
}
