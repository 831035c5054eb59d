package workers

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"typing-duel-system/models"
	"typing-duel-system/services"
)

// StepDelays maps each step to how long the bot "types" before
// reporting it done. Uneven on purpose: a human clears the phrase
// quickly and struggles with the holds.
type StepDelays map[models.Step]time.Duration

// DefaultStepDelays is the production pacing ladder.
var DefaultStepDelays = StepDelays{
	models.StepPhrase:            18 * time.Second,
	models.StepWords:             30 * time.Second,
	models.StepLettersAndSymbols: 40 * time.Second,
	models.StepHolds:             55 * time.Second,
}

// BotProgressRunner drives the bot side of bot matches: for each active
// bot match it schedules the four step completions on the delay ladder
// and submits them through the normal step-completion path, which
// absorbs anything arriving after the human has already won.
type BotProgressRunner struct {
	Games  *services.GameService
	Delays StepDelays

	mu     sync.Mutex
	timers map[string][]*time.Timer
}

func NewBotProgressRunner(games *services.GameService) *BotProgressRunner {
	return &BotProgressRunner{
		Games:  games,
		Delays: DefaultStepDelays,
		timers: make(map[string][]*time.Timer),
	}
}

// Start schedules the bot's remaining steps for one match. Safe to call
// again mid-match (e.g. after a service restart): steps the bot already
// reported are not re-submitted, and a decided game schedules nothing.
func (r *BotProgressRunner) Start(gameID, botID string) {
	remaining, decided, err := r.Games.BotStepsRemaining(gameID, botID)
	if err != nil {
		log.Printf("[BotRunner] cannot start pacing for game %s: %v", gameID, err)
		return
	}
	if decided || len(remaining) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.timers[gameID]; running {
		return
	}

	var elapsed time.Duration
	timers := make([]*time.Timer, 0, len(remaining))
	for _, step := range remaining {
		step := step
		elapsed += r.Delays[step]
		timers = append(timers, time.AfterFunc(elapsed, func() {
			r.fireStep(gameID, botID, step)
		}))
	}
	r.timers[gameID] = timers
	log.Printf("[BotRunner] pacing started for game %s (%d steps)", gameID, len(remaining))
}

func (r *BotProgressRunner) fireStep(gameID, botID string, step models.Step) {
	metrics := randomBotMetrics(step, r.Delays[step])
	if err := r.Games.CompleteStepForBot(gameID, botID, step, metrics); err != nil {
		log.Printf("[BotRunner] bot step %s failed for game %s: %v", step, gameID, err)
	}
	if step == models.StepHolds {
		r.Cancel(gameID)
	}
}

// Cancel stops all pending timers for a match. Called when the match is
// decided, when the human leaves, and on shutdown.
func (r *BotProgressRunner) Cancel(gameID string) {
	r.mu.Lock()
	timers := r.timers[gameID]
	delete(r.timers, gameID)
	r.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

// Shutdown cancels every scheduled bot step.
func (r *BotProgressRunner) Shutdown() {
	r.mu.Lock()
	all := r.timers
	r.timers = make(map[string][]*time.Timer)
	r.mu.Unlock()

	for _, timers := range all {
		for _, t := range timers {
			t.Stop()
		}
	}
}

// randomBotMetrics fabricates plausible typing metrics: a bounded error
// count, accuracy falling with errors, and WPM in a human band.
func randomBotMetrics(step models.Step, delay time.Duration) *models.StepMetrics {
	errCount := rand.Intn(5)
	accuracy := 100 - float64(errCount)*2 - rand.Float64()*3
	if accuracy < 0 {
		accuracy = 0
	}

	timeMs := int(delay.Milliseconds())
	if timeMs > 0 {
		// +-15% jitter so the reported time never exactly matches the ladder.
		timeMs += rand.Intn(timeMs/3+1) - timeMs/6
	}

	return &models.StepMetrics{
		Errors:   errCount,
		TimeMs:   timeMs,
		Accuracy: accuracy,
		WPM:      35 + rand.Float64()*40,
	}
}
