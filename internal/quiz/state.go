package quiz

import "maps"

// Status - статус попытки прохождения квиза.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

// State - состояние одной попытки. Переходы не изменяют исходное значение,
// а возвращают новое вместе со списком эффектов.
type State struct {
	Status       Status
	CurrentIndex int
	Answers      map[string]Answer
	Revealed     map[string]bool
	Score        int
	Passed       bool
	Results      []QuestionResult

	TimerEnabled     bool
	RemainingSeconds int
	AutoSubmitted    bool

	// Attempt - сколько раз попытка начиналась в этой сессии.
	Attempt int
}

// NewState возвращает состояние до начала квиза.
func NewState() State {
	return State{
		Status:   StatusNotStarted,
		Answers:  make(map[string]Answer),
		Revealed: make(map[string]bool),
	}
}

func (s State) clone() State {
	next := s
	next.Answers = maps.Clone(s.Answers)
	next.Revealed = maps.Clone(s.Revealed)

	if next.Answers == nil {
		next.Answers = make(map[string]Answer)
	}
	if next.Revealed == nil {
		next.Revealed = make(map[string]bool)
	}

	if s.Results != nil {
		next.Results = append([]QuestionResult(nil), s.Results...)
	}

	return next
}

// AnsweredCount возвращает число вопросов квиза, на которые записан ответ.
func (s State) AnsweredCount(q *Quiz) int {
	count := 0
	for _, question := range q.Questions {
		if _, ok := s.Answers[question.ID]; ok {
			count++
		}
	}

	return count
}

// CanRetry сообщает, можно ли начать попытку заново.
func (s State) CanRetry() bool {
	return s.Status == StatusSubmitted && !s.Passed
}

// CurrentQuestion возвращает текущий вопрос. ok == false, если вопросов нет.
func (s State) CurrentQuestion(q *Quiz) (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(q.Questions) {
		return Question{}, false
	}

	return q.Questions[s.CurrentIndex], true
}

// ApplyStart начинает новую попытку: из not_started или повторно после
// проваленной отправки. После успешной попытки ничего не делает.
// Все ответы, балл и флаги сбрасываются, таймер выставляется на полный срок.
func ApplyStart(q *Quiz, s State) (State, []Effect) {
	if s.Status == StatusInProgress || s.Status == StatusSubmitted && s.Passed {
		return s, nil
	}

	next := NewState()
	next.Status = StatusInProgress
	next.Attempt = s.Attempt + 1

	var effects []Effect

	if seconds, ok := q.TimeLimitSeconds(); ok {
		next.TimerEnabled = true
		next.RemainingSeconds = seconds
		effects = append(effects, StartCountdown{Seconds: seconds})
	}

	return next, effects
}

// ApplyAnswer записывает или перезаписывает ответ на вопрос.
// Существование вариантов здесь не проверяется, ответ оценивается при отправке.
func ApplyAnswer(_ *Quiz, s State, questionID string, answer Answer) (State, []Effect) {
	if s.Status != StatusInProgress || answer == nil {
		return s, nil
	}

	next := s.clone()
	next.Answers[questionID] = cloneAnswer(answer)

	return next, nil
}

// ApplyNext переходит к следующему вопросу. На последнем вопросе ничего не делает.
func ApplyNext(q *Quiz, s State) (State, []Effect) {
	return ApplyGoTo(q, s, s.CurrentIndex+1)
}

// ApplyPrevious переходит к предыдущему вопросу. На первом вопросе ничего не делает.
func ApplyPrevious(q *Quiz, s State) (State, []Effect) {
	return ApplyGoTo(q, s, s.CurrentIndex-1)
}

// ApplyGoTo переходит к вопросу с индексом idx, ограничивая его диапазоном вопросов.
// Навигация доступна во время прохождения и при разборе после отправки.
func ApplyGoTo(q *Quiz, s State, idx int) (State, []Effect) {
	if s.Status == StatusNotStarted || len(q.Questions) == 0 {
		return s, nil
	}

	idx = max(0, min(idx, len(q.Questions)-1))
	if idx == s.CurrentIndex {
		return s, nil
	}

	next := s.clone()
	next.CurrentIndex = idx
	delete(next.Revealed, q.Questions[idx].ID)

	return next, nil
}

// ApplyReveal переключает показ пояснения к вопросу. Доступно только после отправки.
func ApplyReveal(_ *Quiz, s State, questionID string) (State, []Effect) {
	if s.Status != StatusSubmitted {
		return s, nil
	}

	next := s.clone()
	if next.Revealed[questionID] {
		delete(next.Revealed, questionID)
	} else {
		next.Revealed[questionID] = true
	}

	return next, nil
}

// ApplySubmit проверяет ответы и завершает попытку.
// Срабатывает только из in_progress, поэтому повторная отправка ничего не делает.
func ApplySubmit(q *Quiz, s State) (State, []Effect) {
	return submit(q, s, false)
}

// ApplyTick уменьшает оставшееся время на одну секунду.
// Когда время доходит до нуля, попытка отправляется в этом же переходе.
func ApplyTick(q *Quiz, s State) (State, []Effect) {
	if s.Status != StatusInProgress || !s.TimerEnabled {
		return s, nil
	}

	next := s.clone()
	next.RemainingSeconds--

	if next.RemainingSeconds <= 0 {
		next.RemainingSeconds = 0
		return submit(q, next, true)
	}

	return next, nil
}

// ApplyReset сбрасывает сессию при закрытии и останавливает таймер.
func ApplyReset(_ *Quiz, s State) (State, []Effect) {
	next := NewState()
	next.Attempt = s.Attempt

	return next, []Effect{StopCountdown{}}
}

func submit(q *Quiz, s State, auto bool) (State, []Effect) {
	if s.Status != StatusInProgress {
		return s, nil
	}

	res := Grade(q, s.Answers)

	next := s.clone()
	next.Status = StatusSubmitted
	next.Score = res.Score
	next.Passed = res.Passed
	next.Results = res.PerQuestion
	next.AutoSubmitted = auto

	effects := make([]Effect, 0, len(res.PerQuestion)+2)
	effects = append(effects, StopCountdown{})

	for _, qr := range res.PerQuestion {
		effects = append(effects, ReportAnswer{
			QuestionID: qr.QuestionID,
			Answer:     qr.Answer,
			IsCorrect:  qr.IsCorrect,
		})
	}

	effects = append(effects, ReportCompletion{
		Score:         res.Score,
		Passed:        res.Passed,
		AutoSubmitted: auto,
	})

	return next, effects
}
