package quiz

// Effect - побочное действие, которое должен выполнить контроллер после перехода.
type Effect interface {
	isEffect()
}

// StartCountdown запускает обратный отсчёт на Seconds секунд.
type StartCountdown struct {
	Seconds int
}

// StopCountdown останавливает обратный отсчёт, если он запущен.
type StopCountdown struct{}

// ReportAnswer сообщает результат проверки одного вопроса.
type ReportAnswer struct {
	QuestionID string
	Answer     string
	IsCorrect  bool
}

// ReportCompletion сообщает итог попытки. Выдаётся ровно один раз на отправку.
type ReportCompletion struct {
	Score  int
	Passed bool
	// AutoSubmitted - попытка завершена по истечении времени.
	AutoSubmitted bool
}

func (StartCountdown) isEffect()   {}
func (StopCountdown) isEffect()    {}
func (ReportAnswer) isEffect()     {}
func (ReportCompletion) isEffect() {}
