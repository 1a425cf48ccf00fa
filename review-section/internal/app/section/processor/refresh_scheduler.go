package processor

import (
	"github.com/robfig/cron/v3"

	"reviewsection/pkg/logger"
)

// RefreshRequester ставит обновление отзывов в цикл событий секции
type RefreshRequester interface {
	RequestRefresh() bool
}

// RefreshScheduler периодически просит секцию перечитать отзывы.
// Сам синхронизатор не вызывает: обновление выполняется в цикле событий.
type RefreshScheduler struct {
	cron   *cron.Cron
	target RefreshRequester
}

func NewRefreshScheduler(target RefreshRequester) *RefreshScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &RefreshScheduler{
		cron:   c,
		target: target,
	}
}

func (s *RefreshScheduler) Start(schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting refresh scheduler")

	_, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *RefreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Refresh scheduler stopped")
}

func (s *RefreshScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *RefreshScheduler) tick() {
	if !s.target.RequestRefresh() {
		logger.Warn().Msg("Refresh skipped: review section busy or stopped")
	}
}

// cronLogger направляет логи cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
