package cron

import (
	"IdeaVault/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	counterSyncJob      *job.CounterSyncJob
	membershipExpireJob *job.MembershipExpireJob
}

func NewCronManager(counterSyncJob *job.CounterSyncJob, membershipExpireJob *job.MembershipExpireJob) *Manager {
	return &Manager{
		engine:              cron.New(cron.WithSeconds()),
		counterSyncJob:      counterSyncJob,
		membershipExpireJob: membershipExpireJob,
	}
}

// registerJobs 计数对账每分钟一次，会员到期每小时一次
func (s *Manager) registerJobs() error {
	if _, err := s.engine.AddJob("0 * * * * *", s.counterSyncJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@hourly", s.membershipExpireJob); err != nil {
		return err
	}
	return nil
}

// Run 注册全部任务后启动引擎
func (s *Manager) Run() error {
	if err := s.registerJobs(); err != nil {
		return err
	}
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
	return nil
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
