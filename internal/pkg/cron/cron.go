package cron

import (
	"time"

	"go.uber.org/zap"

	"github.com/pixelmuse/imagen_go_server/internal/model"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

const (
	defaultInterval  = 30 * time.Second
	defaultBatchSize = 100
	maxRetries       = 5
)

// Service 后台对账任务：定期扫描待处理的补偿任务并重放，
// 把「标记失败 + 退积分」没能落盘的记录修复回一致状态。
type Service struct {
	genService *service.GenerationService
	reconRepo  *repository.ReconciliationRepository
	interval   time.Duration
	batchSize  int
	stopChan   chan struct{}
	log        *zap.Logger
}

func NewService(
	genService *service.GenerationService,
	reconRepo *repository.ReconciliationRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		genService: genService,
		reconRepo:  reconRepo,
		interval:   defaultInterval,
		batchSize:  defaultBatchSize,
		stopChan:   make(chan struct{}),
		log:        log,
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runReconciliation()
	s.log.Info("cron service started (reconciliation sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	s.log.Info("cron service stopped")
}

func (s *Service) runReconciliation() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce 处理一批待对账任务（导出供手动触发和测试）
func (s *Service) SweepOnce() {
	tasks, err := s.reconRepo.GetPending(s.batchSize)
	if err != nil {
		s.log.Error("failed to load reconciliation tasks", zap.Error(err))
		return
	}

	for _, task := range tasks {
		s.processTask(task)
	}
}

func (s *Service) processTask(task *model.ReconciliationTask) {
	err := s.genService.Reconcile(task)
	if err == nil {
		if markErr := s.reconRepo.MarkDone(task.ID); markErr != nil {
			s.log.Error("failed to mark reconciliation done",
				zap.Int64("task_id", task.ID), zap.Error(markErr))
			return
		}
		s.log.Info("reconciliation task repaired",
			zap.Int64("task_id", task.ID),
			zap.Int64("generation_id", task.GenerationID),
			zap.Int("credits", task.Credits))
		return
	}

	s.log.Warn("reconciliation task failed",
		zap.Int64("task_id", task.ID),
		zap.Int("retry_count", task.RetryCount),
		zap.Error(err))

	if task.RetryCount+1 >= maxRetries {
		if markErr := s.reconRepo.MarkFailed(task.ID, err.Error()); markErr != nil {
			s.log.Error("failed to mark reconciliation failed",
				zap.Int64("task_id", task.ID), zap.Error(markErr))
		}
		return
	}

	if incErr := s.reconRepo.IncrementRetry(task.ID, err.Error()); incErr != nil {
		s.log.Error("failed to increment reconciliation retry",
			zap.Int64("task_id", task.ID), zap.Error(incErr))
	}
}
