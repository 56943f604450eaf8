package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/inference"
	"github.com/pixelmuse/imagen_go_server/internal/model"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/oss"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/pubsub"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
)

var (
	ErrUpstreamUnavailable = errors.New("生成服务暂不可用")
	ErrNoImageReturned     = errors.New("生成服务未返回图片")
)

// InferenceClient 外部生成调用，测试里用桩替换
type InferenceClient interface {
	Generate(ctx context.Context, req *inference.Request) (*inference.Result, error)
}

// GenerationService 生成记录的状态机：PENDING -> COMPLETED | FAILED。
// 预留（条件扣积分 + 建 PENDING 记录）是一个事务；外部调用在事务外；
// 失败走补偿事务退积分，补偿本身失败则落对账任务由后台重放。
type GenerationService struct {
	db        *gorm.DB
	genRepo   *repository.GenerationRepository
	userRepo  *repository.UserRepository
	reconRepo *repository.ReconciliationRepository
	client    InferenceClient
	publisher *pubsub.Publisher
	ossClient *oss.Client
	cfg       *config.Config
	log       *zap.Logger
}

func NewGenerationService(
	db *gorm.DB,
	genRepo *repository.GenerationRepository,
	userRepo *repository.UserRepository,
	reconRepo *repository.ReconciliationRepository,
	client InferenceClient,
	cfg *config.Config,
	log *zap.Logger,
) *GenerationService {
	return &GenerationService{
		db:        db,
		genRepo:   genRepo,
		userRepo:  userRepo,
		reconRepo: reconRepo,
		client:    client,
		cfg:       cfg,
		log:       log,
	}
}

// SetPublisher 发布生成事件（可选，未配置时跳过推送）
func (s *GenerationService) SetPublisher(p *pubsub.Publisher) {
	s.publisher = p
}

// SetOSSClient 结果图镜像存储（可选）
func (s *GenerationService) SetOSSClient(c *oss.Client) {
	s.ossClient = c
}

// Generate 文生图
func (s *GenerationService) Generate(ctx context.Context, userID int64, req *dto.GenerateRequest) (*dto.GenerationResult, error) {
	ratio := req.Ratio
	if ratio == "" {
		ratio = "1:1"
	}
	style := req.Style
	if style == "" {
		style = "none"
	}

	gen := &model.Generation{
		UserID:  userID,
		Kind:    model.GenerationKindText2Image,
		Prompt:  req.Prompt,
		ModelID: ResolveModelID(req.Model),
		Ratio:   ratio,
		Style:   style,
		Cost:    s.cfg.Credits.GenerationCost,
		Status:  model.GenerationStatusPending,
	}

	if err := s.reserve(gen); err != nil {
		return nil, err
	}

	width, height := DimensionsForRatio(ratio)
	s.log.Info("generating image",
		zap.Int64("generation_id", gen.ID),
		zap.Int64("user_id", userID),
		zap.String("model", gen.ModelID),
		zap.String("ratio", ratio),
		zap.Int("width", width),
		zap.Int("height", height))

	return s.run(ctx, gen, &inference.Request{
		Model:  gen.ModelID,
		Prompt: ComposePrompt(style, req.Prompt),
	})
}

// GenerateVariant 图生图。比例固定 1:1，prompt 带来源前缀，
// strength 目前只记录不下发。
func (s *GenerationService) GenerateVariant(ctx context.Context, userID int64, req *dto.GenerateVariantRequest) (*dto.GenerationResult, error) {
	gen := &model.Generation{
		UserID:  userID,
		Kind:    model.GenerationKindImage2Image,
		Prompt:  variantPromptPrefix + req.Prompt,
		ModelID: ResolveModelID(req.Model),
		Ratio:   "1:1",
		Style:   "none",
		Cost:    s.cfg.Credits.VariantCost,
		Status:  model.GenerationStatusPending,
	}

	if err := s.reserve(gen); err != nil {
		return nil, err
	}

	s.log.Info("generating variant",
		zap.Int64("generation_id", gen.ID),
		zap.Int64("user_id", userID),
		zap.String("model", gen.ModelID),
		zap.Float64("strength", req.Strength))

	return s.run(ctx, gen, &inference.Request{
		Model:    gen.ModelID,
		Prompt:   req.Prompt,
		ImageURL: req.Image,
	})
}

// History 最近的生成记录，新的在前
func (s *GenerationService) History(userID int64) ([]*dto.GenerationListItem, error) {
	gens, err := s.genRepo.ListRecentByUserID(userID, s.cfg.Credits.HistoryLimit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.GenerationListItem, len(gens))
	for i, g := range gens {
		items[i] = &dto.GenerationListItem{
			ID:        g.ID,
			Kind:      g.Kind,
			Prompt:    g.Prompt,
			ModelID:   g.ModelID,
			Ratio:     g.Ratio,
			Style:     g.Style,
			Cost:      g.Cost,
			Status:    g.Status,
			ImageURL:  g.ImageURL,
			CreatedAt: g.CreatedAt.Format(time.RFC3339),
		}
	}
	return items, nil
}

// reserve 预留：余额检查、扣减、建 PENDING 记录同一事务提交。
// 余额不足时整个事务回滚，不留任何痕迹。
func (s *GenerationService) reserve(gen *model.Generation) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.userRepo.DebitCredits(tx, gen.UserID, gen.Cost)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
		return s.genRepo.Create(tx, gen)
	})
}

// run 事务外的外部调用及收尾
func (s *GenerationService) run(ctx context.Context, gen *model.Generation, req *inference.Request) (*dto.GenerationResult, error) {
	result, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, s.fail(gen, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
	}
	if result.ImageURL == "" {
		return nil, s.fail(gen, ErrNoImageReturned)
	}

	imageURL := s.mirrorImage(gen.ID, result.ImageURL)

	if err := s.genRepo.MarkCompleted(gen.ID, imageURL); err != nil {
		// 图已生成但状态写不进去，按失败补偿，保证积分不白扣
		return nil, s.fail(gen, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
	}

	s.publish(gen, model.GenerationStatusCompleted, imageURL, "")

	return &dto.GenerationResult{
		ID:        gen.ID,
		Status:    model.GenerationStatusCompleted,
		ImageURL:  imageURL,
		Prompt:    gen.Prompt,
		Ratio:     gen.Ratio,
		CreatedAt: gen.CreatedAt.Format(time.RFC3339),
	}, nil
}

// fail 补偿：标记 FAILED + 退积分，一个事务。补偿事务失败时不吞错误，
// 落一条对账任务等后台重放。
func (s *GenerationService) fail(gen *model.Generation, cause error) error {
	if err := s.compensate(gen.ID, gen.UserID, gen.Cost); err != nil {
		s.log.Error("compensation failed, enqueueing reconciliation",
			zap.Int64("generation_id", gen.ID),
			zap.Int64("user_id", gen.UserID),
			zap.Int("credits", gen.Cost),
			zap.Error(err))
		s.enqueueReconciliation(gen, err)
	}

	s.publish(gen, model.GenerationStatusFailed, "", cause.Error())
	return cause
}

// compensate 幂等补偿：只有记录真的从 PENDING 进入 FAILED 才退积分，
// 重放多少次都只退一次。
func (s *GenerationService) compensate(generationID, userID int64, credits int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		changed, err := s.genRepo.MarkFailedIfPending(tx, generationID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.userRepo.AddCredits(tx, userID, credits)
	})
}

// Reconcile 后台对账入口，重放一次补偿
func (s *GenerationService) Reconcile(task *model.ReconciliationTask) error {
	return s.compensate(task.GenerationID, task.UserID, task.Credits)
}

func (s *GenerationService) enqueueReconciliation(gen *model.Generation, cause error) {
	task := &model.ReconciliationTask{
		TaskKey:      uuid.NewString(),
		UserID:       gen.UserID,
		GenerationID: gen.ID,
		Credits:      gen.Cost,
		Status:       model.ReconciliationStatusPending,
		LastError:    cause.Error(),
	}
	if err := s.reconRepo.Create(task); err != nil {
		// 连任务都落不下去，只剩日志可查
		s.log.Error("failed to enqueue reconciliation task",
			zap.Int64("generation_id", gen.ID),
			zap.Int64("user_id", gen.UserID),
			zap.Int("credits", gen.Cost),
			zap.Error(err))
	}
}

func (s *GenerationService) publish(gen *model.Generation, status, imageURL, errMsg string) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	evt := &pubsub.GenerationEvent{
		UserID:       gen.UserID,
		GenerationID: gen.ID,
		Status:       status,
		ImageURL:     imageURL,
		Error:        errMsg,
	}
	if err := s.publisher.PublishGeneration(ctx, evt); err != nil {
		s.log.Warn("failed to publish generation event",
			zap.Int64("generation_id", gen.ID),
			zap.Error(err))
	}
}

// mirrorImage 把上游返回的 data URL 落到 OSS，失败时退回原始 URL
func (s *GenerationService) mirrorImage(generationID int64, imageURL string) string {
	if s.ossClient == nil || !strings.HasPrefix(imageURL, "data:") {
		return imageURL
	}

	meta, b64, ok := strings.Cut(imageURL, ",")
	if !ok {
		return imageURL
	}

	ext := ".png"
	switch {
	case strings.Contains(meta, "image/jpeg"):
		ext = ".jpg"
	case strings.Contains(meta, "image/webp"):
		ext = ".webp"
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		s.log.Warn("failed to decode image payload", zap.Int64("generation_id", generationID), zap.Error(err))
		return imageURL
	}

	url, err := s.ossClient.UploadImage(generationID, data, ext)
	if err != nil {
		s.log.Warn("failed to mirror image to oss", zap.Int64("generation_id", generationID), zap.Error(err))
		return imageURL
	}
	return url
}
