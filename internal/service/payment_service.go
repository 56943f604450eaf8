package service

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/model"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
)

var (
	ErrUnknownPackage = errors.New("充值套餐不存在")
	ErrAmountMismatch = errors.New("支付金额与套餐不符")
)

// PaymentService 支付入账。信任边界：只接收支付组件 capture 成功后的确认，
// 不校验支付本身；同一笔订单号重复提交只入账一次。
type PaymentService struct {
	db            *gorm.DB
	paymentRepo   *repository.PaymentRepository
	userRepo      *repository.UserRepository
	creditService *CreditService
	cfg           *config.Config
}

func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	creditService *CreditService,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		db:            db,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		creditService: creditService,
		cfg:           cfg,
	}
}

// Capture 入账一笔完成的支付
func (s *PaymentService) Capture(userID int64, req *dto.CapturePaymentRequest) (*dto.CapturePaymentResponse, error) {
	pkg, err := s.findPackage(req.PackageID)
	if err != nil {
		return nil, err
	}

	paid, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, ErrAmountMismatch
	}
	expected, err := decimal.NewFromString(pkg.Amount)
	if err != nil {
		return nil, ErrUnknownPackage
	}
	if !paid.Equal(expected) {
		return nil, ErrAmountMismatch
	}

	// 订单号查重，重复回调直接返回当前余额
	if existing, err := s.paymentRepo.GetByProviderOrderID(req.OrderID); err == nil && existing != nil {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		return &dto.CapturePaymentResponse{
			Credits:   user.Credits,
			Duplicate: true,
		}, nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	purchase := &model.CreditPurchase{
		UserID:          userID,
		ProviderOrderID: req.OrderID,
		PackageID:       pkg.ID,
		Amount:          pkg.Amount,
		Credits:         pkg.Credits,
	}

	// 流水和入账同一事务：唯一索引兜底并发重复回调
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(tx, purchase); err != nil {
			return err
		}
		return s.userRepo.AddCredits(tx, userID, pkg.Credits)
	})
	if err != nil {
		// 并发回调绕过了前面的查重，输掉的一方撞唯一索引，同样按重复处理
		if isDuplicateKey(err) {
			user, uerr := s.userRepo.GetByID(userID)
			if uerr != nil {
				return nil, uerr
			}
			return &dto.CapturePaymentResponse{
				Credits:   user.Credits,
				Duplicate: true,
			}, nil
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	return &dto.CapturePaymentResponse{
		Credits:      user.Credits,
		AddedCredits: pkg.Credits,
	}, nil
}

// isDuplicateKey 识别唯一索引冲突（sqlite / mysql）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

// Packages 充值套餐列表
func (s *PaymentService) Packages() []*dto.PackageInfo {
	items := make([]*dto.PackageInfo, len(s.cfg.Payment.Packages))
	for i, p := range s.cfg.Payment.Packages {
		items[i] = &dto.PackageInfo{
			ID:      p.ID,
			Amount:  p.Amount,
			Credits: p.Credits,
		}
	}
	return items
}

func (s *PaymentService) findPackage(id string) (*config.CreditPackage, error) {
	for i := range s.cfg.Payment.Packages {
		if s.cfg.Payment.Packages[i].ID == id {
			return &s.cfg.Payment.Packages[i], nil
		}
	}
	return nil, ErrUnknownPackage
}
