// Package rewards — service.go содержит логику начисления и выплаты наград.
//
// Пул наград — кастодиальный счёт токена. Периодическое распределение только
// увеличивает накопления победителей; токены двигаются при получении награды
// выплатой с кастодиального счёта.
package rewards

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/store"
)

// TokenLedger — операции токена, которые использует распределитель.
type TokenLedger interface {
	Mint(tx *store.Tx, caller, recipient string, amount uint64) error
	Release(tx *store.Tx, recipient string, amount uint64) error
	BalanceOf(tx *store.Tx, account string) (uint64, error)
	Custodian() string
}

// Service распределяет награды.
type Service struct {
	repo  *Repository
	token TokenLedger
	admin string
}

// NewService создаёт сервис наград.
func NewService(repo *Repository, token TokenLedger, cfg *config.Config) *Service {
	return &Service{repo: repo, token: token, admin: cfg.AdminAccount}
}

// MintOnVerification чеканит points токенов аккаунту за подтверждённое действие.
// Подтверждает только администратор, поэтому чеканка идёт от его имени.
func (s *Service) MintOnVerification(tx *store.Tx, account string, points uint64) error {
	return s.token.Mint(tx, s.admin, account, points)
}

// FundPool чеканит amount токенов на кастодиальный счёт (пополняет пул).
func (s *Service) FundPool(tx *store.Tx, caller string, amount uint64) error {
	if err := s.token.Mint(tx, caller, s.token.Custodian(), amount); err != nil {
		return err
	}
	log.WithField("amount", amount).Info("Пул наград пополнен")
	return nil
}

// DistributePeriodic делит totalPool поровну между winners целочисленным
// делением и добавляет долю к накоплению каждого победителя. Остаток никому
// не начисляется и остаётся в пуле. Повторы в winners получают долю за каждое
// вхождение. totalPool не может превышать свободную часть пула: баланс
// кастодиального счёта минус ещё не полученные накопления.
func (s *Service) DistributePeriodic(tx *store.Tx, caller string, winners []string, totalPool uint64) (Distribution, error) {
	if caller != s.admin {
		return Distribution{}, fmt.Errorf("распределение от %q: %w", caller, common.ErrNotAuthorized)
	}
	if len(winners) == 0 {
		return Distribution{}, fmt.Errorf("нет победителей: %w", common.ErrInvalidAmount)
	}
	for _, w := range winners {
		if err := common.CheckAccount(w); err != nil {
			return Distribution{}, err
		}
	}
	n := uint64(len(winners))
	share := totalPool / n
	if share == 0 {
		return Distribution{}, fmt.Errorf("пул %d меньше числа победителей %d: %w", totalPool, n, common.ErrInvalidAmount)
	}

	outstanding, err := s.repo.GetOutstanding(tx)
	if err != nil {
		return Distribution{}, err
	}
	pool, err := s.token.BalanceOf(tx, s.token.Custodian())
	if err != nil {
		return Distribution{}, err
	}
	var free uint64
	if pool > outstanding {
		free = pool - outstanding
	}
	if totalPool > free {
		return Distribution{}, fmt.Errorf("нужно %d, свободно в пуле %d: %w", totalPool, free, common.ErrInsufficientBalance)
	}
	if err := s.repo.SetOutstanding(tx, outstanding+share*n); err != nil {
		return Distribution{}, err
	}

	for _, w := range winners {
		a, err := s.repo.GetAccrual(tx, w)
		if err != nil {
			return Distribution{}, err
		}
		amount, err := common.AddAmount(a.Amount, share)
		if err != nil {
			return Distribution{}, err
		}
		if err := s.repo.SetAccrual(tx, w, amount); err != nil {
			return Distribution{}, err
		}
	}

	id, err := s.repo.NextDistributionID(tx)
	if err != nil {
		return Distribution{}, err
	}
	d := Distribution{
		ID:        id,
		Pool:      totalPool,
		Winners:   append([]string(nil), winners...),
		Share:     share,
		Remainder: totalPool - share*n,
		Height:    tx.Height(),
	}
	if err := s.repo.SaveDistribution(tx, d); err != nil {
		return Distribution{}, err
	}

	log.WithFields(log.Fields{
		"distribution": id,
		"winners":      n,
		"share":        share,
		"remainder":    d.Remainder,
	}).Info("Награды распределены")
	return d, nil
}

// ClaimRewards обнуляет накопление аккаунта и выплачивает его с
// кастодиального счёта. Если в пуле не хватает средств, накопление не меняется.
func (s *Service) ClaimRewards(tx *store.Tx, account string) (uint64, error) {
	a, err := s.repo.GetAccrual(tx, account)
	if err != nil {
		return 0, err
	}
	if a.Amount == 0 {
		return 0, fmt.Errorf("нет накоплений у %q: %w", account, common.ErrInsufficientBalance)
	}
	if err := s.repo.SetAccrual(tx, account, 0); err != nil {
		return 0, err
	}
	if err := s.token.Release(tx, account, a.Amount); err != nil {
		return 0, err
	}
	outstanding, err := s.repo.GetOutstanding(tx)
	if err != nil {
		return 0, err
	}
	if outstanding < a.Amount {
		return 0, fmt.Errorf("неполученных наград %d меньше накопления %d", outstanding, a.Amount)
	}
	if err := s.repo.SetOutstanding(tx, outstanding-a.Amount); err != nil {
		return 0, err
	}

	c, err := s.repo.GetClaimed(tx, account)
	if err != nil {
		return 0, err
	}
	if c.Total, err = common.AddAmount(c.Total, a.Amount); err != nil {
		return 0, err
	}
	c.Claims++
	c.LastClaimAt = tx.Height()
	if err := s.repo.SaveClaimed(tx, account, c); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"account": account,
		"amount":  a.Amount,
	}).Debug("Награда выплачена")
	return a.Amount, nil
}

// Accrued возвращает накопленную награду аккаунта.
func (s *Service) Accrued(tx *store.Tx, account string) (uint64, error) {
	a, err := s.repo.GetAccrual(tx, account)
	return a.Amount, err
}

// Outstanding возвращает сумму начисленных, но ещё не полученных наград.
func (s *Service) Outstanding(tx *store.Tx) (uint64, error) {
	return s.repo.GetOutstanding(tx)
}

// Claimed возвращает итог выплат аккаунта.
func (s *Service) Claimed(tx *store.Tx, account string) (Claimed, error) {
	return s.repo.GetClaimed(tx, account)
}

// Distribution возвращает запись распределения или ErrNotFound.
func (s *Service) Distribution(tx *store.Tx, id uint64) (Distribution, error) {
	d, ok, err := s.repo.GetDistribution(tx, id)
	if err != nil {
		return Distribution{}, err
	}
	if !ok {
		return Distribution{}, fmt.Errorf("распределение %d: %w", id, common.ErrNotFound)
	}
	return d, nil
}
