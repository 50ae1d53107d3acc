package reward

import (
	"errors"

	rewarderrors "hr-backoffice/internal/reward/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rewarderrors.ErrRewardNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return rewarderrors.ErrDuplicateReference
	}

	return err
}
