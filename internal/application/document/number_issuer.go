package document

import (
	"context"
	"errors"
	"time"

	appshared "github.com/sibarkumen/backend/internal/application/shared"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxNumberAttempts bounds how often a document is retried after its
// number turned out to be taken.
const MaxNumberAttempts = 3

// ErrNumberExhausted is returned when every attempt hit a taken number.
var ErrNumberExhausted = shared.NewDomainError("CONFLICT", "Could not allocate a document number, please try again")

// NumberIssuer stores a new document under the next free number.
//
// The generator derives numbers from a count, so two requests can compute
// the same one. The unique index on document_number rejects the loser;
// the issuer then runs the whole unit of work again in a fresh
// transaction, where the count includes the winner. A duplicate key on
// any other index is returned as is.
type NumberIssuer struct {
	tx       appshared.TransactionScope
	config   document.NumberingConfig
	now      func() time.Time
	metrics  appshared.Metrics
	logger   *zap.Logger
	attempts int
}

// NewNumberIssuer creates a NumberIssuer
func NewNumberIssuer(tx appshared.TransactionScope, config document.NumberingConfig, metrics appshared.Metrics, logger *zap.Logger) *NumberIssuer {
	if metrics == nil {
		metrics = appshared.NopMetrics{}
	}
	return &NumberIssuer{
		tx:       tx,
		config:   config,
		now:      time.Now,
		metrics:  metrics,
		logger:   logger,
		attempts: MaxNumberAttempts,
	}
}

// IssueFunc persists a document carrying number using the transaction's
// repositories.
type IssueFunc func(repos appshared.TransactionalRepositories, number string) error

// Issue generates a number for t and calls store with it inside a
// transaction. It returns the number that was stored.
func (i *NumberIssuer) Issue(ctx context.Context, t document.Type, store IssueFunc) (string, error) {
	for attempt := 1; attempt <= i.attempts; attempt++ {
		var number string
		err := i.tx.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			gen := document.NewGenerator(i.config, repos.Counter(), document.WithClock(i.now))
			n, err := gen.Next(ctx, t)
			if err != nil {
				return err
			}
			number = n
			return store(repos, n)
		})
		if err == nil {
			i.metrics.DocumentIssued(ctx, string(t))
			return number, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return "", err
		}
		// Other unique indexes (one SPPB per SPB, one BAST-out per SPPB)
		// report the same error; only a taken number is worth a retry.
		taken, terr := i.numberTaken(ctx, t, number)
		if terr != nil {
			return "", terr
		}
		if !taken {
			return "", err
		}

		i.metrics.NumberConflict(ctx, string(t))
		i.logger.Warn("Document number taken, retrying",
			zap.String("type", string(t)),
			zap.String("number", number),
			zap.Int("attempt", attempt))
	}
	return "", ErrNumberExhausted
}

func (i *NumberIssuer) numberTaken(ctx context.Context, t document.Type, number string) (bool, error) {
	if number == "" {
		return false, nil
	}
	var taken bool
	err := i.tx.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		taken, err = repos.Counter().NumberTaken(ctx, t, number)
		return err
	})
	return taken, err
}

// Preview returns the number the next document of t would get, without
// reserving it.
func (i *NumberIssuer) Preview(ctx context.Context, counter document.RecordCounter, t document.Type) (string, error) {
	return document.NewGenerator(i.config, counter, document.WithClock(i.now)).Next(ctx, t)
}
