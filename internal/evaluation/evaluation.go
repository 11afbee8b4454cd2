// Package evaluation runs the eligibility rules over every active application
// of a configuration.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/iwvelando/loan-desk/internal/config"
	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/pkg/output"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoActiveApplications is returned when a configuration has nothing to
// evaluate.
var ErrNoActiveApplications = errors.New("no active applications to evaluate")

// Observer receives one call per evaluated application. *metrics.Metrics
// satisfies it.
type Observer interface {
	ObserveEvaluation(verdict, purpose string, reasonCodes []string, capApplied bool)
}

// EvaluateAll evaluates the active applications of conf concurrently and
// returns the results in configuration order. An application that cannot be
// converted fails the whole run.
func EvaluateAll(ctx context.Context, logger *zap.Logger, conf config.Configuration, observer Observer) ([]output.Evaluation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	applications := conf.ActiveApplications()
	for _, app := range conf.Applications {
		if !app.Active {
			logger.Debug(fmt.Sprintf("skipping application %s because it is inactive", app.Name),
				zap.String("op", "evaluation.EvaluateAll"),
			)
		}
	}
	if len(applications) == 0 {
		return nil, ErrNoActiveApplications
	}

	results := make([]output.Evaluation, len(applications))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, app := range applications {
		i, app := i, app
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluation, err := evaluate(logger, app)
			if err != nil {
				return err
			}
			results[i] = evaluation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if observer != nil {
		for _, r := range results {
			codes := make([]string, 0, len(r.Result.FailureReasons))
			for _, code := range r.Result.ReasonCodes() {
				codes = append(codes, string(code))
			}
			observer.ObserveEvaluation(string(r.Result.Verdict), string(r.Application.Purpose), codes, r.Result.PolicyCapApplied)
		}
	}
	return results, nil
}

func evaluate(logger *zap.Logger, app config.Application) (output.Evaluation, error) {
	loan, err := app.ToLoanApplication()
	if err != nil {
		return output.Evaluation{}, err
	}

	form := eligibility.NewForm()
	result, cleared := form.Load(loan)
	if cleared {
		logger.Warn(fmt.Sprintf("ownership status %s is not offered for application %s and was cleared", loan.OwnershipStatus, app.Name),
			zap.String("op", "evaluation.evaluate"),
		)
	}

	logger.Debug("evaluated application",
		zap.String("op", "evaluation.evaluate"),
		zap.String("application", app.Name),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("ltvPercent", result.LTVPercent),
		zap.String("finalMaxLimit", result.FinalMaxLimit.String()),
	)

	return output.Evaluation{
		Name:        app.Name,
		Application: form.Application(),
		Result:      result,
	}, nil
}
