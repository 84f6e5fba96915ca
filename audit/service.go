// api/audit/service.go
package audit

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/util"
)

type Service interface {
	LogDecision(ctx context.Context, log DecisionLog) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log DecisionLog) error {
	return s.repo.LogDecision(ctx, log)
}

// SubscribeToEvents wires the audit trail to the governance events published
// on the bus. Logging is best effort; a failed write never touches the
// request path.
func SubscribeToEvents(bus *util.EventBus, svc Service) {
	handler := func(ctx context.Context, event util.Event) error {
		log, ok := event.Payload.(DecisionLog)
		if !ok {
			logger.Warn("Unexpected audit event payload", zap.String("eventType", event.Type))
			return nil
		}
		return svc.LogDecision(ctx, log)
	}
	bus.Subscribe(util.EventRequestDenied, handler)
	bus.Subscribe(util.EventQuotaRejected, handler)
	bus.Subscribe(util.EventRateLimitTripped, handler)
	bus.Subscribe(util.EventResourceMutated, handler)
}
