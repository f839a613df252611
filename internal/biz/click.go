package biz

import (
	"context"
	"strings"
	"time"

	"ambassador-tracker/internal/domain"
	"ambassador-tracker/internal/domain/event"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ClickInput is a chat-click beacon.
type ClickInput struct {
	WidgetID       string
	Domain         string
	UserAgent      string
	Timestamp      string
	AmbassadorID   string
	AmbassadorName string
}

// AnswersInput carries the follow-up answers of a click.
type AnswersInput struct {
	ClickID         string
	Question1Answer string
	Question2Answer string
	AmbassadorID    string
	AmbassadorName  string
}

// Analytics lists every click of a widget, most recent first.
type Analytics struct {
	TotalClicks int64
	Clicks      []*domain.ClickEvent
}

// ClickUsecase ingests chat clicks and serves click analytics.
type ClickUsecase struct {
	clicks    domain.ClickRepository
	widgets   *WidgetUsecase
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *log.Helper
}

func NewClickUsecase(
	clicks domain.ClickRepository,
	widgets *WidgetUsecase,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger log.Logger,
) *ClickUsecase {
	return &ClickUsecase{
		clicks:    clicks,
		widgets:   widgets,
		publisher: publisher,
		metrics:   m,
		log:       log.NewHelper(log.With(logger, "module", "biz/click")),
	}
}

// RecordClick stores the click and hands it to the enrichment worker.
// It returns as soon as the row is written.
func (uc *ClickUsecase) RecordClick(ctx context.Context, in ClickInput, callerAddress string) (*domain.ClickEvent, error) {
	click, err := uc.newClick(ctx, in, callerAddress)
	if err != nil {
		uc.metrics.ClicksRecorded.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if err := uc.clicks.Create(ctx, click); err != nil {
		uc.metrics.ClicksRecorded.WithLabelValues("error").Inc()
		return nil, err
	}
	uc.metrics.ClicksRecorded.WithLabelValues("recorded").Inc()

	if err := uc.publisher.Publish(ctx, event.NewClickRecorded(click.ID, click.WidgetID, click.ClientAddress)); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to publish click %s for enrichment: %v", click.ID, err)
	}

	uc.log.WithContext(ctx).Infof("click %s recorded for widget %s", click.ID, click.WidgetID)
	return click, nil
}

func (uc *ClickUsecase) newClick(ctx context.Context, in ClickInput, callerAddress string) (*domain.ClickEvent, error) {
	widgetID := strings.TrimSpace(in.WidgetID)
	domainName := strings.TrimSpace(in.Domain)
	if widgetID == "" || domainName == "" {
		return nil, domain.ErrMissingField
	}
	clickedAt, err := domain.ParseEventTime(in.Timestamp)
	if err != nil {
		return nil, err
	}
	if _, err := uc.widgets.Get(ctx, widgetID); err != nil {
		return nil, err
	}

	return &domain.ClickEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		WidgetID:       widgetID,
		Domain:         domainName,
		ClientAddress:  strings.TrimSpace(callerAddress),
		AmbassadorID:   domain.OptionalString(in.AmbassadorID),
		AmbassadorName: domain.OptionalString(in.AmbassadorName),
		ClickedAt:      clickedAt,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// SaveAnswers attaches follow-up answers to a click. Answers already stored
// are kept; the chosen ambassador is replaced when supplied.
func (uc *ClickUsecase) SaveAnswers(ctx context.Context, in AnswersInput) error {
	clickID := strings.TrimSpace(in.ClickID)
	if clickID == "" {
		return domain.ErrMissingField
	}

	ok, err := uc.clicks.SaveAnswers(ctx, domain.ClickAnswers{
		ClickID:         clickID,
		Question1Answer: domain.OptionalString(in.Question1Answer),
		Question2Answer: domain.OptionalString(in.Question2Answer),
		AmbassadorID:    domain.OptionalString(in.AmbassadorID),
		AmbassadorName:  domain.OptionalString(in.AmbassadorName),
	})
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrClickNotFound
	}
	return nil
}

// GetAnalytics is unpaginated; every click of the widget is returned.
func (uc *ClickUsecase) GetAnalytics(ctx context.Context, widgetID string) (*Analytics, error) {
	clicks, err := uc.clicks.ListByWidget(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	return &Analytics{TotalClicks: int64(len(clicks)), Clicks: clicks}, nil
}

func (uc *ClickUsecase) GetClickCount(ctx context.Context, widgetID string) (int64, error) {
	return uc.clicks.CountByWidget(ctx, widgetID)
}

func (uc *ClickUsecase) GetClicksByCountry(ctx context.Context, widgetID string) ([]domain.CountryCount, error) {
	return uc.clicks.CountByCountry(ctx, widgetID)
}

// OwnerAnalytics is GetAnalytics for the owning university of a verified widget.
func (uc *ClickUsecase) OwnerAnalytics(ctx context.Context, widgetID, ownerID string) (*Analytics, error) {
	if _, err := uc.widgets.OwnedVerified(ctx, widgetID, ownerID); err != nil {
		return nil, err
	}
	return uc.GetAnalytics(ctx, widgetID)
}

func (uc *ClickUsecase) OwnerClickCount(ctx context.Context, widgetID, ownerID string) (int64, error) {
	if _, err := uc.widgets.OwnedVerified(ctx, widgetID, ownerID); err != nil {
		return 0, err
	}
	return uc.GetClickCount(ctx, widgetID)
}

func (uc *ClickUsecase) OwnerClicksByCountry(ctx context.Context, widgetID, ownerID string) ([]domain.CountryCount, error) {
	if _, err := uc.widgets.OwnedVerified(ctx, widgetID, ownerID); err != nil {
		return nil, err
	}
	return uc.GetClicksByCountry(ctx, widgetID)
}
