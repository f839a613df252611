package service

import (
	"context"
	"encoding/json"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/domain"

	"github.com/samber/lo"
)

func (s *UniversityService) ChatClick(ctx context.Context, req *ChatClickRequest) (*BeaconReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	click, err := s.clicks.RecordClick(ctx, biz.ClickInput{
		WidgetID:       req.WidgetID,
		Domain:         req.Domain,
		UserAgent:      req.UserAgent,
		Timestamp:      req.Timestamp,
		AmbassadorID:   req.AmbassadorID,
		AmbassadorName: req.AmbassadorName,
	}, req.clientAddress)
	if err != nil {
		return nil, err
	}
	return &BeaconReply{Success: true, Message: "Chat click recorded successfully", ClickID: click.ID}, nil
}

func (s *UniversityService) ChatClickAnswers(ctx context.Context, req *ChatClickAnswersRequest) (*BeaconReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	err := s.clicks.SaveAnswers(ctx, biz.AnswersInput{
		ClickID:         req.ClickID,
		Question1Answer: req.Question1Answer,
		Question2Answer: req.Question2Answer,
		AmbassadorID:    req.AmbassadorID,
		AmbassadorName:  req.AmbassadorName,
	})
	if err != nil {
		return nil, err
	}
	return &BeaconReply{Success: true, Message: "Answers saved successfully"}, nil
}

func (s *UniversityService) IframeLoaded(ctx context.Context, req *IframeLoadedRequest) (*BeaconReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	err := s.integration.RecordLoad(ctx, biz.LoadInput{
		WidgetID:  req.WidgetID,
		Domain:    req.Domain,
		Timestamp: req.Timestamp,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return &BeaconReply{Success: true, Message: "Iframe load recorded"}, nil
}

func (s *UniversityService) WidgetStatus(ctx context.Context, req *WidgetRequest) (*WidgetStatusReply, error) {
	st, err := s.integration.Status(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	return &WidgetStatusReply{
		Verified: st.Verified,
		Message:  st.Message,
		Details: StatusDetails{
			LastLoad:           toLoadInfoPtr(st.LastLoad),
			LastVerifiedAt:     st.LastVerifiedAt,
			LastVerifiedDomain: st.LastVerifiedDomain,
		},
		Statistics: StatusStatistics{
			TotalLoads:    st.TotalLoads,
			UniqueDomains: st.UniqueDomains,
			RecentLoads:   lo.Map(st.RecentLoads, func(l domain.IntegrationLoad, _ int) LoadInfo { return toLoadInfo(l) }),
		},
	}, nil
}

// WidgetConfig returns the stored display configuration as is.
func (s *UniversityService) WidgetConfig(ctx context.Context, req *WidgetRequest) (*json.RawMessage, error) {
	w, err := s.widgets.Get(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	return &w.Config, nil
}

func (s *UniversityService) JoinedAmbassadors(ctx context.Context, req *WidgetRequest) (*JoinedAmbassadorsReply, error) {
	joined, err := s.invitations.JoinedAmbassadors(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	ambassadors := lo.Map(joined, func(inv *domain.Invitation, _ int) AmbassadorInfo {
		return AmbassadorInfo{
			ID:       inv.ID(),
			Name:     inv.AmbassadorName(),
			Email:    inv.AmbassadorEmail(),
			JoinedAt: inv.RespondedAt(),
		}
	})
	return &JoinedAmbassadorsReply{WidgetID: req.WidgetID, Ambassadors: ambassadors, Total: len(ambassadors)}, nil
}

func (s *UniversityService) GenerateWidget(ctx context.Context, req *GenerateWidgetRequest) (*WidgetReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.widgets.Create(ctx, university.Subject, req.Config)
	if err != nil {
		return nil, err
	}
	return toWidgetReply(g), nil
}

func (s *UniversityService) MyWidget(ctx context.Context, _ *struct{}) (*WidgetReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.widgets.GetByOwner(ctx, university.Subject)
	if err != nil {
		return nil, err
	}
	return toWidgetReply(g), nil
}

func (s *UniversityService) VerifyWidget(ctx context.Context, req *VerifyWidgetRequest) (*VerifyWidgetReply, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	w, err := s.widgets.Get(ctx, req.WidgetID)
	if err != nil {
		return nil, err
	}
	if !w.OwnedBy(university.Subject) {
		return nil, domain.ErrWidgetNotFound
	}

	res, err := s.integration.Verify(ctx, req.WidgetID, req.WebsiteURL)
	if err != nil {
		return nil, err
	}
	return &VerifyWidgetReply{
		Verified: res.Verified,
		Message:  res.Message,
		Details: &VerifyDetails{
			Host:            res.Host,
			LastLoad:        toLoadInfoPtr(res.LastLoad),
			ObservedDomains: res.ObservedDomains,
		},
	}, nil
}

func (s *UniversityService) ChatAnalytics(ctx context.Context, req *WidgetRequest) (*ChatAnalyticsReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.clicks.OwnerAnalytics(ctx, req.WidgetID, university.Subject)
	if err != nil {
		return nil, err
	}
	return &ChatAnalyticsReply{
		WidgetID:    req.WidgetID,
		TotalClicks: a.TotalClicks,
		Clicks:      lo.Map(a.Clicks, toClickInfo),
	}, nil
}

func (s *UniversityService) ChatCount(ctx context.Context, req *WidgetRequest) (*ChatCountReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.clicks.OwnerClickCount(ctx, req.WidgetID, university.Subject)
	if err != nil {
		return nil, err
	}
	return &ChatCountReply{WidgetID: req.WidgetID, Count: n}, nil
}

func (s *UniversityService) ChatCountries(ctx context.Context, req *WidgetRequest) (*ChatCountriesReply, error) {
	university, err := universityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.clicks.OwnerClicksByCountry(ctx, req.WidgetID, university.Subject)
	if err != nil {
		return nil, err
	}
	return &ChatCountriesReply{
		WidgetID: req.WidgetID,
		Countries: lo.Map(counts, func(c domain.CountryCount, _ int) CountryInfo {
			return CountryInfo{Country: c.Country, Count: c.Count}
		}),
	}, nil
}
