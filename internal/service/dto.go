package service

import (
	"encoding/json"
	"time"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/domain"

	"github.com/samber/lo"
)

// Beacons

type ChatClickRequest struct {
	WidgetID       string `json:"widgetId" validate:"required"`
	Domain         string `json:"domain" validate:"required"`
	UserAgent      string `json:"userAgent"`
	Timestamp      string `json:"timestamp" validate:"required"`
	AmbassadorID   string `json:"ambassadorId,omitempty"`
	AmbassadorName string `json:"ambassadorName,omitempty"`

	clientAddress string
}

type ChatClickAnswersRequest struct {
	ClickID         string `json:"clickId" validate:"required"`
	Question1Answer string `json:"question1Answer,omitempty"`
	Question2Answer string `json:"question2Answer,omitempty"`
	AmbassadorID    string `json:"ambassadorId,omitempty"`
	AmbassadorName  string `json:"ambassadorName,omitempty"`
}

type IframeLoadedRequest struct {
	WidgetID  string `json:"widgetId" validate:"required"`
	Domain    string `json:"domain" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
	UserAgent string `json:"userAgent"`
}

type BeaconReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ClickID string `json:"clickId,omitempty"`
}

// Widgets

type WidgetRequest struct {
	WidgetID string `json:"-" validate:"required"`
}

type GenerateWidgetRequest struct {
	Config json.RawMessage
}

type WidgetReply struct {
	WidgetID      string            `json:"widgetId"`
	IframeCode    string            `json:"iframeCode"`
	IframeFormats map[string]string `json:"iframeFormats"`
	PreviewURL    string            `json:"previewUrl"`
	Config        json.RawMessage   `json:"config,omitempty"`
	IsVerified    bool              `json:"isVerified"`
}

type VerifyWidgetRequest struct {
	WidgetID   string `json:"widgetId" validate:"required"`
	WebsiteURL string `json:"websiteUrl" validate:"required"`
}

type LoadInfo struct {
	Domain    string    `json:"domain"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent,omitempty"`
}

type VerifyDetails struct {
	Host            string    `json:"host"`
	LastLoad        *LoadInfo `json:"lastLoad,omitempty"`
	ObservedDomains []string  `json:"observedDomains,omitempty"`
}

type VerifyWidgetReply struct {
	Verified bool           `json:"verified"`
	Message  string         `json:"message"`
	Details  *VerifyDetails `json:"details,omitempty"`
}

type StatusDetails struct {
	LastLoad           *LoadInfo  `json:"lastLoad,omitempty"`
	LastVerifiedAt     *time.Time `json:"lastVerifiedAt,omitempty"`
	LastVerifiedDomain string     `json:"lastVerifiedDomain,omitempty"`
}

type StatusStatistics struct {
	TotalLoads    int        `json:"totalLoads"`
	UniqueDomains int        `json:"uniqueDomains"`
	RecentLoads   []LoadInfo `json:"recentLoads"`
}

type WidgetStatusReply struct {
	Verified   bool             `json:"verified"`
	Message    string           `json:"message"`
	Details    StatusDetails    `json:"details"`
	Statistics StatusStatistics `json:"statistics"`
}

// Analytics

// ClickInfo is one click as operators see it. Country stays null until
// enrichment has run.
type ClickInfo struct {
	ID              string    `json:"id"`
	Domain          string    `json:"domain"`
	IPAddress       string    `json:"ipAddress"`
	Country         *string   `json:"country"`
	AmbassadorID    *string   `json:"ambassadorId"`
	AmbassadorName  *string   `json:"ambassadorName"`
	Question1Answer *string   `json:"question1Answer"`
	Question2Answer *string   `json:"question2Answer"`
	ClickedAt       time.Time `json:"clickedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ChatAnalyticsReply struct {
	WidgetID    string      `json:"widgetId"`
	TotalClicks int64       `json:"totalClicks"`
	Clicks      []ClickInfo `json:"clicks"`
}

type ChatCountReply struct {
	WidgetID string `json:"widgetId"`
	Count    int64  `json:"count"`
}

type CountryInfo struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type ChatCountriesReply struct {
	WidgetID  string        `json:"widgetId"`
	Countries []CountryInfo `json:"countries"`
}

// Invitations

type SendInvitationRequest struct {
	AmbassadorName  string `json:"ambassadorName" validate:"required"`
	AmbassadorEmail string `json:"ambassadorEmail" validate:"required,email"`
	UniversityName  string `json:"universityName,omitempty"`
}

type SendInvitationReply struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SentTo       string `json:"sentTo"`
	InvitationID string `json:"invitationId"`
}

type BulkRecipient struct {
	AmbassadorName  string `json:"ambassadorName" validate:"required"`
	AmbassadorEmail string `json:"ambassadorEmail" validate:"required"`
}

type SendBulkInvitationsRequest struct {
	Invitations    []BulkRecipient `json:"invitations" validate:"required,min=1,max=500,dive"`
	UniversityName string          `json:"universityName,omitempty"`
}

type BulkResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SendBulkInvitationsReply struct {
	TotalSent   int          `json:"totalSent"`
	TotalFailed int          `json:"totalFailed"`
	Results     []BulkResult `json:"results"`
}

type InvitationInfo struct {
	ID              string     `json:"id"`
	AmbassadorName  string     `json:"ambassadorName"`
	AmbassadorEmail string     `json:"ambassadorEmail"`
	Status          string     `json:"status"`
	InvitedAt       time.Time  `json:"invitedAt"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty"`
}

type ListInvitationsRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type ListInvitationsReply struct {
	Invitations  []InvitationInfo `json:"invitations"`
	TotalCount   int64            `json:"totalCount"`
	StatusCounts map[string]int64 `json:"statusCounts"`
	Page         int              `json:"page"`
	PageSize     int              `json:"pageSize"`
}

type SetStatusRequest struct {
	Email  string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type SetStatusReply struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Invitation InvitationInfo `json:"invitation"`
}

type RespondRequest struct {
	Token  string `json:"-" validate:"required"`
	Action string `json:"-" validate:"oneof=accept decline"`
}

type CheckInvitationRequest struct {
	Email string `json:"-" validate:"required"`
}

type CheckInvitationReply struct {
	WasInvited     bool   `json:"wasInvited"`
	Status         string `json:"status,omitempty"`
	UniversityName string `json:"universityName,omitempty"`
}

type AmbassadorInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	JoinedAt *time.Time `json:"joinedAt,omitempty"`
}

type JoinedAmbassadorsReply struct {
	WidgetID    string           `json:"widgetId"`
	Ambassadors []AmbassadorInfo `json:"ambassadors"`
	Total       int              `json:"total"`
}

func toWidgetReply(g *biz.GeneratedWidget) *WidgetReply {
	return &WidgetReply{
		WidgetID:      g.Widget.ID,
		IframeCode:    g.EmbedCode,
		IframeFormats: g.EmbedFormats,
		PreviewURL:    g.PreviewURL,
		Config:        g.Widget.Config,
		IsVerified:    g.Widget.Verified,
	}
}

func toLoadInfo(l domain.IntegrationLoad) LoadInfo {
	return LoadInfo{Domain: l.Domain, Timestamp: l.Timestamp, UserAgent: l.ClientSignature}
}

func toLoadInfoPtr(l *domain.IntegrationLoad) *LoadInfo {
	if l == nil {
		return nil
	}
	info := toLoadInfo(*l)
	return &info
}

func toClickInfo(c *domain.ClickEvent, _ int) ClickInfo {
	return ClickInfo{
		ID:              c.ID,
		Domain:          c.Domain,
		IPAddress:       c.ClientAddress,
		Country:         c.Country,
		AmbassadorID:    c.AmbassadorID,
		AmbassadorName:  c.AmbassadorName,
		Question1Answer: c.Question1Answer,
		Question2Answer: c.Question2Answer,
		ClickedAt:       c.ClickedAt,
		CreatedAt:       c.CreatedAt,
	}
}

func toInvitationInfo(inv *domain.Invitation) InvitationInfo {
	return InvitationInfo{
		ID:              inv.ID(),
		AmbassadorName:  inv.AmbassadorName(),
		AmbassadorEmail: inv.AmbassadorEmail(),
		Status:          string(inv.Status()),
		InvitedAt:       inv.InvitedAt(),
		RespondedAt:     inv.RespondedAt(),
	}
}

func toStatusCounts(c domain.StatusCounts) map[string]int64 {
	return lo.MapKeys(c, func(_ int64, s domain.InvitationStatus) string { return string(s) })
}
