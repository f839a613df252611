package service

import (
	"strings"

	"ambassador-tracker/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewUniversityService)

// Operation names. Operator operations require a university bearer token.
const (
	OperationChatClick         = "/public.widget/ChatClick"
	OperationIframeLoaded      = "/public.widget/IframeLoaded"
	OperationChatClickAnswers  = "/public.widget/ChatClickAnswers"
	OperationWidgetStatus      = "/public.widget/Status"
	OperationWidgetConfig      = "/public.widget/Config"
	OperationJoinedAmbassadors = "/public.widget/JoinedAmbassadors"
	OperationCheckInvitation   = "/public.invitation/Check"
	OperationRespondInvitation = "/public.invitation/Respond"

	OperationGenerateWidget  = "/operator.widget/Generate"
	OperationMyWidget        = "/operator.widget/MyWidget"
	OperationVerifyWidget    = "/operator.widget/Verify"
	OperationChatAnalytics   = "/operator.widget/ChatAnalytics"
	OperationChatCount       = "/operator.widget/ChatCount"
	OperationChatCountries   = "/operator.widget/ChatCountries"
	OperationSendInvitation  = "/operator.invitation/Send"
	OperationBulkInvitations = "/operator.invitation/SendBulk"
	OperationListInvitations = "/operator.invitation/List"
	OperationSetStatus       = "/operator.invitation/SetStatus"
)

// IsOperatorOperation reports whether op needs an authenticated university.
func IsOperatorOperation(op string) bool {
	return strings.HasPrefix(op, "/operator.")
}

// UniversityService exposes the widget, analytics and invitation API.
type UniversityService struct {
	widgets     *biz.WidgetUsecase
	clicks      *biz.ClickUsecase
	integration *biz.IntegrationUsecase
	invitations *biz.InvitationUsecase
	validate    *Validator
	log         *log.Helper
}

func NewUniversityService(
	widgets *biz.WidgetUsecase,
	clicks *biz.ClickUsecase,
	integration *biz.IntegrationUsecase,
	invitations *biz.InvitationUsecase,
	logger log.Logger,
) *UniversityService {
	return &UniversityService{
		widgets:     widgets,
		clicks:      clicks,
		integration: integration,
		invitations: invitations,
		validate:    NewValidator(),
		log:         log.NewHelper(log.With(logger, "module", "service")),
	}
}
